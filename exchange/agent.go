package exchange

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// Agent is the connection pool requests are sent through.
type Agent = http.RoundTripper

// NewAgent builds an HTTP/1.1 keep-alive transport with no socket limit.
// Callers that need their own connection pool use it instead of DefaultAgent.
func NewAgent() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: 256,
		IdleConnTimeout:     90 * time.Second,
		TLSNextProto:        map[string]func(string, *tls.Conn) http.RoundTripper{},
	}
}

// Process-wide default agents, built on first use and never closed.
var (
	httpAgent  = sync.OnceValue(NewAgent)
	httpsAgent = sync.OnceValue(NewAgent)
)

// DefaultAgent returns the shared agent for scheme ("http" or "https").
func DefaultAgent(scheme string) (Agent, bool) {
	switch scheme {
	case "http":
		return httpAgent(), true
	case "https":
		return httpsAgent(), true
	}
	return nil, false
}

// SupportedScheme reports whether requests to scheme can be sent.
func SupportedScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}
