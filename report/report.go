package report

// Acquirer hands out per-request statistics collectors.
type Acquirer interface {
	Acquire(tag string) RequestState
}

type Reporter interface {
	Acquirer
	Run() error
	Close() error
}

type RequestState interface {
	SetSize(int)         // request body size
	Connected()          // the socket finished connecting
	OnStatus(code int)   // response headers arrived
	SetResponseSize(int) // response body size
	IoError(err error)   // transport, encode or decode failure
	End()                // request finished, the state goes back to the reporter
}
