package consts

import "time"

const (
	DefaultTimeout = 11 * time.Second

	MediaTypeJSON     = "application/json"
	ContentTypeJSON   = "application/json; charset=utf-8"
	DefaultUserAgent  = "typedhttp"
	URLCacheSize      = 1 << 10
	CollectorPoolSize = 128

	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
)
