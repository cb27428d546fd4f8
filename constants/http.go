package constants

// HTTP Methods
const (
	HTTPMethodPOST    = "POST"
	HTTPMethodOPTIONS = "OPTIONS"
)

// Content Types
const (
	ContentTypeJSON     = "application/json"
)

// HTTP Headers
const (
	HeaderContentType      = "Content-Type"
	HeaderRequestID        = "X-Request-ID"
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	DefaultSignatureHeader = "x-nowpayments-sig"
)

// CORS values sent on every form endpoint.
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "POST, OPTIONS"
	CORSAllowHeaders = "Content-Type"
)

// Routes
const (
	RouteIPN         = "/api/ipn"
	RouteSubscribe   = "/api/subscribe"
	RouteUnsubscribe = "/api/unsubscribe"
	RouteHealth      = "/healthz"
	RouteMetrics     = "/metrics"
)

// Default Values
const (
	DefaultHTTPHost = "0.0.0.0"
	DefaultHTTPPort = 3000
)
