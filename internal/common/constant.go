package common

// Gateway service coordinates shared by the gRPC server and client.
const (
	GatewayServiceName = "kvgate.Gateway"
	GatewayCallMethod  = "/kvgate.Gateway/Call"
)

// OutcomeTrailerName is the gRPC trailer carrying the coarse outcome
// (success, rejected, fault) of a gateway call.
const OutcomeTrailerName = "outcome"

// RequestIDHeaderName is the HTTP header echoing the per-request id.
const RequestIDHeaderName = "X-Request-Id"
