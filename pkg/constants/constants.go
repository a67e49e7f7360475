// Package constants defines system-wide constants for the obsdemo service.
package constants

import "time"

// ================================================================================
// Application Identity
// ================================================================================

const (
	// ServiceName is the default name used for the logger and tracer.
	ServiceName = "obsdemo"

	// ServiceVersion is reported through the app_info gauge.
	ServiceVersion = "1.0.0"

	// EnvPrefix is the prefix for environment variable overrides (OBSDEMO_SERVER_PORT, ...).
	EnvPrefix = "OBSDEMO"
)

// ================================================================================
// Routes
// ================================================================================

const (
	RouteIndex   = "/"
	RouteHealth  = "/health"
	RouteReady   = "/ready"
	RouteMetrics = "/metrics"
	RouteData    = "/api/data"
	RouteRandom  = "/api/random"
	RouteError   = "/api/error"

	// RouteUnknown labels requests that matched no registered route.
	RouteUnknown = "unknown"
)

// ErrorEndpointInternal labels the errors counter for recovered faults.
const ErrorEndpointInternal = "internal"

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for request-scoped context values.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyLogger    ContextKey = "logger"
)

// HeaderRequestID carries the request identifier in and out of the service.
const HeaderRequestID = "X-Request-ID"

// ================================================================================
// Demo Tuning
// ================================================================================

const (
	// DataItemCount is the number of items returned by the data endpoint.
	DataItemCount = 3

	DataValueMin = 1
	DataValueMax = 100

	RandomNumberMin = 1
	RandomNumberMax = 1000

	DefaultDataDelayMin = 10 * time.Millisecond
	DefaultDataDelayMax = 100 * time.Millisecond
)

// ================================================================================
// Log Formats
// ================================================================================

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)
