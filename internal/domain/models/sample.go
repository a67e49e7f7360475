package models

import "time"

// DataItem is one entry of the sample data payload.
type DataItem struct {
	ID    int
	Name  string
	Value int
}

// SampleData is the result of the simulated data lookup.
type SampleData struct {
	GeneratedAt time.Time
	Items       []DataItem
}

// RandomNumber is a single draw from the random number endpoint.
type RandomNumber struct {
	Value       int
	GeneratedAt time.Time
}

// HealthStatus reports service liveness.
type HealthStatus struct {
	Status    string
	CheckedAt time.Time
}

const HealthStatusHealthy = "healthy"

// RouteDirectory describes the public routes of the service.
type RouteDirectory struct {
	Message   string
	Endpoints map[string]string
}

// EpochSeconds renders t as fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
