// Package service defines the interfaces for domain services.
package service

// Metrics defines the interface for collecting business metrics.
type Metrics interface {
	// RecordError increments the application error counter for endpoint.
	RecordError(endpoint string)
}
