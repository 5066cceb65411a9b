// Package health reports whether the long-running taskweave server can do
// its job: the backlog document is readable and the embedding provider,
// if any, answers.
//
// Checks are pluggable through the Checker interface and aggregated by a
// Manager; ProbeManager adds liveness and readiness on top.
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency.
type Checker interface {
	// Name returns a short lowercase identifier ("backlog-document").
	Name() string

	// Check runs the check. It must honour ctx's deadline.
	Check(ctx context.Context) *Result
}

// Status is a check outcome.
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusDegraded means taskweave still works with reduced quality,
	// e.g. clustering without embeddings.
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one check.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns"`
}

// NewResult creates a result with an empty detail map.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns r.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// Healthy creates a healthy result.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
