// Package health aggregates readiness checks for a cpipeline deployment.
package health

import (
	"context"
	"time"
)

// Status of one check or of the whole deployment
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// DefaultTimeout bounds a whole Check run
const DefaultTimeout = 5 * time.Second

// Checker is one readiness probe
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckerFunc) Name() string { return c.CheckName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// CheckResult is the outcome of one checker
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Response is the outcome of a Check run
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// IsHealthy reports whether every check passed
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}
