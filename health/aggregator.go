package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KOMKZ/cpipeline/logger"
)

// Aggregator runs registered checkers concurrently under one timeout
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	metadata map[string]string
	timeout  time.Duration
	log      *logger.CtxZapLogger
}

// NewAggregator creates an aggregator; timeout <= 0 uses DefaultTimeout.
// log may be nil.
func NewAggregator(timeout time.Duration, log *logger.CtxZapLogger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{
		metadata: make(map[string]string),
		timeout:  timeout,
		log:      log,
	}
}

// Register adds checkers
func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checkers...)
}

// SetMetadata attaches a value to every response
func (a *Aggregator) SetMetadata(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Check runs every checker and returns once all have reported or the
// timeout elapses. No checkers means healthy.
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	metadata := make(map[string]string, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make(chan CheckResult, len(checkers))
	for _, c := range checkers {
		go func(c Checker) {
			results <- a.run(ctx, c)
		}(c)
	}

	resp := &Response{
		Status:   StatusHealthy,
		Checks:   make(map[string]CheckResult, len(checkers)),
		Metadata: metadata,
	}
collect:
	for range checkers {
		select {
		case r := <-results:
			resp.Checks[r.Name] = r
			if r.Status != StatusHealthy {
				resp.Status = StatusUnhealthy
			}
		case <-ctx.Done():
			break collect
		}
	}
	// checkers that ignored ctx are reported as timed out
	for _, c := range checkers {
		if _, ok := resp.Checks[c.Name()]; ok {
			continue
		}
		resp.Checks[c.Name()] = CheckResult{
			Name:     c.Name(),
			Status:   StatusUnhealthy,
			Error:    "timed out after " + a.timeout.String(),
			Duration: time.Since(start),
		}
		resp.Status = StatusUnhealthy
		a.log.WarnCtx(ctx, "health check timed out", zap.String("check", c.Name()))
	}
	resp.Timestamp = time.Now()
	resp.Duration = resp.Timestamp.Sub(start)
	return resp
}

func (a *Aggregator) run(ctx context.Context, c Checker) CheckResult {
	start := time.Now()
	err := c.Check(ctx)
	r := CheckResult{Name: c.Name(), Status: StatusHealthy, Duration: time.Since(start)}
	if err != nil {
		r.Status = StatusUnhealthy
		r.Error = err.Error()
		a.log.WarnCtx(ctx, "health check failed", zap.String("check", r.Name), zap.Error(err))
	}
	return r
}
