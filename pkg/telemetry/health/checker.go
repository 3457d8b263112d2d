package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes a single component. It returns nil if the component is
// healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one component probe.
type CheckResult struct {
	// Status is the component status: "ok" or "unhealthy"
	Status string `json:"status"`

	// Message carries the error text for unhealthy components
	Message string `json:"message,omitempty"`

	// DurationMS is how long the probe took, in milliseconds
	DurationMS float64 `json:"duration_ms,omitempty"`
}

// Status is the aggregated health of the process.
type Status struct {
	// Status is the overall status: "ok", "ready" or "degraded"
	Status string `json:"status"`

	// Checks holds per-component results (readiness only)
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the probes ran
	Timestamp time.Time `json:"timestamp"`
}

// Checker runs registered component probes.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	// Timeout for individual probes
	checkTimeout time.Duration
}

// New creates a Checker with the given per-probe timeout.
// A zero timeout defaults to 5 seconds.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers a probe for a named component, replacing any
// existing probe with the same name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// UnregisterCheck removes the probe for a named component.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// CheckLiveness reports whether the process is alive. It runs no probes
// and always succeeds; it exists so orchestrators can distinguish a hung
// process from a running one.
func (c *Checker) CheckLiveness(ctx context.Context) Status {
	return Status{
		Status:    "ok",
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs all registered probes concurrently and aggregates
// the results. Any unhealthy component degrades the overall status.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	// With nothing registered the process is ready by definition.
	if len(checks) == 0 {
		return Status{
			Status:    "ready",
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult)
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := "ready"
	for _, result := range results {
		if result.Status == "unhealthy" {
			status = "degraded"
		}
	}

	return Status{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes a single probe under the checker's timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	// The probe runs in its own goroutine so a stuck probe cannot stall
	// the whole readiness response. The buffered channel lets it finish
	// after a timeout without leaking.
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:     "unhealthy",
				Message:    err.Error(),
				DurationMS: durationMS(duration),
			}
		}
		return CheckResult{
			Status:     "ok",
			DurationMS: durationMS(duration),
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:     "unhealthy",
			Message:    "health check timeout",
			DurationMS: durationMS(time.Since(start)),
		}
	}
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
