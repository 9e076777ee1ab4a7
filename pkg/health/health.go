// Package health implements liveness and readiness probes. Checks run
// periodically in the background; the HTTP endpoints only read the last
// recorded state, so probes stay cheap even when a check is slow.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	probe   CheckFunc

	mu      sync.Mutex
	lastErr error
}

func (c *check) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.probe(probeCtx)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *check) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Service runs registered checks and serves their state. Liveness checks
// gate /livez, readiness checks gate /readyz; the readiness gate set by
// SetReady overrides check results during startup and draining.
type Service struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	ready     bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty, not-yet-ready health service.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a liveness probe. Not safe after Start.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, probe CheckFunc) {
	s.liveness = append(s.liveness, &check{name: name, timeout: timeout, probe: probe})
}

// AddReadinessCheck registers a readiness probe. Not safe after Start.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, probe CheckFunc) {
	s.readiness = append(s.readiness, &check{name: name, timeout: timeout, probe: probe})
}

// SetReady flips the readiness gate. Flip to false before shutdown so load
// balancers drain the instance.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

func (s *Service) isReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Start runs every check once immediately and then at the given interval
// until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	all := make([]*check, 0, len(s.liveness)+len(s.readiness))
	all = append(all, s.liveness...)
	all = append(all, s.readiness...)

	go func() {
		defer close(s.done)

		runAll := func() {
			for _, c := range all {
				c.run(ctx)
			}
		}
		runAll()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runAll()
			}
		}
	}()
}

// Stop cancels the background check loop and waits for it to exit.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, s.liveness, true)
}

// ReadyEndpoint serves the readiness probe.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, s.readiness, s.isReady())
}

type statusBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeStatus(w http.ResponseWriter, checks []*check, gate bool) {
	body := statusBody{Status: "ok"}
	healthy := gate

	if len(checks) > 0 {
		body.Checks = make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.err(); err != nil {
				healthy = false
				body.Checks[c.name] = err.Error()
			} else {
				body.Checks[c.name] = "ok"
			}
		}
	}

	status := http.StatusOK
	if !healthy {
		body.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
