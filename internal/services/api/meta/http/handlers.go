// Package http serves the meta endpoints: liveness, readiness, build and uptime
package http

import (
	"context"
	"net/http"
	"time"

	"wta/internal/core/version"
	"wta/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// Pinger is satisfied by store adapters that can be pinged
type Pinger interface {
	Ping(context.Context) error
}

// Check names a dependency checked by /ready, a nil Target is reported as skipped
type Check struct {
	Name   string
	Target any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	Timeout     time.Duration // per ready check, default 2s
}

// Check outcomes
const (
	checkOK      = "ok"
	checkFail    = "fail"
	checkSkipped = "skipped"
	checkUnknown = "unknown"
	degraded     = "degraded"
)

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	m := meta{d}
	httpkit.Get(r, "/health", m.health)
	r.Get("/ready", httpkit.Handle(m.ready))
	httpkit.Get(r, "/version", func(*http.Request) (any, error) { return version.Info(), nil })
	httpkit.Get(r, "/service", m.service)
}

type meta struct{ Deps }

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"wta-api"`
	Started string `json:"started" example:"2026-03-01T09:00:00Z"`
	Now     string `json:"now"     example:"2026-03-01T09:05:00Z"`
}

// ReadyCheck is one checked dependency
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"` // ok, fail, skipped or unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is the readiness payload, Status is ok, degraded or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-03-01T09:05:00Z"`
}

// ServiceResponse reports uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"wta-api"`
	Started string `json:"started" example:"2026-03-01T09:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (m meta) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: m.ServiceName, Started: stamp(m.StartedAt), Now: stamp(time.Now())}, nil
}

// @Summary Readiness with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse "a dependency failed"
// @Router /meta/ready [get]
func (m meta) ready(r *http.Request) httpkit.Response {
	results := make([]ReadyCheck, len(m.Checks))

	// checks never fail the group, each result carries its own error
	var g errgroup.Group
	for i, c := range m.Checks {
		g.Go(func() error {
			results[i] = m.check(r.Context(), c)
			return nil
		})
	}
	_ = g.Wait()

	out := ReadyResponse{Status: checkOK, Checks: results, Now: stamp(time.Now())}
	for _, rc := range results {
		switch rc.Status {
		case checkFail:
			out.Status = checkFail
		case checkUnknown:
			if out.Status == checkOK {
				out.Status = degraded
			}
		}
	}
	if out.Status == checkFail {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}
	}
	return httpkit.OK(out)
}

func (m meta) check(ctx context.Context, c Check) ReadyCheck {
	rc := ReadyCheck{Name: c.Name}
	if c.Target == nil {
		rc.Status = checkSkipped
		return rc
	}
	p, ok := c.Target.(Pinger)
	if !ok {
		rc.Status = checkUnknown
		return rc
	}
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		rc.Status, rc.Error = checkFail, err.Error()
		return rc
	}
	rc.Status = checkOK
	return rc
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (m meta) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    m.ServiceName,
		Started: stamp(m.StartedAt),
		Uptime:  int64(time.Since(m.StartedAt) / time.Second),
	}, nil
}
