// Package http serves the meta endpoints: liveness, readiness, build and fingerprint format
package http

import (
	"context"
	"net/http"
	"time"

	"bugprint/internal/core/fingerprint"
	"bugprint/internal/core/version"
	"bugprint/internal/modkit/httpkit"
	"bugprint/internal/platform/store"
)

// readyTimeout bounds all backend pings of one readiness request
const readyTimeout = 2 * time.Second

// Backend is a storage seam readiness reports on
// a nil Seam is a disabled backend; a Seam without Ping cannot be checked
type Backend struct {
	Name string
	Seam any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Backends    []Backend
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/fingerprint", h.fingerprint)
}

type handlers struct{ deps Deps }

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Service string `json:"service" example:"bugprint-api"`
	Started string `json:"started" example:"2026-10-01T08:00:00Z"`
	Now     string `json:"now" example:"2026-10-01T08:05:00Z"`
}

// Readiness states, per backend and overall
const (
	ReadyOK       = "ok"
	ReadyFail     = "fail"
	ReadySkipped  = "skipped"
	ReadyUnknown  = "unknown"
	ReadyDegraded = "degraded"
)

// ReadyCheck is the result for one backend
type ReadyCheck struct {
	Name   string `json:"name" example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is the readiness payload
// fail wins over degraded, which wins over ok; skipped backends do not count
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now" example:"2026-10-01T08:05:00Z"`
}

// ServiceResponse is the service identity payload
type ServiceResponse struct {
	Name    string `json:"name" example:"bugprint-api"`
	Started string `json:"started" example:"2026-10-01T08:00:00Z"`
	Uptime  int64  `json:"uptime" example:"300"`
}

// FingerprintResponse describes the fingerprint format this build produces
// two builds with different responses may compute different fingerprints for one report
type FingerprintResponse struct {
	Algorithm   string            `json:"algorithm" example:"sha256"`
	Separator   string            `json:"separator" example:"|"`
	Rules       []string          `json:"rules"`
	NoiseParams []string          `json:"noise_params"`
	Build       version.BuildInfo `json:"build"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Now:     stamp(time.Now()),
	}, nil
}

func check(ctx context.Context, b Backend) ReadyCheck {
	c := ReadyCheck{Name: b.Name}
	if b.Seam == nil {
		c.Status = ReadySkipped
		return c
	}
	p, ok := b.Seam.(store.Pinger)
	if !ok {
		c.Status = ReadyUnknown
		return c
	}
	if err := p.Ping(ctx); err != nil {
		c.Status, c.Error = ReadyFail, err.Error()
		return c
	}
	c.Status = ReadyOK
	return c
}

// @Summary Readiness of the enabled storage backends
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	out := ReadyResponse{Status: ReadyOK, Checks: make([]ReadyCheck, 0, len(h.deps.Backends))}
	for _, b := range h.deps.Backends {
		c := check(ctx, b)
		out.Checks = append(out.Checks, c)
		switch {
		case c.Status == ReadyFail:
			out.Status = ReadyFail
		case c.Status == ReadyUnknown && out.Status == ReadyOK:
			out.Status = ReadyDegraded
		}
	}
	out.Now = stamp(time.Now())
	return out, nil
}

// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) { return version.Info(), nil }

// @Summary Service name and uptime in seconds
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// @Summary Fingerprint format in use
// @Tags Meta
// @Produce json
// @Success 200 {object} FingerprintResponse
// @Router /meta/fingerprint [get]
func (h *handlers) fingerprint(*http.Request) (any, error) {
	rules := make([]string, len(fingerprint.Rules))
	for i, r := range fingerprint.Rules {
		rules[i] = r.Name
	}
	return FingerprintResponse{
		Algorithm:   "sha256",
		Separator:   fingerprint.Separator,
		Rules:       rules,
		NoiseParams: fingerprint.NoiseParams,
		Build:       version.Info(),
	}, nil
}
