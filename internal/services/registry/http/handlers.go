// Package http provides HTTP transport for the reservation registry
package http

import (
	stdhttp "net/http"
	"sync"

	"bugprint/internal/modkit/httpkit"
	perr "bugprint/internal/platform/errors"
	"bugprint/internal/platform/net/middleware"
	"bugprint/internal/services/registry/domain"
)

var registerOnce sync.Once

// registerValidators installs the fingerprint tag used by ReserveInput
func registerValidators() {
	registerOnce.Do(func() {
		_ = httpkit.RegisterValidation("fingerprint", "{0} must be a 64 char lowercase hex sha256", func(fl httpkit.FieldLevel) bool {
			return domain.Fingerprint(fl.Field().String()).Valid()
		})
	})
}

// MetaConfirmedBy records the authenticated caller on confirmed entries
const MetaConfirmedBy = "confirmedBy"

// Register mounts registry endpoints on the given router
// routes that change state sit behind auth; a nil auth leaves them open
func Register(r httpkit.Router, s domain.ServicePort, auth middleware.AuthPort) {
	registerValidators()
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.BugReport](r, "/fingerprints", h.fingerprint)
	httpkit.Get(r, "/reservations/{fp}", h.check)

	httpkit.Protected(r, auth, func(pr httpkit.Router) {
		httpkit.PostJSON[domain.ReserveInput](pr, "/reservations", h.reserve)
		httpkit.PostJSON[domain.ConfirmInput](pr, "/reservations/{fp}/confirm", h.confirm)
		httpkit.Delete(pr, "/reservations/{fp}", h.release)
		httpkit.Post(pr, "/sweep", h.sweep)
	})
}

type handlers struct{ svc domain.ServicePort }

func pathFingerprint(r *stdhttp.Request) domain.Fingerprint {
	return domain.Fingerprint(httpkit.URLParam(r, "fp"))
}

// swagger:route POST /registry/fingerprints Registry registryFingerprint
// @Summary Compute the fingerprint of a bug report
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body domain.BugReport true "Report"
// @Success 200 {object} domain.FingerprintResult "ok"
// @Router /registry/fingerprints [post]
func (h *handlers) fingerprint(_ *stdhttp.Request, in domain.BugReport) (any, error) {
	return h.svc.Fingerprint(in), nil
}

// swagger:route POST /registry/reservations Registry registryReserve
// @Summary Reserve a fingerprint before filing a ticket
// @Description reserved=false means another holder owns the fingerprint
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body domain.ReserveInput true "Fingerprint"
// @Success 200 {object} domain.ReserveOutput "ok"
// @Router /registry/reservations [post]
func (h *handlers) reserve(r *stdhttp.Request, in domain.ReserveInput) (any, error) {
	ok, err := h.svc.Reserve(r.Context(), in.Fingerprint)
	if err != nil {
		return nil, err
	}
	return domain.ReserveOutput{Fingerprint: in.Fingerprint, Reserved: ok}, nil
}

// swagger:route GET /registry/reservations/{fp} Registry registryCheck
// @Summary Look up a live registry entry
// @Tags Registry
// @Produce json
// @Param fp path string true "Fingerprint"
// @Success 200 {object} domain.EntryView "ok"
// @Failure 404 "no live entry"
// @Router /registry/reservations/{fp} [get]
func (h *handlers) check(r *stdhttp.Request) (any, error) {
	fp := pathFingerprint(r)
	e, found, err := h.svc.CheckLocalDuplicate(r.Context(), fp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, perr.NotFoundf("no entry for fingerprint %s", fp)
	}
	return domain.View(fp, e), nil
}

// swagger:route POST /registry/reservations/{fp}/confirm Registry registryConfirm
// @Summary Confirm a reservation once the ticket exists
// @Tags Registry
// @Accept json
// @Param fp path string true "Fingerprint"
// @Param payload body domain.ConfirmInput true "Ticket metadata"
// @Success 204 "confirmed or nothing to confirm"
// @Router /registry/reservations/{fp}/confirm [post]
func (h *handlers) confirm(r *stdhttp.Request, in domain.ConfirmInput) (any, error) {
	meta := in.Meta()
	if who, err := httpkit.User(r); err == nil {
		meta[MetaConfirmedBy] = who
	}
	if err := h.svc.Confirm(r.Context(), pathFingerprint(r), meta); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route DELETE /registry/reservations/{fp} Registry registryRelease
// @Summary Release a pending reservation
// @Tags Registry
// @Param fp path string true "Fingerprint"
// @Success 204 "released"
// @Router /registry/reservations/{fp} [delete]
func (h *handlers) release(r *stdhttp.Request) (any, error) {
	if err := h.svc.Release(r.Context(), pathFingerprint(r)); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route POST /registry/sweep Registry registrySweep
// @Summary Remove expired entries now
// @Tags Registry
// @Produce json
// @Success 200 {object} domain.SweepOutput "ok"
// @Router /registry/sweep [post]
func (h *handlers) sweep(r *stdhttp.Request) (any, error) {
	n, err := h.svc.CleanupExpired(r.Context())
	if err != nil {
		return nil, err
	}
	return domain.SweepOutput{Removed: n}, nil
}
