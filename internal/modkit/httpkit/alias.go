// Package httpkit is the HTTP surface modules build on
// modules import it instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	perrs "bugprint/internal/platform/errors"
	pnet "bugprint/internal/platform/net"
	phttp "bugprint/internal/platform/net/http"
	"bugprint/internal/platform/net/http/bind"
)

type (
	// Response is a return-style handler result
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// FieldLevel is the validator view passed to custom tags
	FieldLevel = bind.FieldLevel
)

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// JSON decodes and validates a T body, then wraps the handler result
// returning a Response from fn picks the status
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler { return phttp.JSONHandler(fn) }

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler { return phttp.JSONHandlerNoBody(fn) }

// URLParam returns a named path parameter from the matched route
func URLParam(r *http.Request, name string) string { return phttp.URLParam(r, name) }

// RegisterValidation adds a custom validate tag used by JSON bodies
func RegisterValidation(tag, msg string, fn func(FieldLevel) bool) error {
	return bind.RegisterValidationMsg(tag, msg, fn)
}

// User returns the authenticated user id put on the request by Auth
func User(r *http.Request) (string, error) {
	if uid := pnet.UserID(r.Context()); uid != "" {
		return uid, nil
	}
	return "", perrs.Unauthorizedf("missing bearer token")
}
