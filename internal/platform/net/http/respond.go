// Package http adapts return-style handlers to net/http and writes the JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "bugprint/internal/platform/net"
)

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what a return-style handler produces
// a Body that is an error becomes an error envelope with the mapped status
type Response struct {
	Status int
	Body   any
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if resp.Status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}
	reqID := pnet.RequestID(r.Context())
	if err, ok := resp.Body.(error); ok && err != nil {
		status, body := pnet.Error(err, reqID)
		JSON(w, status, body)
		return
	}
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	JSON(w, status, pnet.Reply(status, resp.Body, reqID))
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps err to status and envelope
func Error(err error) Response { return Response{Body: err} }
