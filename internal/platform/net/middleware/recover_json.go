package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "bugprint/internal/platform/errors"
	"bugprint/internal/platform/logger"
	pnet "bugprint/internal/platform/net"
)

// RecoverJSON turns a handler panic into a JSON 500 and logs the stack with the request id
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())

			log := logger.C(r.Context())
			if log == nil {
				log = logger.Named("http")
			}
			log.Error().
				Str("request_id", reqID).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			status, body := pnet.Error(perr.PanicErrf("panic recovered"), reqID)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		}()
		next.ServeHTTP(w, r)
	})
}
