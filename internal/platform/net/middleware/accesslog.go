package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"bugprint/internal/platform/logger"
)

// AccessLog writes one line per request through the request scoped logger
// requests at or above slow log at warn; zero never does
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			took := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			e := log.Info()
			if slow > 0 && took >= slow {
				e = log.Warn()
			}
			e.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", took).
				Msg("request done")
		})
	}
}
