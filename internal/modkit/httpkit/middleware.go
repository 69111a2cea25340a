package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "bugprint/internal/platform/net/http"
	"bugprint/internal/platform/net/middleware"
)

// CommonStack is the middleware every versioned API route runs through
func CommonStack(cors middleware.CORSOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.RecoverJSON,
		middleware.NoCache,
		middleware.AccessLog(500 * time.Millisecond),
		middleware.CORS(cors),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes,
		middleware.Timeout(30 * time.Second),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
