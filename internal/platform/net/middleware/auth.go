package middleware

import (
	"net/http"

	pnet "bugprint/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	// Parse returns the caller's user id or an error
	Parse(r *http.Request) (userID string, err error)
}

// Auth rejects requests the port cannot resolve and puts the user id on the context
// a nil port passes every request through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
