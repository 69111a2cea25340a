package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "bugprint/internal/platform/net/http"
)

func serve(t *testing.T, r phttp.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestAdaptChi_RoutesAndParams(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Stack", "root")
			next.ServeHTTP(w, req)
		})
	})

	r.Route("/api/v1", func(api phttp.Router) {
		api.Route("/registry", func(reg phttp.Router) {
			reg.Get("/reservations/{fp}", func(w http.ResponseWriter, req *http.Request) {
				_, _ = io.WriteString(w, "get "+phttp.URLParam(req, "fp"))
			})
			reg.Group(func(g phttp.Router) {
				g.Use(func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
						w.Header().Set("X-Group", "auth")
						next.ServeHTTP(w, req)
					})
				})
				g.Post("/reservations", func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusCreated)
				})
				g.Delete("/reservations/{fp}", func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusNoContent)
				})
			})
		})
	})
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "# metrics")
	}))

	rec := serve(t, r, http.MethodGet, "/api/v1/registry/reservations/abc")
	if rec.Code != http.StatusOK || rec.Body.String() != "get abc" {
		t.Fatalf("GET: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Stack") != "root" || rec.Header().Get("X-Group") != "" {
		t.Fatalf("GET middleware headers: %v", rec.Header())
	}

	rec = serve(t, r, http.MethodPost, "/api/v1/registry/reservations")
	if rec.Code != http.StatusCreated || rec.Header().Get("X-Group") != "auth" {
		t.Fatalf("POST: %d %v", rec.Code, rec.Header())
	}

	rec = serve(t, r, http.MethodDelete, "/api/v1/registry/reservations/abc")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE: %d", rec.Code)
	}

	rec = serve(t, r, http.MethodGet, "/metrics")
	if rec.Body.String() != "# metrics" {
		t.Fatalf("Handle: %q", rec.Body.String())
	}

	if rec := serve(t, r, http.MethodPut, "/api/v1/registry/reservations"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT should be 405, got %d", rec.Code)
	}
}
