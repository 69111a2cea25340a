package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bugprint/internal/platform/net/middleware"
)

type accessLine struct {
	Level  string `json:"level"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status"`
	Bytes  int    `json:"bytes"`
}

func TestAccessLog(t *testing.T) {
	cases := []struct {
		name  string
		slow  time.Duration
		h     http.HandlerFunc
		code  int
		body  string
		level string
	}{
		{
			name: "explicit status",
			h: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, "ok")
			},
			code: http.StatusCreated, body: "ok", level: "info",
		},
		{
			name: "slow request marked warn",
			slow: time.Nanosecond,
			h: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(50 * time.Microsecond)
				_, _ = io.WriteString(w, "slow")
			},
			code: http.StatusOK, body: "slow", level: "warn",
		},
		{
			name: "several writes",
			h: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("fp:"))
				_, _ = w.Write([]byte("abc"))
			},
			code: http.StatusOK, body: "fp:abc", level: "info",
		},
		{
			name: "nothing written",
			h:    func(http.ResponseWriter, *http.Request) {},
			code: http.StatusOK, level: "info",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := zerolog.New(&buf)
			req := httptest.NewRequest(http.MethodGet, "/registry/reservations/abc", nil)
			req = req.WithContext(log.WithContext(req.Context()))

			rr := httptest.NewRecorder()
			middleware.AccessLog(c.slow)(c.h).ServeHTTP(rr, req)
			if rr.Code != c.code || rr.Body.String() != c.body {
				t.Fatalf("got %d %q", rr.Code, rr.Body.String())
			}

			var line accessLine
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("decode %q: %v", buf.String(), err)
			}
			want := accessLine{Level: c.level, Method: "GET", Path: "/registry/reservations/abc", Status: c.code, Bytes: len(c.body)}
			if line != want {
				t.Fatalf("line %+v, want %+v", line, want)
			}
		})
	}
}
