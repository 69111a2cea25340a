package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perrs "bugprint/internal/platform/errors"
)

func withAuth(h string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/registry/reservations", nil)
	if h != "" {
		r.Header.Set("Authorization", h)
	}
	return r
}

func TestPort_Parse(t *testing.T) {
	p := NewPortFunc(StaticTokens([]string{"ci:s3cret", " ops:hunter2 ", "broken", ":nameless", "empty:"}))

	cases := []struct {
		header string
		user   string
		msg    string
	}{
		{"Bearer s3cret", "ci", ""},
		{"  bearer   hunter2  ", "ops", ""},
		{"BEARER s3cret", "ci", ""},
		{"", "", "missing bearer token"},
		{"Basic czNjcmV0", "", "missing bearer token"},
		{"Bearer   ", "", "missing bearer token"},
		{"Bear", "", "missing bearer token"},
		{"Bearer nope", "", "invalid bearer token"},
		{"Bearer broken", "", "invalid bearer token"},
	}
	for _, c := range cases {
		uid, err := p.Parse(withAuth(c.header))
		if c.msg == "" {
			if err != nil || uid != c.user {
				t.Fatalf("%q: got %q %v", c.header, uid, err)
			}
			continue
		}
		if !perrs.IsCode(err, perrs.ErrorCodeUnauthorized) || err.Error() != c.msg {
			t.Fatalf("%q: want %q, got %v", c.header, c.msg, err)
		}
	}
}

func TestPort_NilParser(t *testing.T) {
	_, err := NewPortFunc(nil).Parse(withAuth("Bearer x"))
	if !perrs.IsCode(err, perrs.ErrorCodeUnauthorized) {
		t.Fatalf("got %v", err)
	}
}

func TestPort_ParserErrorIsHidden(t *testing.T) {
	p := NewPortFunc(func(string) (string, error) { return "", errors.New("db down") })
	_, err := p.Parse(withAuth("Bearer x"))
	if err == nil || err.Error() != "invalid bearer token" {
		t.Fatalf("got %v", err)
	}
}
