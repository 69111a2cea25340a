package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type reserveDTO struct {
	Fingerprint string `json:"fingerprint" validate:"required"`
}

func post(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/registry/reservations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestJSONHandler_Success(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, in reserveDTO) (any, error) {
		return map[string]string{"echo": in.Fingerprint}, nil
	})
	rr := httptest.NewRecorder()
	h(rr, post(`{"fingerprint":"abc"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"echo":"abc"`) {
		t.Fatalf("body %q missing result", rr.Body.String())
	}
}

func TestJSONHandler_BindError(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, _ reserveDTO) (any, error) {
		t.Error("handler should not be called on bind error")
		return nil, nil
	})
	for _, body := range []string{`{`, `{}`, `{"fingerprint":"a","extra":1}`} {
		rr := httptest.NewRecorder()
		h(rr, post(body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestJSONHandler_HandlerError(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, _ reserveDTO) (any, error) {
		return nil, errors.New("boom")
	})
	rr := httptest.NewRecorder()
	h(rr, post(`{"fingerprint":"abc"}`))

	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), "boom") {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestJSONHandler_ResponsePassesThrough(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, _ reserveDTO) (any, error) {
		return NoContent(), nil
	})
	rr := httptest.NewRecorder()
	h(rr, post(`{"fingerprint":"abc"}`))

	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestJSONHandlerNoBody(t *testing.T) {
	t.Parallel()

	ok := JSONHandlerNoBody(func(*http.Request) (any, error) { return []int{1, 2}, nil })
	rr := httptest.NewRecorder()
	ok(rr, httptest.NewRequest(http.MethodGet, "/registry/reservations/abc", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"data":[1,2]`) {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}

	bad := JSONHandlerNoBody(func(*http.Request) (any, error) { return nil, errors.New("nope") })
	rr = httptest.NewRecorder()
	bad(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
}
