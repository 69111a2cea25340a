package httpkit

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	perrs "bugprint/internal/platform/errors"
)

// TokenFunc resolves a bearer token to a user id
type TokenFunc func(token string) (userID string, err error)

// Port implements middleware.AuthPort over the Authorization header
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a token parser
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse reads "Authorization: Bearer <token>" (scheme case-insensitive) and resolves the token
// every failure is unauthorized and never says which part was wrong beyond missing or invalid
func (p *Port) Parse(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	uid, err := p.parse(raw)
	if err != nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return uid, nil
}

var errUnknownToken = errors.New("unknown token")

// StaticTokens builds a TokenFunc over "name:token" entries
// the matched name becomes the user id; malformed entries are skipped
func StaticTokens(entries []string) TokenFunc {
	type cred struct{ name, token []byte }
	var creds []cred
	for _, e := range entries {
		name, tok, ok := strings.Cut(strings.TrimSpace(e), ":")
		if !ok || name == "" || tok == "" {
			continue
		}
		creds = append(creds, cred{name: []byte(name), token: []byte(tok)})
	}
	return func(token string) (string, error) {
		raw := []byte(token)
		for _, c := range creds {
			if subtle.ConstantTimeCompare(raw, c.token) == 1 {
				return string(c.name), nil
			}
		}
		return "", errUnknownToken
	}
}
