// Package fingerprint computes a deterministic identity for a bug report
// Pipeline order
// 1 Normalized page URL (always first)
// 2 Technical signal: original error "type:message", then the first error log message
// 3 Title, only when step 2 produced nothing
// 4 Components are masked, lower-cased and joined with "|"
// 5 SHA-256 over the UTF-8 bytes, lowercase hex
//
// The joined string and its hash are a storage format: previously stored
// fingerprints only match if every step here stays byte-for-byte stable
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator joins the normalized components before hashing
const Separator = "|"

// LogTypeError is the console entry type treated as a technical signal
const LogTypeError = "error"

// Fingerprint is a 64 char lowercase hex sha256 digest
type Fingerprint string

// String returns the hex form
func (f Fingerprint) String() string { return string(f) }

// Valid reports whether f looks like a sha256 hex digest
func (f Fingerprint) Valid() bool {
	if len(f) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(f); i++ {
		c := f[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ErrorInfo is the structured error captured alongside a report
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// LogEntry is one captured console line
type LogEntry struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// BugReport holds the report fields the fingerprint reads
type BugReport struct {
	URL           string     `json:"url" validate:"required"`
	Title         string     `json:"title"`
	OriginalError *ErrorInfo `json:"originalError,omitempty"`
	Logs          []LogEntry `json:"logs,omitempty"`
}

// lowerPool hands out Unicode-aware lower casers; a Caser is stateful
var lowerPool = sync.Pool{
	New: func() any { return cases.Lower(language.Und) },
}

func lower(s string) string {
	if s == "" {
		return ""
	}
	c := lowerPool.Get().(cases.Caser)
	out := c.String(s)
	c.Reset()
	lowerPool.Put(c)
	return out
}

// NormalizeText masks and lower-cases free text (titles, error messages)
func NormalizeText(s string) string {
	return lower(Mask(s))
}

// Components returns the normalized parts of r in hashing order
func Components(r BugReport) []string {
	parts := []string{NormalizeURL(r.URL)}

	technical := false
	if r.OriginalError != nil {
		parts = append(parts, NormalizeText(r.OriginalError.Type+":"+r.OriginalError.Message))
		technical = true
	}
	// first error wins: it is the closest to the root cause
	for _, l := range r.Logs {
		if l.Type == LogTypeError {
			parts = append(parts, NormalizeText(l.Message))
			technical = true
			break
		}
	}

	// titles fragment identical failures, only use them without a technical signal
	if !technical {
		parts = append(parts, NormalizeText(r.Title))
	}
	return parts
}

// Generate computes the fingerprint for r
func Generate(r BugReport) Fingerprint {
	return Hash(strings.Join(Components(r), Separator))
}

// Hash returns the lowercase hex sha256 of s
func Hash(s string) Fingerprint {
	sum := sha256.Sum256([]byte(s))
	return Fingerprint(hex.EncodeToString(sum[:]))
}
