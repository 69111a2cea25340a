package fingerprint

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule is one named masking step. Apply must be pure
type Rule struct {
	Name  string
	Apply func(string) string
}

// Placeholders written by the masking rules
const (
	PlaceholderUUID = "{uuid}"
	PlaceholderID   = "{id}"
	PlaceholderHex  = "{hex}"
	PlaceholderDate = "{date}"
)

var (
	reUUID       = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	reMixedToken = regexp.MustCompile(`(?i)\b[a-z0-9_-]{4,}\b`)
	reCapsToken  = regexp.MustCompile(`\b[A-Z0-9_-]{3,}\b`)
	reLabeledID  = regexp.MustCompile(`(?i)\b(request|req|trace|correlation|transaction|asset|item|user|order|client|group)[._\s]*id[:\s=]+[^\s,;&|]+`)
	reEntityRef  = regexp.MustCompile(`(?i)\b(asset|item|user|order|client|group|record|doc|file|report|ticket|issue)\s+#?[a-z0-9_-]+`)
	reHexAddr    = regexp.MustCompile(`(?i)0x[0-9a-f]+`)
	reLongNumber = regexp.MustCompile(`\b[0-9]{5,}\b`)
	reISODate    = regexp.MustCompile(`(?i)[0-9]{4}-[0-9]{2}-[0-9]{2}[t ][0-9]{2}:[0-9]{2}(?::[0-9]{2}(?:\.[0-9]+)?)?(?:z|[+-][0-9]{2}:?[0-9]{2})?`)
)

// Rules is the masking pipeline. Order is part of the fingerprint format:
// reordering changes every stored fingerprint
var Rules = []Rule{
	{Name: "uuid", Apply: replaceWith(reUUID, PlaceholderUUID)},
	{Name: "mixed_token", Apply: replaceIf(reMixedToken, hasDigit, PlaceholderID)},
	{Name: "caps_token", Apply: replaceWith(reCapsToken, PlaceholderID)},
	{Name: "labeled_id", Apply: replaceWith(reLabeledID, "${1}id: "+PlaceholderID)},
	{Name: "entity_ref", Apply: replaceWith(reEntityRef, "${1} "+PlaceholderID)},
	{Name: "hex_addr", Apply: replaceWith(reHexAddr, PlaceholderHex)},
	{Name: "long_number", Apply: replaceWith(reLongNumber, PlaceholderID)},
	{Name: "iso_date", Apply: replaceWith(reISODate, PlaceholderDate)},
	{Name: "whitespace", Apply: collapseSpaces},
}

// Mask runs every rule in order over s
// a rule that panics poisons the whole string and Mask returns ""
func Mask(s string) (out string) {
	if s == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	for _, r := range Rules {
		s = r.Apply(s)
	}
	return s
}

func replaceWith(re *regexp.Regexp, repl string) func(string) string {
	return func(s string) string { return re.ReplaceAllString(s, repl) }
}

// replaceIf swaps a match for repl only when keep reports true for it
func replaceIf(re *regexp.Regexp, keep func(string) bool, repl string) func(string) string {
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			if keep(m) {
				return repl
			}
			return m
		})
	}
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

// collapseSpaces converts whitespace runs (including BOM) to one ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
