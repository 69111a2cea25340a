package fingerprint

import (
	"net/url"
	"sort"
	"strings"
)

// NoiseParams are query keys dropped before comparison (case-insensitive prefix match)
var NoiseParams = []string{"utm_", "fbclid", "gclid", "_t", "timestamp", "session", "token", "sid", "rand"}

// defaultPorts are elided from the origin
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

type queryPair struct{ key, value string }

// NormalizeURL returns origin + masked path + sorted filtered query, lower-cased
// Unparseable or relative input degrades to NormalizeText
func NormalizeURL(raw string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = NormalizeText(raw)
		}
	}()

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NormalizeText(raw)
	}

	var b strings.Builder
	b.WriteString(origin(u))

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	b.WriteString(Mask(path))

	if q := normalizeQuery(u.RawQuery); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return lower(b.String())
}

func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && defaultPorts[scheme] != port {
		host += ":" + port
	}
	return scheme + "://" + host
}

// normalizeQuery drops noise keys, masks values and sorts by key
// pairs with equal keys keep their original relative order
// keys sort as written and the whole URL is lower-cased afterwards, so ?B=1&a=2 gives b=1&a=2;
// stored fingerprints depend on that order
func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	var pairs []queryPair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		k, v = unescape(k), unescape(v)
		if isNoise(k) {
			continue
		}
		pairs = append(pairs, queryPair{key: k, value: Mask(v)})
	}
	if len(pairs) == 0 {
		return ""
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.key + "=" + p.value
	}
	return strings.Join(out, "&")
}

func isNoise(key string) bool {
	k := strings.ToLower(key)
	for _, p := range NoiseParams {
		if strings.HasPrefix(k, p) {
			return true
		}
	}
	return false
}

// unescape decodes form encoding; malformed escapes are kept verbatim
func unescape(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}
