package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bugprint/internal/core/version"
	"bugprint/internal/platform/config"
	perr "bugprint/internal/platform/errors"
)

//go:embed openapi.json
var openapiDoc string

// docReader is swapped in tests to feed a broken document
var docReader = func() string { return openapiDoc }

const (
	oasVersion = "3.0.3"
	errRef     = "#/components/schemas/ErrorResponse"
	sampleReq  = "579f33bf50b1/abc-000001"
)

// errorSchema mirrors net.Wire for failed calls
var errorSchema = map[string]any{
	"type":        "object",
	"description": "Error envelope returned by every failing call",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer", "format": "int32"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer", "format": "int32"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		prepare(doc, config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// prepare pins the document to what http-swagger renders and adds the shared error responses
func prepare(doc map[string]any, titleSuffix string) {
	ensureServers(doc, "/api/v1")

	info := child(doc, "info")
	if title, ok := info["title"].(string); ok && titleSuffix != "" {
		info["title"] = title + " " + titleSuffix
	}
	if v := version.Info().Version; v != "" && v != "dev" {
		info["version"] = v
	}

	schemas := child(child(doc, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema
	}

	defaultResponse(doc, http.StatusBadRequest, perr.ErrorCodeValidation,
		"fingerprint must be a 64 char lowercase hex sha256")
	defaultResponse(doc, http.StatusInternalServerError, perr.ErrorCodePanic, "panic recovered")
}

// ensureServers lifts swagger 2 and 3.1 documents to 3.0.3 and sets a base url when none is given
func ensureServers(doc map[string]any, url string) {
	delete(doc, "swagger")
	if v, _ := doc["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		doc["openapi"] = oasVersion
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{map[string]any{"url": url}}
	}
}

// defaultResponse adds status to every operation that does not declare it
func defaultResponse(doc map[string]any, status int, code perr.ErrorCode, msg string) {
	key := http.StatusText(status)
	resp := map[string]any{
		"description": key,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": errRef},
				"example": map[string]any{
					"status_code": status,
					"status":      key,
					"code":        int(code),
					"error":       msg,
					"request_id":  sampleReq,
				},
			},
		},
	}

	paths, _ := doc["paths"].(map[string]any)
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, raw := range ops {
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			if _, ok := responses[strconv.Itoa(status)]; !ok {
				responses[strconv.Itoa(status)] = resp
			}
		}
	}
}

// child returns m[key] as an object, creating it when missing or of another type
func child(m map[string]any, key string) map[string]any {
	if c, ok := m[key].(map[string]any); ok {
		return c
	}
	c := map[string]any{}
	m[key] = c
	return c
}
