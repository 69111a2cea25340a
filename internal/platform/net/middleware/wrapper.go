// Package middleware keeps chi and go-chi/cors behind one import
package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"

	pstrings "bugprint/internal/platform/strings"
)

// chi middleware the API stack uses as is
var (
	RequestID        = chimw.RequestID
	RealIP           = chimw.RealIP
	NoCache          = chimw.NoCache
	StripSlashes     = chimw.StripSlashes
	Timeout          = chimw.Timeout
	Heartbeat        = chimw.Heartbeat
	AllowContentType = chimw.AllowContentType
)

// Compress gzips and deflates responses at level
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.NewCompressor(level).Handler
}

// CORSOptions is the part of go-chi/cors the API configures
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
	corsExposed = []string{"X-Request-ID"}
)

// CORS fills unset lists with the verbs and headers the registry routes use
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, corsMethods),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, corsHeaders),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, corsExposed),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
