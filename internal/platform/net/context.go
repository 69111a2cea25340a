// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyUserID ctxKey = "user_id"

// WithUser annotates context with the authenticated user id
func WithUser(ctx context.Context, userID string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, keyUserID, userID)
	}
	return ctx
}

// RequestID returns the chi request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// UserID returns the user id on the context if present
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(keyUserID).(string); ok {
		return v
	}
	return ""
}
