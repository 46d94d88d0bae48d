package handler

import (
	"context"
	"net/http"
)

// Context is the request context handed to every handler.
// The router provides a default implementation; custom contexts are supported
// through a context factory.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Param returns a path parameter captured by the route pattern.
	Param(key string) string
	// SetValue stores a request-scoped value visible through Value.
	SetValue(key, val any)
}
