package relayapp

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/relay/middleware"
)

// Context is the request context of the relay's handlers.
type Context struct {
	w http.ResponseWriter
	r *http.Request
}

func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *Context) Err() error {
	return c.r.Context().Err()
}

func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

// SetValue stores a value in the request's context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

func (c *Context) Request() *http.Request {
	return c.r
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the path wildcard named key.
func (c *Context) Param(key string) string {
	return c.r.PathValue(key)
}

// RequestID returns the id assigned by the request id middleware.
func (c *Context) RequestID() string {
	id, _ := middleware.GetRequestID(c)
	return id
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}
