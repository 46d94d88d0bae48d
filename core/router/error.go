package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/relay/core/handler"
)

var (
	ErrNoContextFactory = errors.New("no context factory provided")
	ErrNilResponse      = errors.New("nil response")
	ErrInvalidMethod    = errors.New("invalid http method")
	ErrNilHandler       = errors.New("nil handler")
	ErrInvalidPattern   = errors.New("invalid route path pattern")

	ErrMethodNotAllowed error = statusError{status: http.StatusMethodNotAllowed}
	ErrNotFound         error = statusError{status: http.StatusNotFound}
)

// statusError is a routing error carrying its own HTTP status.
type statusError struct {
	status int
}

func (e statusError) Error() string {
	return http.StatusText(e.status)
}

func (e statusError) StatusCode() int {
	return e.status
}

// statusCode is implemented by errors that choose their HTTP status.
type statusCode interface {
	StatusCode() int
}

// defaultErrorHandler renders the error message as plain text.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()

	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	http.Error(w, err.Error(), status)
}

// PanicError lets external error handlers detect recovered panics.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
