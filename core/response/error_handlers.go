package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/relay/core/handler"
)

type statusCode interface {
	StatusCode() int
}

// convertToHTTPError maps any error to an HTTPError. HTTPError values pass through,
// errors with a StatusCode() use the matching predefined error, everything else is a 500.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		baseErr = newHTTPError(status, "error")
		if http.StatusText(status) == "" {
			baseErr = ErrInternalServerError
		}
	}

	return baseErr.WithError(err)
}

// writtenChecker is implemented by the router's response writer.
type writtenChecker interface {
	Written() bool
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	if wc, ok := ctx.ResponseWriter().(writtenChecker); ok && wc.Written() {
		return
	}
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler renders errors as JSON documents.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	if wc, ok := ctx.ResponseWriter().(writtenChecker); ok && wc.Written() {
		return
	}
	httpErr := convertToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
