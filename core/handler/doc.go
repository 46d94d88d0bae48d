// Package handler defines the handler, response, error handler and middleware types
// shared by the router, the response helpers and the relay endpoints.
//
// A handler returns a Response instead of writing to the ResponseWriter directly,
// which lets middleware decorate what gets rendered:
//
//	func ping(ctx handler.Context) handler.Response {
//		return response.String("pong")
//	}
//
// Errors returned by a Response are passed to the router's ErrorHandler. An error
// that implements StatusCode() int controls the HTTP status of the error response.
package handler
