// Package response provides the handler.Response constructors used by the relay
// endpoints: plain text, JSON, empty status responses, WebSocket upgrades, and
// error handlers that map errors to HTTP status codes.
//
// # Basic Usage
//
//	func submit(ctx handler.Context) handler.Response {
//		return response.Accepted()
//	}
//
// # Errors
//
// Any error implementing StatusCode() int is rendered with that status.
// HTTPError values pass through unchanged; other errors map to the predefined
// error for their status and record the cause in Details:
//
//	return response.Error(response.ErrBadRequest.WithMessage("Text must not be empty."))
//
// ErrorHandler renders plain text, JSONErrorHandler renders the HTTPError document:
//
//	{"code":"bad_request","message":"Text must not be empty."}
//
// # WebSocket
//
// WebSocket upgrades the connection and runs the handler for its lifetime:
//
//	return response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
//		return serve(ctx, conn)
//	}, response.WithWSReadLimit(64<<10))
package response
