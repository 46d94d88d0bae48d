// Package router dispatches requests to type-safe handlers with middleware,
// inline groups, panic recovery and a pluggable error handler.
//
// Routes are matched by the standard library ServeMux, so patterns use its
// syntax, including path wildcards:
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.ErrorHandler[*router.Context]),
//	)
//	r.Post("/api/messages", submitHandler)
//	r.Get("/hubs/messages", hubHandler)
//	r.Get("/items/{id}", func(ctx *router.Context) handler.Response {
//		return response.String(ctx.Param("id"))
//	})
//
// Errors returned from a handler's Response are passed to the error handler.
// Unmatched paths produce ErrNotFound, and paths registered for other methods
// produce ErrMethodNotAllowed with an Allow header.
//
// Root middlewares must be registered before the first route; they wrap every
// route, including routes added later inside groups.
package router
