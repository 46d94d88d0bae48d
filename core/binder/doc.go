// Package binder decodes HTTP request bodies into Go values.
//
// JSON validates the Content-Type, enforces a size limit and reports failures
// through sentinel errors so handlers can map them to status codes:
//
//	var req struct {
//		Text string `json:"text"`
//	}
//	if err := binder.JSON()(r, &req); err != nil {
//		switch {
//		case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
//			// 415
//		case errors.Is(err, binder.ErrBodyTooLarge):
//			// 413
//		default:
//			// 400
//		}
//	}
package binder
