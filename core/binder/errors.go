package binder

import "errors"

var (
	// ErrUnsupportedMediaType indicates a Content-Type the binder does not decode.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrMissingContentType indicates the request has no Content-Type header.
	ErrMissingContentType = errors.New("missing content type")

	// ErrFailedToParseJSON indicates a malformed body or one that does not match the target type.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrBodyTooLarge indicates the body exceeds the binder size limit.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)
