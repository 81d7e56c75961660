package binder

import "net/http"

// Binder decodes request data into v.
type Binder func(r *http.Request, v any) error

// Bind runs each binder in order, then validates v. It stops at the first error.
func Bind(r *http.Request, v any, binders ...Binder) error {
	for _, b := range binders {
		if err := b(r, v); err != nil {
			return err
		}
	}
	return Validate(v)
}
