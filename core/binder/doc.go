// Package binder decodes HTTP request bodies into Go values and validates
// them with go-playground/validator struct tags.
//
//	type Signup struct {
//		Email     string `json:"email" validate:"required,email"`
//		FirstName string `json:"first_name" validate:"required"`
//	}
//
//	var s Signup
//	if err := binder.Bind(r, &s, binder.JSON()); err != nil {
//		switch {
//		case errors.Is(err, binder.ErrValidation):
//			// 422
//		case errors.Is(err, binder.ErrUnsupportedMediaType):
//			// 415
//		default:
//			// 400
//		}
//	}
//
// Validation errors are reported with the field's JSON name.
package binder
