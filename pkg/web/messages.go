package web

import (
	"github.com/go-playground/validator/v10"
)

// GetErrorMsg translates a validator field error into a human readable
// message suffix to be appended to the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " field must be greater or equal to " + fe.Param()
	case "max":
		return " field must be less or equal to " + fe.Param()
	case "kind":
		return " field must be either income or outcome"
	case "gt":
		return " field must be greater than " + fe.Param()
	default:
		return " field is invalid"
	}
}
