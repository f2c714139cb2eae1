package transport

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation on a request payload.
func Validate(req interface{}) error {
	return validate.Struct(req)
}
