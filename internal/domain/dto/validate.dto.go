package dto

import "github.com/go-playground/validator/v10"

// validate is shared by every request type; validator caches struct metadata per instance.
var validate = validator.New()

// Validate checks v against its validate tags.
func Validate(v any) error {
	return validate.Struct(v)
}
