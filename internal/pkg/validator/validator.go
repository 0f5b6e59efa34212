package validator

import (
	"errors"

	"carrental/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Struct validates v and reports failures as a business validation error.
func Struct(v interface{}) error {
	fields := Validate(v)
	if fields == nil {
		return nil
	}
	details := make(map[string]any, len(fields))
	for k, tag := range fields {
		details[k] = tag
	}
	return apperror.Validation("Invalid request body").WithDetails(details)
}
