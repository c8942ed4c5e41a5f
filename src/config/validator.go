package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values using go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("memory_driver", validateMemoryDriver)
	return &Validator{validate: v}
}

// Validate validates a complete configuration.
func (v *Validator) Validate(config *Config) error {
	if err := v.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				return ValidationError{
					Field:   e.Field(),
					Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
					Value:   e.Value(),
				}
			}
		}
		return err
	}
	return nil
}

// validateMemoryDriver validates record store driver names.
func validateMemoryDriver(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "file", "memory", "sqlite", "redis":
		return true
	}
	return false
}
