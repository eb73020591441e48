package config

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a Config against its `validate:"..."` struct tags.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}
