package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate = validator.New()

// Validate checks struct tags first, then the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	seen := make(map[string]bool)
	admins := 0
	for i, u := range cfg.Users.Bootstrap {
		if seen[u.Username] {
			return fmt.Errorf("users.bootstrap[%d]: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = true
		if u.Role == "admin" {
			admins++
		}
	}
	if len(cfg.Users.Bootstrap) > 0 && admins == 0 {
		return fmt.Errorf("users.bootstrap: at least one admin account is required")
	}

	return nil
}

// formatValidationError reports the first failed field in a readable form.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
