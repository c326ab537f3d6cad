package services

import (
	"zhiyi-cms/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type fieldCheck struct {
	field string
	value interface{}
	rules []validation.Rule
}

// firstViolation runs the checks in order and stops at the first failure.
func firstViolation(checks []fieldCheck) error {
	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return models.ErrorValidation{Field: check.field, Message: err.Error()}
		}
	}
	return nil
}
