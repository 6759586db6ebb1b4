package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required":       "{field} is required",
		"gt":             "{field} must be greater than {param}",
		"gte":            "{field} must be greater than or equal to {param}",
		"lte":            "{field} must be less than or equal to {param}",
		"oneof":          "{field} must be one of {param}",
		"max":            "{field} must be less than or equal to {param}",
		"min":            "{field} must be greater than or equal to {param}",
		"email":          "{field} must be a valid email address",
		"len":            "{field} must be {param} characters long",
		"iso4217":        "{field} must be an ISO 4217 currency code",
		"calendardate":   "{field} must be a date in YYYY-MM-DD format",
		"positiveamount": "{field} must be a positive amount",
		"dive":           "{field} is invalid",
		"excluded_with":  "{field} must not be sent together with {param}",
	}
)

func message(err error) string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		template := messages[valErr.Tag()]
		if template == "" {
			continue
		}

		template = strings.ReplaceAll(template, "{field}", valErr.Field())

		return strings.ReplaceAll(template, "{param}", valErr.Param())
	}

	return valErrors.Error()
}
