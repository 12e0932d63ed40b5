package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// missingFields returns the json names of fields that failed a required rule.
func missingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	var fields []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			fields = append(fields, lowerFirst(fe.Field()))
		}
	}
	return fields
}

// failedTag reports whether field failed validation with tag.
func failedTag(err error, field, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field && fe.Tag() == tag {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
