package models

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors flattens a validation error into a field name to message map
// suitable for redisplaying a form. Errors that are not validation errors are
// reported under the empty key.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fieldName(fe.Field())] = message(fe)
	}
	return out
}

func fieldName(structField string) string {
	switch structField {
	case "CreatedAt":
		return "created_at"
	case "UpdatedAt":
		return "updated_at"
	}
	b := []byte(structField)
	if len(b) > 0 && b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "slug":
		return "may only contain lowercase letters, digits and single dashes"
	default:
		return "is invalid"
	}
}
