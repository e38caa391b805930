package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/smartserve/utils"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("display_name", func(fl validator.FieldLevel) bool {
			return IsDisplayName(fl.Field().String())
		})
	})
	return validate
}

// IsDisplayName reports whether s only contains letters, spaces, hyphens and
// apostrophes, with no separator at either end and never two separators in a row.
func IsDisplayName(s string) bool {
	if s == "" {
		return false
	}
	prevSep := false
	for i, r := range s {
		sep := r == ' ' || r == '-' || r == '\''
		switch {
		case sep:
			if i == 0 || prevSep {
				return false
			}
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		default:
			return false
		}
		prevSep = sep
	}
	return !prevSep
}

// validateStruct runs the validate tags of v and converts failures into a
// field keyed ValidationError.
func validateStruct(v interface{}) *utils.ValidationError {
	verr := &utils.ValidationError{}
	err := structValidator().Struct(v)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add(utils.NonFieldErrors, err.Error(), utils.CodeInvalid)
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe), fieldCode(fe))
	}
	return verr
}

func fieldCode(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return utils.CodeRequired
	case "max":
		return utils.CodeMaxLength
	case "min":
		if fe.Kind() == reflect.String {
			return utils.CodeMinLength
		}
		return utils.CodeMinValue
	default:
		return utils.CodeInvalid
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "display_name":
		return "Enter a valid value: only letters, spaces, hyphens and apostrophes are allowed."
	case "numeric", "len":
		return "The Employee ID must be a 6 digit number."
	case "url":
		return "Enter a valid URL."
	default:
		return "Enter a valid value."
	}
}
