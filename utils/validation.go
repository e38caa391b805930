package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Machine readable validation codes.
const (
	CodeInvalid   = "invalid"
	CodeUnique    = "unique"
	CodeRequired  = "required"
	CodeMaxLength = "max_length"
	CodeMinLength = "min_length"
	CodeMinValue  = "min_value"
	CodePassword  = "password"
)

// NonFieldErrors collects errors that are not attached to a single field.
const NonFieldErrors = "non_field_errors"

var (
	ErrIntegrity = errors.New("the data conflicts with an existing record")
	ErrProtected = errors.New("cannot delete because it is referenced by other records")
)

type FieldError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type FieldErrors map[string][]FieldError

// ValidationError is returned by every create and update operation that
// rejects its input.
type ValidationError struct {
	Fields FieldErrors
}

func NewValidationError(field, message, code string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message, code)
	return v
}

func (v *ValidationError) Add(field, message, code string) {
	if v.Fields == nil {
		v.Fields = FieldErrors{}
	}
	v.Fields[field] = append(v.Fields[field], FieldError{Message: message, Code: code})
}

// Merge copies every field error of other into v.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, errs := range other.Fields {
		for _, e := range errs {
			v.Add(field, e.Message, e.Code)
		}
	}
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// Has reports whether field carries an error with the given code.
func (v *ValidationError) Has(field, code string) bool {
	if v == nil {
		return false
	}
	for _, e := range v.Fields[field] {
		if e.Code == code {
			return true
		}
	}
	return false
}

// OrNil returns nil when no field errors were collected.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, e := range v.Fields[f] {
			parts = append(parts, fmt.Sprintf("%s: %s", f, e.Message))
		}
	}
	return strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// TranslateDBError maps storage level constraint failures onto ErrIntegrity.
func TranslateDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "Duplicate entry") {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return err
}
