// Package validator adapts ozzo-validation results to cpipeline error types
package validator

import (
	"errors"
	"net/http"
	"sort"

	"github.com/KOMKZ/cpipeline/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidationFailed is the generic coded validation failure
var ErrValidationFailed = errcode.Register(errcode.New(
	10, 1010, "common", "error.common.validation_failed", "validation failed", http.StatusBadRequest,
))

// Validatable is anything with a Validate method
type Validatable interface {
	Validate() error
}

// Violation is one failed rule on one field
type Violation struct {
	Field   string
	Message string
	Err     error
}

// Collect flattens validation.Errors into violations sorted by field name.
// Nested errors get dotted field names ("database.port"). ok is false when
// err is not an ozzo validation error.
func Collect(err error) (violations []Violation, ok bool) {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil, false
	}
	violations = collect("", errs)
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Field < violations[j].Field
	})
	return violations, true
}

func collect(prefix string, errs validation.Errors) []Violation {
	var out []Violation
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			out = append(out, collect(name, nested)...)
			continue
		}
		out = append(out, Violation{Field: name, Message: fieldErr.Error(), Err: fieldErr})
	}
	return out
}

// ValidateRequest runs Validate and converts ozzo errors into a coded error.
// Other errors pass through unchanged.
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}
	if violations, ok := Collect(err); ok {
		return ConvertViolations(violations)
	}
	return err
}

// ConvertViolations builds ErrValidationFailed with a field -> message map
func ConvertViolations(violations []Violation) error {
	fields := make(map[string]string, len(violations))
	for _, v := range violations {
		fields[v.Field] = v.Message
	}
	return ErrValidationFailed.WithData("fields", fields)
}
