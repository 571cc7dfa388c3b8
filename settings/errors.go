package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KOMKZ/cpipeline/errcode"
)

const moduleCode = 11

// Violation kinds. Match with errors.Is against a *FieldError or *LoadError.
var (
	ErrMissingRequiredField = errcode.Register(errcode.New(moduleCode, 1, "settings",
		"error.settings.missing_required_field", "missing required field"))
	ErrTypeCoercion = errcode.Register(errcode.New(moduleCode, 2, "settings",
		"error.settings.type_coercion", "invalid value"))
	ErrEnumConstraint = errcode.Register(errcode.New(moduleCode, 3, "settings",
		"error.settings.enum_constraint", "value not allowed"))
	ErrURIDerivation = errcode.Register(errcode.New(moduleCode, 4, "settings",
		"error.settings.uri_derivation", "cannot build database uri"))
)

const redactedValue = "**********"

// FieldError is one violation on one setting
type FieldError struct {
	Field    string // setting name, e.g. "DEFAULT_DATABASE_PORT"
	Raw      string // raw value as supplied; masked for secrets
	Expected string // expected type, e.g. "integer"
	Err      error  // wraps one of the Err* kinds
}

func (e *FieldError) Error() string {
	var b strings.Builder
	b.WriteString(e.Field)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if errors.Is(e.Err, ErrMissingRequiredField) {
		return b.String()
	}
	var details []string
	if e.Raw != "" {
		details = append(details, fmt.Sprintf("value %q", e.Raw))
	}
	if e.Expected != "" {
		details = append(details, "expected "+e.Expected)
	}
	if len(details) > 0 {
		b.WriteString(" (" + strings.Join(details, ", ") + ")")
	}
	return b.String()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Kind returns the violation kind sentinel
func (e *FieldError) Kind() *errcode.LayeredError {
	for _, kind := range []*errcode.LayeredError{
		ErrMissingRequiredField, ErrTypeCoercion, ErrEnumConstraint, ErrURIDerivation,
	} {
		if errors.Is(e.Err, kind) {
			return kind
		}
	}
	return nil
}

// LoadError aggregates every violation found while building Settings
type LoadError struct {
	Violations []*FieldError
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if len(e.Violations) == 1 {
		b.WriteString("settings: 1 violation")
	} else {
		fmt.Fprintf(&b, "settings: %d violations", len(e.Violations))
	}
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}

// Fields lists the violated setting names in report order
func (e *LoadError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// Field returns the violation for name, if any
func (e *LoadError) Field(name string) (*FieldError, bool) {
	for _, v := range e.Violations {
		if v.Field == name {
			return v, true
		}
	}
	return nil, false
}

// ListDecodeError is returned when a list setting is not a JSON array of
// strings. It is always wrapped in ErrTypeCoercion.
type ListDecodeError struct {
	Offset int64 // byte offset of a syntax error, 0 when unknown
	Err    error
}

func (e *ListDecodeError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("decode JSON list at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("decode JSON list: %v", e.Err)
}

func (e *ListDecodeError) Unwrap() error {
	return e.Err
}
