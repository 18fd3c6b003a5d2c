package model

import (
	"fmt"
	"strings"
)

// FieldBase tags errors that belong to the whole record rather than a column.
const FieldBase = "base"

// Validation messages. They double as translation keys for the formatter.
const (
	MsgBlank               = "can't be blank"
	MsgNotIncluded         = "is not included in the list"
	MsgNotANumber          = "is not a number"
	MsgMustExist           = "must exist"
	MsgEndNotAfterStart    = "must be after start date"
	MsgConflictingPeriod   = "conflicts with another period"
	MsgInvalidForTimeFrame = "is invalid for this time frame"
)

// FieldError is a single violation attached to a column (or FieldBase).
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every violation found while validating a record.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// On returns the messages recorded for field.
func (e *ValidationError) On(field string) []string {
	var messages []string
	for _, fe := range e.Errors {
		if fe.Field == field {
			messages = append(messages, fe.Message)
		}
	}
	return messages
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errOrNil keeps callers from returning a typed nil inside an error.
func (e *ValidationError) errOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Invalid builds a ValidationError with a single violation.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// FormatError reports raw input that could not be normalized before validation.
type FormatError struct {
	Field  string
	Value  string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q as %s", e.Field, e.Value, e.Layout)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
