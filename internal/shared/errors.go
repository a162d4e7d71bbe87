package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

const genericMessage = "Something went wrong. Please try again."

// ValidationError rejects user input before any backend call is made.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for a form field. An empty
// field marks a form-wide message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return "validation: " + e.Field + ": " + e.Message
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UserMessage returns the text shown next to the form.
func (e *ValidationError) UserMessage() string {
	return e.Message
}

type userFacing interface {
	UserMessage() string
}

// UserSafeMessage converts an error into text that may be shown to operators.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf userFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested record no longer exists."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	}
	return genericMessage
}

// FormErrors flattens err into the field map rendered by form templates.
func FormErrors(err error) map[string]string {
	errs := make(map[string]string)
	if err == nil {
		return errs
	}
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		errs[verr.Field] = verr.Message
		return errs
	}
	errs["general"] = UserSafeMessage(err)
	return errs
}
