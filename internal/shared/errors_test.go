package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type upstreamErr struct{ msg string }

func (e upstreamErr) Error() string       { return "upstream: " + e.msg }
func (e upstreamErr) UserMessage() string { return e.msg }

func TestUserSafeMessage(t *testing.T) {
	assert.Equal(t, "", UserSafeMessage(nil))
	assert.Equal(t, "Quantity must be positive", UserSafeMessage(NewValidationError("quantity", "Quantity must be positive")))
	assert.Equal(t, "Not enough stock to transfer", UserSafeMessage(fmt.Errorf("transfer: %w", upstreamErr{msg: "Not enough stock to transfer"})))
	assert.Equal(t, "The request timed out. Please try again.", UserSafeMessage(fmt.Errorf("x: %w", context.DeadlineExceeded)))
	assert.Equal(t, genericMessage, UserSafeMessage(errors.New("dial tcp: refused")))
}

func TestFormErrors(t *testing.T) {
	errs := FormErrors(NewValidationError("qty", "bad qty"))
	assert.Equal(t, map[string]string{"qty": "bad qty"}, errs)

	errs = FormErrors(NewValidationError("", "form wide"))
	assert.Equal(t, map[string]string{"general": "form wide"}, errs)

	assert.True(t, errors.Is(NewValidationError("a", "b"), ErrValidation))
}
