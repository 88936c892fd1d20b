package app

import (
	"errors"
	"fmt"
	"strings"
)

var ErrForbidden = fmt.Errorf("action not permitted for this role")
var ErrNotAssigned = fmt.Errorf("resolution is not assigned to your subcommittee")
var ErrRelayDisabled = fmt.Errorf("telegram relay is not configured")

// ValidationError lists every problem found in a form. It is returned before any backend call.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func invalid(messages ...string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

// ValidationMessages unwraps err into its form messages, or nil when err is not a validation failure.
func ValidationMessages(err error) []string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Messages
	}
	return nil
}
