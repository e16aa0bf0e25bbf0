package schema

import (
	"errors"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
)

// ValidationError represents a single input validation failure.
type ValidationError struct {
	Key    string // Input name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("input %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("input %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Is makes every validation failure match domain.ErrInvalidInput.
func (e *AggregateError) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
