package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrNameRequired      = errors.New("company name is required")
	ErrNoCompanySelected = errors.New("select a company first")
	ErrInvalidAmount     = errors.New("amount must be a non-negative number")
	ErrScoreOutOfRange   = fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)
	ErrNoScores          = errors.New("score at least one pillar")

	// ErrUnknownCompany is returned when a selection names an id that is not in
	// the loaded list.
	ErrUnknownCompany = errors.New("unknown company")
	// ErrWrongStep is returned by operations that are not available in the
	// current step or overlay state. It is not a validation error.
	ErrWrongStep = errors.New("not available in the current step")
)

// ValidationError is a recoverable input problem that blocks one transition.
// Reason is always one of the sentinel errors above, possibly wrapped.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func invalid(field string, reason error) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
