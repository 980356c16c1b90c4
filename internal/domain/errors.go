package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrCheckInNotFound is returned when a check-in cannot be located.
	ErrCheckInNotFound = errors.New("check-in not found")
	// ErrDuplicateCheckIn indicates a member already checked in to the activity.
	ErrDuplicateCheckIn = errors.New("check-in already recorded for this member and activity")
	// ErrCheckInClosed indicates the activity does not accept check-ins in its current state.
	ErrCheckInClosed = errors.New("activity is not open for check-in")
	// ErrAlreadyDecided indicates a review was attempted on a non-pending check-in.
	ErrAlreadyDecided = errors.New("check-in has already been decided")
	// ErrInvalidStatusTransition indicates a forbidden activity status change.
	ErrInvalidStatusTransition = errors.New("invalid activity status transition")
	// ErrActivityHasCheckIns indicates deletion was refused because check-ins reference the activity.
	ErrActivityHasCheckIns = errors.New("activity has recorded check-ins")
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
