package trigger

import (
	"errors"
	"fmt"
)

// Error represents a trigger mutation the store refused.
//
// Refusals include:
//   - Capacity exceeded: all time-trigger slots for a profile are taken
//   - Already claimed: an app identifier belongs to another profile
//
// Error includes structured fields so callers can report which profile
// and app identifier were involved.
type Error struct {
	// Code identifies the refusal category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Profile is the UUID string of the profile being edited.
	Profile string

	// App is the contested app identifier (for claim errors).
	App string
}

// ErrorCode categorizes trigger refusals.
type ErrorCode string

const (
	// ErrCodeCapacityExceeded indicates all time-trigger slots are taken.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"

	// ErrCodeAlreadyClaimed indicates the app identifier is owned by
	// another profile's trigger set.
	ErrCodeAlreadyClaimed ErrorCode = "ALREADY_CLAIMED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.App != "" {
		return fmt.Sprintf("%s: %s (profile=%s, app=%s)", e.Code, e.Message, e.Profile, e.App)
	}
	return fmt.Sprintf("%s: %s (profile=%s)", e.Code, e.Message, e.Profile)
}

// IsCapacityExceeded returns true if the error is a slot-capacity refusal.
// Uses errors.As to handle wrapped errors.
func IsCapacityExceeded(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeCapacityExceeded
	}
	return false
}

// IsAlreadyClaimed returns true if the error is an app-exclusivity refusal.
// Uses errors.As to handle wrapped errors.
func IsAlreadyClaimed(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeAlreadyClaimed
	}
	return false
}

func newCapacityError(profile string) *Error {
	return &Error{
		Code:    ErrCodeCapacityExceeded,
		Message: fmt.Sprintf("profile already has %d time triggers", MaxAlarms),
		Profile: profile,
	}
}

func newClaimedError(profile, app string) *Error {
	return &Error{
		Code:    ErrCodeAlreadyClaimed,
		Message: "app identifier is claimed by another profile",
		Profile: profile,
		App:     app,
	}
}
