// Package profile defines the profile model: a named bundle of device
// configuration actions identified by an immutable UUID.
package profile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidReference reports a profile reference that does not parse as a
// UUID or does not resolve to a known profile. Use errors.Is to test.
var ErrInvalidReference = errors.New("invalid profile reference")

// ActionMode is the tri-state applied to one action category when a
// profile activates: leave the device setting unchanged, force it on, or
// force it off.
type ActionMode string

const (
	ActionUnchanged ActionMode = "unchanged"
	ActionEnable    ActionMode = "enable"
	ActionDisable   ActionMode = "disable"
)

// Valid reports whether m is one of the three known modes.
func (m ActionMode) Valid() bool {
	switch m {
	case ActionUnchanged, ActionEnable, ActionDisable:
		return true
	}
	return false
}

// DefaultName is the display name of the canonical default profile.
const DefaultName = "Default"

// Profile is a named configuration bundle. ID is immutable once created.
//
// Dnd and HeadsUp are the two modeled action categories; the pattern
// generalizes to further categories by adding fields.
type Profile struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Dnd     ActionMode `json:"dnd"`
	HeadsUp ActionMode `json:"heads_up"`
}

// New creates a profile with a fresh UUID and all actions unchanged.
func New(name string) Profile {
	return Profile{
		ID:      uuid.New(),
		Name:    name,
		Dnd:     ActionUnchanged,
		HeadsUp: ActionUnchanged,
	}
}

// Default returns the canonical default profile reinstated by a reset.
func Default() Profile {
	return New(DefaultName)
}

// Normalize replaces unknown action modes with ActionUnchanged. Applied
// when profiles are rebuilt from the settings store, so a value written by
// a newer revision degrades to a no-op instead of an error.
func (p *Profile) Normalize() {
	if !p.Dnd.Valid() {
		p.Dnd = ActionUnchanged
	}
	if !p.HeadsUp.Valid() {
		p.HeadsUp = ActionUnchanged
	}
}

// ParseID parses a profile UUID string, wrapping failures in
// ErrInvalidReference.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	return id, nil
}
