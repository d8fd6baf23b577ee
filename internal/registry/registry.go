// Package registry owns the profile list and the single active-profile
// selection.
//
// The registry is the only writer of the profile-list and active-profile
// settings keys; every other component reads them through it. State is
// rebuilt from the settings store on each call rather than cached, so the
// registry can never diverge from the external source of truth.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/profiled/internal/bus"
	"github.com/roach88/profiled/internal/profile"
	"github.com/roach88/profiled/internal/settings"
	"github.com/roach88/profiled/internal/trigger"
)

// Registry mediates between the settings store and profile consumers.
type Registry struct {
	store settings.Store
	bus   *bus.Bus
	times *trigger.TimeStore
	apps  *trigger.AppStore
	log   *slog.Logger
}

// New creates a Registry. b may be nil to disable broadcast events; times
// and apps are required so that deleting a profile always deletes its
// triggers.
func New(store settings.Store, b *bus.Bus, times *trigger.TimeStore, apps *trigger.AppStore, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{store: store, bus: b, times: times, apps: apps, log: log}
}

func (r *Registry) publish(topic string) {
	if r.bus != nil {
		r.bus.Publish(topic)
	}
}

// Profiles returns all known profiles in definition order. An absent list
// is the first-run state and yields an empty slice; a malformed list is
// treated the same way, with a warning, so one corrupt write cannot brick
// the settings surface.
func (r *Registry) Profiles() ([]profile.Profile, error) {
	raw, ok, err := r.store.GetString(settings.KeyProfileList, settings.ScopeSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile list: %w", err)
	}
	if !ok || raw == "" {
		return []profile.Profile{}, nil
	}

	var profiles []profile.Profile
	if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
		r.log.Warn("malformed profile list, treating as empty", "error", err)
		return []profile.Profile{}, nil
	}
	for i := range profiles {
		profiles[i].Normalize()
	}
	return profiles, nil
}

// Get returns the profile with the given UUID, ok=false when unknown.
func (r *Registry) Get(id uuid.UUID) (profile.Profile, bool, error) {
	profiles, err := r.Profiles()
	if err != nil {
		return profile.Profile{}, false, err
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, true, nil
		}
	}
	return profile.Profile{}, false, nil
}

func (r *Registry) saveProfiles(profiles []profile.Profile) error {
	raw, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode profile list: %w", err)
	}
	if err := r.store.PutString(settings.KeyProfileList, string(raw), settings.ScopeSystem); err != nil {
		return fmt.Errorf("failed to write profile list: %w", err)
	}
	return nil
}

// Create appends a new profile with the given name and publishes a
// profile-updated event.
func (r *Registry) Create(name string) (profile.Profile, error) {
	profiles, err := r.Profiles()
	if err != nil {
		return profile.Profile{}, err
	}
	p := profile.New(name)
	if err := r.saveProfiles(append(profiles, p)); err != nil {
		return profile.Profile{}, err
	}
	r.log.Info("profile created", "profile", p.ID.String(), "name", name)
	r.publish(bus.TopicProfileUpdated)
	return p, nil
}

// Update replaces an existing profile definition in place. The profile's
// position in the list is preserved; an unknown UUID fails with
// profile.ErrInvalidReference.
func (r *Registry) Update(p profile.Profile) error {
	profiles, err := r.Profiles()
	if err != nil {
		return err
	}
	for i := range profiles {
		if profiles[i].ID == p.ID {
			profiles[i] = p
			if err := r.saveProfiles(profiles); err != nil {
				return err
			}
			r.publish(bus.TopicProfileUpdated)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", profile.ErrInvalidReference, p.ID)
}

// Delete removes a profile and all of its triggers: every time-trigger
// slot is cleared (cancelling the alarms) and its app-trigger document
// key is dropped. An unknown UUID fails with profile.ErrInvalidReference.
func (r *Registry) Delete(id uuid.UUID) error {
	profiles, err := r.Profiles()
	if err != nil {
		return err
	}
	idx := -1
	for i := range profiles {
		if profiles[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", profile.ErrInvalidReference, id)
	}

	if err := r.times.DeleteAll(id); err != nil {
		return err
	}
	if err := r.apps.RemoveProfile(id); err != nil {
		return err
	}
	if err := r.saveProfiles(append(profiles[:idx], profiles[idx+1:]...)); err != nil {
		return err
	}
	r.log.Info("profile deleted", "profile", id.String())
	r.publish(bus.TopicProfileUpdated)
	return nil
}

// ActiveProfile returns the profile the active-profile setting points at.
// An unset setting, an unparseable value, or a UUID that no longer
// resolves to a known profile all yield ok=false, never an error.
func (r *Registry) ActiveProfile() (profile.Profile, bool, error) {
	raw, ok, err := r.store.GetString(settings.KeyActiveProfile, settings.ScopeSystem)
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("failed to read active profile: %w", err)
	}
	if !ok || raw == "" {
		return profile.Profile{}, false, nil
	}
	id, err := profile.ParseID(raw)
	if err != nil {
		return profile.Profile{}, false, nil
	}
	return r.Get(id)
}

// SetActiveProfile writes the active-profile setting and publishes a
// profile-selected event. The UUID must resolve to a known profile;
// otherwise profile.ErrInvalidReference. Re-rendering is left to the
// change-notification path.
func (r *Registry) SetActiveProfile(id uuid.UUID) error {
	_, ok, err := r.Get(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", profile.ErrInvalidReference, id)
	}
	if err := r.store.PutString(settings.KeyActiveProfile, id.String(), settings.ScopeSystem); err != nil {
		return fmt.Errorf("failed to write active profile: %w", err)
	}
	r.log.Info("active profile selected", "profile", id.String())
	r.publish(bus.TopicProfileSelected)
	return nil
}

// Enabled reports whether profile triggers and active-profile enforcement
// are enabled system-wide. Defaults to true when the key is unset.
func (r *Registry) Enabled() (bool, error) {
	n, err := r.store.GetInt(settings.KeyProfilesEnabled, 1, settings.ScopeSystem)
	if err != nil {
		return false, fmt.Errorf("failed to read enabled state: %w", err)
	}
	return n != 0, nil
}

// SetEnabled writes the master enable switch. The active-profile
// selection is left untouched so that re-enabling restores it.
func (r *Registry) SetEnabled(enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	if err := r.store.PutInt(settings.KeyProfilesEnabled, v, settings.ScopeSystem); err != nil {
		return fmt.Errorf("failed to write enabled state: %w", err)
	}
	return nil
}

// ResetAll deletes every profile and all of their triggers, then
// reinstates the canonical default profile and selects it. Destructive
// and irreversible; callers must confirm with the user first.
func (r *Registry) ResetAll() error {
	profiles, err := r.Profiles()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := r.times.DeleteAll(p.ID); err != nil {
			return err
		}
		if err := r.apps.RemoveProfile(p.ID); err != nil {
			return err
		}
	}

	def := profile.Default()
	if err := r.saveProfiles([]profile.Profile{def}); err != nil {
		return err
	}
	r.log.Info("profiles reset", "default", def.ID.String())
	r.publish(bus.TopicProfileUpdated)
	return r.SetActiveProfile(def.ID)
}
