// Package controller coordinates the profile-selection surface: it
// subscribes to settings-change and broadcast events, re-derives display
// state, and routes user actions into the registry and trigger stores.
package controller

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/profiled/internal/bus"
	"github.com/roach88/profiled/internal/profile"
	"github.com/roach88/profiled/internal/registry"
	"github.com/roach88/profiled/internal/settings"
	"github.com/roach88/profiled/internal/trigger"
)

// Row is the derived display state for one profile-selector row.
type Row struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Checked bool   `json:"checked"`
}

// Snapshot is the full derived state of the selection surface. It is
// recomputed wholesale from the stores on every event; consumers replace
// their previous copy rather than patching it.
type Snapshot struct {
	Enabled      bool  `json:"enabled"`
	Rows         []Row `json:"rows"`
	ResetEnabled bool  `json:"reset_enabled"`
}

// RenderFunc receives each recomputed Snapshot. Called on the bus
// dispatch goroutine for event-driven refreshes and on the caller's
// goroutine for explicit ones.
type RenderFunc func(Snapshot)

// Controller wires the registry and trigger stores to the notification
// bus and the rendering callback.
//
// Subscriptions are established by Resume and torn down by Pause; the
// pairing is mandatory. A leaked registration causes duplicate
// re-renders, so Resume while already resumed is a no-op.
type Controller struct {
	reg    *registry.Registry
	times  *trigger.TimeStore
	apps   *trigger.AppStore
	bus    *bus.Bus
	render RenderFunc
	log    *slog.Logger

	mu   sync.Mutex
	subs []*bus.Subscription
}

// New creates a Controller. render may be nil when the caller polls
// Refresh directly.
func New(reg *registry.Registry, times *trigger.TimeStore, apps *trigger.AppStore, b *bus.Bus, render RenderFunc, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		reg:    reg,
		times:  times,
		apps:   apps,
		bus:    b,
		render: render,
		log:    log,
	}
}

// topics the controller re-renders on. Every handler does a full
// recompute, so ordering and duplication of events are harmless.
func watchTopics() []string {
	return []string{
		bus.SettingTopic(string(settings.ScopeSystem), settings.KeyProfilesEnabled),
		bus.SettingTopic(string(settings.ScopeSystem), settings.KeyActiveProfile),
		bus.TopicProfileSelected,
		bus.TopicProfileUpdated,
	}
}

// Resume subscribes to change notifications and performs one immediate
// refresh, mirroring the resume-time render of the original surface.
func (c *Controller) Resume() {
	c.mu.Lock()
	if len(c.subs) > 0 {
		c.mu.Unlock()
		return
	}
	for _, topic := range watchTopics() {
		sub := c.bus.Subscribe(topic, func(bus.Event) { c.refresh() })
		if sub != nil {
			c.subs = append(c.subs, sub)
		}
	}
	c.mu.Unlock()

	c.refresh()
}

// Pause cancels every subscription established by Resume. Safe to call
// when already paused.
func (c *Controller) Pause() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// Refresh recomputes the snapshot from the stores and emits it.
func (c *Controller) Refresh() (Snapshot, error) {
	snap, err := c.snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	if c.render != nil {
		c.render(snap)
	}
	return snap, nil
}

func (c *Controller) refresh() {
	if _, err := c.Refresh(); err != nil {
		c.log.Warn("refresh failed", "error", err)
	}
}

// snapshot derives display state purely from current store state: when
// disabled, every row is disabled and unchecked; otherwise exactly the
// active profile's row is checked.
func (c *Controller) snapshot() (Snapshot, error) {
	enabled, err := c.reg.Enabled()
	if err != nil {
		return Snapshot{}, err
	}
	profiles, err := c.reg.Profiles()
	if err != nil {
		return Snapshot{}, err
	}

	var activeID uuid.UUID
	if enabled {
		if active, ok, err := c.reg.ActiveProfile(); err != nil {
			return Snapshot{}, err
		} else if ok {
			activeID = active.ID
		}
	}

	rows := make([]Row, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, Row{
			ID:      p.ID.String(),
			Name:    p.Name,
			Enabled: enabled,
			Checked: enabled && p.ID == activeID,
		})
	}
	return Snapshot{Enabled: enabled, Rows: rows, ResetEnabled: enabled}, nil
}

// SelectProfile parses the row key and makes that profile active.
// Re-rendering happens via the change-notification path, not here.
func (c *Controller) SelectProfile(key string) error {
	id, err := profile.ParseID(key)
	if err != nil {
		return err
	}
	return c.reg.SetActiveProfile(id)
}

// SetEnabled flips the master switch.
func (c *Controller) SetEnabled(enabled bool) error {
	return c.reg.SetEnabled(enabled)
}

// ResetAll wipes all profiles and triggers and reinstates the default.
// The caller is responsible for user confirmation.
func (c *Controller) ResetAll() error {
	return c.reg.ResetAll()
}

// TimeTriggers lists a profile's time triggers.
func (c *Controller) TimeTriggers(id uuid.UUID) ([]trigger.TimeTrigger, error) {
	return c.times.Load(id)
}

// AddTimeTrigger stores a new trigger in the first free slot and arms its
// alarm. Fails with a capacity error when all slots are taken.
func (c *Controller) AddTimeTrigger(id uuid.UUID, hour, minute int) (trigger.TimeTrigger, error) {
	return c.times.Add(id, hour, minute)
}

// EditTimeTrigger updates a slot in place, rescheduling the same alarm
// key. Re-picking the identical time is a no-op.
func (c *Controller) EditTimeTrigger(id uuid.UUID, slot, hour, minute int) error {
	existing, err := c.times.Load(id)
	if err != nil {
		return err
	}
	for _, tr := range existing {
		if tr.Slot == slot && tr.Hour == hour && tr.Minute == minute {
			return nil
		}
	}
	return c.times.Upsert(id, slot, hour, minute)
}

// DeleteTimeTrigger clears a slot and cancels its alarm; an already-empty
// slot is a no-op.
func (c *Controller) DeleteTimeTrigger(id uuid.UUID, slot int) error {
	return c.times.Delete(id, slot)
}

// AppMembership returns the app identifiers owned by the profile and
// those claimed by other profiles.
func (c *Controller) AppMembership(id uuid.UUID) (owned, claimedElsewhere map[string]bool, err error) {
	return c.apps.Load(id)
}

// ToggleApp adds or removes one app identifier from the profile's
// trigger set. Selecting an identifier claimed by another profile fails;
// the UI is expected to have disabled that path, and the store
// re-validates regardless.
func (c *Controller) ToggleApp(id uuid.UUID, appID string, selected bool) error {
	return c.apps.Toggle(id, appID, selected)
}
