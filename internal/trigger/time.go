package trigger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/profiled/internal/alarm"
	"github.com/roach88/profiled/internal/settings"
)

// MaxAlarms is the bounded number of time-trigger slots per profile.
const MaxAlarms = 5

// PrefsNamespace is the local key/value namespace holding time-trigger
// slots.
const PrefsNamespace = "profile_prefs"

const timeKeyPrefix = "selected_time_"

// TimeKey returns the pref key for one (profile, slot) pair.
func TimeKey(profileID uuid.UUID, slot int) string {
	return fmt.Sprintf("%s%s_%d", timeKeyPrefix, profileID, slot)
}

// TimeTrigger is one stored wall-clock trigger belonging to a profile.
type TimeTrigger struct {
	Slot   int
	Hour   int
	Minute int
}

// Format renders the trigger's time of day in the given clock mode.
func (t TimeTrigger) Format(mode ClockMode) string {
	return FormatTime(t.Hour, t.Minute, mode)
}

// TimeStore owns persistence of time triggers and keeps the alarm
// scheduler in step with them.
//
// Per (profile, slot) the lifecycle is empty → scheduled → rescheduled →
// empty. The store never queries the alarm service for status: its own
// record is the source of truth, and firing happens entirely outside this
// process.
type TimeStore struct {
	prefs settings.Prefs
	sched alarm.Scheduler
	mode  ClockMode
	log   *slog.Logger
	now   func() time.Time
}

// TimeStoreOption configures a TimeStore.
type TimeStoreOption func(*TimeStore)

// WithNow overrides the wall-clock source used to compute the next
// occurrence of a trigger time. Used by tests.
func WithNow(now func() time.Time) TimeStoreOption {
	return func(s *TimeStore) {
		s.now = now
	}
}

// NewTimeStore creates a TimeStore writing slots through prefs and
// programming alarms through sched. A nil sched degrades scheduling to a
// logged no-op.
func NewTimeStore(prefs settings.Prefs, sched alarm.Scheduler, mode ClockMode, log *slog.Logger, opts ...TimeStoreOption) *TimeStore {
	if !mode.Valid() {
		mode = Clock24
	}
	if log == nil {
		log = slog.Default()
	}
	s := &TimeStore{
		prefs: prefs,
		sched: sched,
		mode:  mode,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the clock mode new values are written in.
func (s *TimeStore) Mode() ClockMode {
	return s.mode
}

// Load returns the profile's triggers ordered by slot index. Missing
// slots are absent from the result; a stored value that no longer parses
// is skipped with a warning rather than failing the load.
func (s *TimeStore) Load(profileID uuid.UUID) ([]TimeTrigger, error) {
	out := make([]TimeTrigger, 0, MaxAlarms)
	for slot := 0; slot < MaxAlarms; slot++ {
		raw, ok, err := s.prefs.Get(PrefsNamespace, TimeKey(profileID, slot))
		if err != nil {
			return nil, fmt.Errorf("failed to read time trigger slot %d: %w", slot, err)
		}
		if !ok {
			continue
		}
		hour, minute, err := ParseTime(raw)
		if err != nil {
			s.log.Warn("skipping unparseable time trigger",
				"profile", profileID.String(), "slot", slot, "value", raw)
			continue
		}
		out = append(out, TimeTrigger{Slot: slot, Hour: hour, Minute: minute})
	}
	return out, nil
}

// NextFreeSlot returns the lowest empty slot index, or a capacity error
// when all MaxAlarms slots are taken.
func (s *TimeStore) NextFreeSlot(profileID uuid.UUID) (int, error) {
	for slot := 0; slot < MaxAlarms; slot++ {
		_, ok, err := s.prefs.Get(PrefsNamespace, TimeKey(profileID, slot))
		if err != nil {
			return 0, fmt.Errorf("failed to scan time trigger slots: %w", err)
		}
		if !ok {
			return slot, nil
		}
	}
	return 0, newCapacityError(profileID.String())
}

// Add allocates the first free slot and stores a new trigger there,
// scheduling its alarm. Fails with a capacity error when the profile
// already holds MaxAlarms triggers.
func (s *TimeStore) Add(profileID uuid.UUID, hour, minute int) (TimeTrigger, error) {
	slot, err := s.NextFreeSlot(profileID)
	if err != nil {
		return TimeTrigger{}, err
	}
	if err := s.Upsert(profileID, slot, hour, minute); err != nil {
		return TimeTrigger{}, err
	}
	return TimeTrigger{Slot: slot, Hour: hour, Minute: minute}, nil
}

// Upsert writes the trigger time for a slot and (re)schedules its alarm.
// The alarm request key is derived from (profile, slot), so editing a slot
// replaces the existing alarm instead of duplicating it.
func (s *TimeStore) Upsert(profileID uuid.UUID, slot, hour, minute int) error {
	if slot < 0 || slot >= MaxAlarms {
		return fmt.Errorf("slot %d out of range [0,%d)", slot, MaxAlarms)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("time %02d:%02d out of range", hour, minute)
	}

	value := FormatTime(hour, minute, s.mode)
	if err := s.prefs.Put(PrefsNamespace, TimeKey(profileID, slot), value); err != nil {
		return fmt.Errorf("failed to store time trigger: %w", err)
	}

	at := nextOccurrence(s.now(), hour, minute)
	s.schedule(at, profileID, slot)
	return nil
}

// Delete removes the slot's value and cancels its alarm. Deleting an
// already-empty slot is a no-op, not an error.
func (s *TimeStore) Delete(profileID uuid.UUID, slot int) error {
	if slot < 0 || slot >= MaxAlarms {
		return fmt.Errorf("slot %d out of range [0,%d)", slot, MaxAlarms)
	}
	if err := s.prefs.DeletePref(PrefsNamespace, TimeKey(profileID, slot)); err != nil {
		return fmt.Errorf("failed to delete time trigger: %w", err)
	}
	s.cancel(profileID, slot)
	return nil
}

// DeleteAll removes every slot for the profile, cancelling the alarms.
// Invoked when the profile itself is deleted or reset.
func (s *TimeStore) DeleteAll(profileID uuid.UUID) error {
	for slot := 0; slot < MaxAlarms; slot++ {
		if err := s.Delete(profileID, slot); err != nil {
			return err
		}
	}
	return nil
}

func (s *TimeStore) schedule(at time.Time, profileID uuid.UUID, slot int) {
	if s.sched == nil {
		s.log.Info("no alarm scheduler, trigger not armed",
			"profile", profileID.String(), "slot", slot)
		return
	}
	s.sched.ScheduleExactAt(at, alarm.KeyFor(profileID, slot), profileID.String())
}

func (s *TimeStore) cancel(profileID uuid.UUID, slot int) {
	if s.sched == nil {
		return
	}
	s.sched.Cancel(alarm.KeyFor(profileID, slot))
}

// nextOccurrence returns the next wall-clock instant the time of day
// comes around: today if still ahead of now, otherwise tomorrow.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
