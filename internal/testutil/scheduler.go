// Package testutil provides deterministic test doubles for the profile
// engine's external collaborators.
package testutil

import (
	"sync"
	"time"

	"github.com/roach88/profiled/internal/alarm"
)

// ScheduledAlarm records one ScheduleExactAt call.
type ScheduledAlarm struct {
	Key     alarm.RequestKey
	At      time.Time
	Payload string
}

// RecordingScheduler implements alarm.Scheduler by recording every call.
//
// Active() reflects replace-on-reschedule semantics: scheduling an
// already-armed key overwrites it, cancelling removes it. The full call
// history stays available through Scheduled and Cancelled.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingScheduler struct {
	mu        sync.Mutex
	Scheduled []ScheduledAlarm
	Cancelled []alarm.RequestKey
	active    map[alarm.RequestKey]ScheduledAlarm
}

// NewRecordingScheduler creates an empty RecordingScheduler.
func NewRecordingScheduler() *RecordingScheduler {
	return &RecordingScheduler{active: make(map[alarm.RequestKey]ScheduledAlarm)}
}

// ScheduleExactAt records the call and marks the key armed.
func (r *RecordingScheduler) ScheduleExactAt(at time.Time, key alarm.RequestKey, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := ScheduledAlarm{Key: key, At: at, Payload: payload}
	r.Scheduled = append(r.Scheduled, a)
	r.active[key] = a
}

// Cancel records the call and disarms the key.
func (r *RecordingScheduler) Cancel(key alarm.RequestKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cancelled = append(r.Cancelled, key)
	delete(r.active, key)
}

// Active returns a copy of the currently armed alarms by key.
func (r *RecordingScheduler) Active() map[alarm.RequestKey]ScheduledAlarm {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[alarm.RequestKey]ScheduledAlarm, len(r.active))
	for k, v := range r.active {
		out[k] = v
	}
	return out
}

// ScheduleCount returns how many ScheduleExactAt calls were recorded.
func (r *RecordingScheduler) ScheduleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Scheduled)
}

// CancelCount returns how many Cancel calls were recorded.
func (r *RecordingScheduler) CancelCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Cancelled)
}
