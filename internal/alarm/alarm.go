// Package alarm abstracts the one-shot wall-clock alarm service used by
// time triggers.
//
// Scheduling is fire-and-forget: the engine only programs and cancels
// future alarms, it never observes firing directly. When no alarm service
// is available the calls degrade to logged no-ops; time triggers are
// best-effort.
package alarm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RequestKey identifies one scheduled alarm. Keys are deterministic per
// (profile, slot), so repeated scheduling for the same slot replaces the
// existing alarm instead of duplicating it.
type RequestKey string

// KeyFor derives the request key for a profile's time-trigger slot.
func KeyFor(profileID uuid.UUID, slot int) RequestKey {
	return RequestKey(fmt.Sprintf("%s_%d", profileID, slot))
}

// Scheduler programs and cancels one-shot wall-clock alarms.
//
// ScheduleExactAt replaces any alarm already scheduled under the same
// key. Cancel of an unknown key is a no-op. Neither call returns an
// error: unavailability of the underlying service is absorbed and logged.
type Scheduler interface {
	ScheduleExactAt(at time.Time, key RequestKey, payload string)
	Cancel(key RequestKey)
}

// Nop is a Scheduler for contexts with no long-lived process to carry
// timers (one-shot CLI invocations). It logs and drops every request.
type Nop struct {
	Log *slog.Logger
}

func (n Nop) logger() *slog.Logger {
	if n.Log != nil {
		return n.Log
	}
	return slog.Default()
}

// ScheduleExactAt logs the request and drops it.
func (n Nop) ScheduleExactAt(at time.Time, key RequestKey, payload string) {
	n.logger().Info("alarm service unavailable, schedule dropped",
		"key", string(key), "at", at)
}

// Cancel logs the request and drops it.
func (n Nop) Cancel(key RequestKey) {
	n.logger().Info("alarm service unavailable, cancel dropped",
		"key", string(key))
}
