package alarm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/profiled/internal/bus"
)

// TimerScheduler arms in-process time.Timers and publishes a time-trigger
// event on the bus when one fires. Handlers re-fetch trigger state; the
// event carries no payload.
//
// Thread-safety: all methods are safe for concurrent use.
type TimerScheduler struct {
	mu     sync.Mutex
	bus    *bus.Bus
	log    *slog.Logger
	timers map[RequestKey]*time.Timer
}

// NewTimerScheduler creates a TimerScheduler publishing to b.
func NewTimerScheduler(b *bus.Bus, log *slog.Logger) *TimerScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &TimerScheduler{
		bus:    b,
		log:    log,
		timers: make(map[RequestKey]*time.Timer),
	}
}

// ScheduleExactAt arms a timer firing at the given wall-clock time,
// replacing any timer already armed under the same key.
func (s *TimerScheduler) ScheduleExactAt(at time.Time, key RequestKey, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		s.log.Info("time trigger fired", "key", string(key), "payload", payload)
		s.bus.Publish(bus.TopicTimeTrigger)
	})
	s.log.Info("alarm scheduled", "key", string(key), "at", at)
}

// Cancel stops and forgets the timer for key. Unknown keys are a no-op.
func (s *TimerScheduler) Cancel(key RequestKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
		s.log.Info("alarm canceled", "key", string(key))
	}
}

// Pending returns the number of armed timers.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all armed timers.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
