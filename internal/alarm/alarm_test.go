package alarm

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/profiled/internal/bus"
)

func TestKeyFor_Deterministic(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, KeyFor(id, 0), KeyFor(id, 0))
	assert.NotEqual(t, KeyFor(id, 0), KeyFor(id, 1))
	assert.NotEqual(t, KeyFor(id, 0), KeyFor(uuid.New(), 0))
	assert.Equal(t, RequestKey("11111111-2222-3333-4444-555555555555_3"), KeyFor(id, 3))
}

func TestTimerScheduler_ReplaceSameKey(t *testing.T) {
	b := bus.New()
	defer b.Close()
	s := NewTimerScheduler(b, nil)
	defer s.Stop()

	key := KeyFor(uuid.New(), 0)
	far := time.Now().Add(time.Hour)

	s.ScheduleExactAt(far, key, "p")
	s.ScheduleExactAt(far.Add(time.Minute), key, "p")
	assert.Equal(t, 1, s.Pending())

	s.ScheduleExactAt(far, KeyFor(uuid.New(), 0), "q")
	assert.Equal(t, 2, s.Pending())
}

func TestTimerScheduler_CancelUnknownKeyIsNoop(t *testing.T) {
	b := bus.New()
	defer b.Close()
	s := NewTimerScheduler(b, nil)
	defer s.Stop()

	s.Cancel(RequestKey("nope"))
	assert.Equal(t, 0, s.Pending())
}

func TestTimerScheduler_FirePublishesTrigger(t *testing.T) {
	b := bus.New()
	defer b.Close()

	var fired atomic.Int32
	b.Subscribe(bus.TopicTimeTrigger, func(bus.Event) { fired.Add(1) })

	s := NewTimerScheduler(b, nil)
	defer s.Stop()

	// A time already in the past fires immediately.
	s.ScheduleExactAt(time.Now().Add(-time.Second), KeyFor(uuid.New(), 0), "p")

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, s.Pending())
}

func TestTimerScheduler_StopCancelsAll(t *testing.T) {
	b := bus.New()
	defer b.Close()
	s := NewTimerScheduler(b, nil)

	far := time.Now().Add(time.Hour)
	s.ScheduleExactAt(far, KeyFor(uuid.New(), 0), "")
	s.ScheduleExactAt(far, KeyFor(uuid.New(), 1), "")

	s.Stop()
	assert.Equal(t, 0, s.Pending())
}
