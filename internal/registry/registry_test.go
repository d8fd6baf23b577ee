package registry

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiled/internal/profile"
	"github.com/roach88/profiled/internal/settings"
	"github.com/roach88/profiled/internal/testutil"
	"github.com/roach88/profiled/internal/trigger"
)

func newFixture(t *testing.T) (*Registry, *settings.Memory, *testutil.RecordingScheduler) {
	t.Helper()
	mem := settings.NewMemory(nil)
	sched := testutil.NewRecordingScheduler()
	times := trigger.NewTimeStore(mem, sched, trigger.Clock24, nil)
	apps := trigger.NewAppStore(mem, nil)
	return New(mem, nil, times, apps, nil), mem, sched
}

func TestProfiles_FirstRunIsEmpty(t *testing.T) {
	r, _, _ := newFixture(t)
	profiles, err := r.Profiles()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestProfiles_MalformedListIsEmpty(t *testing.T) {
	r, mem, _ := newFixture(t)
	require.NoError(t, mem.PutString(settings.KeyProfileList, "[broken", settings.ScopeSystem))

	profiles, err := r.Profiles()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestCreate_PreservesDefinitionOrder(t *testing.T) {
	r, _, _ := newFixture(t)

	a, err := r.Create("Work")
	require.NoError(t, err)
	b, err := r.Create("Home")
	require.NoError(t, err)
	c, err := r.Create("Night")
	require.NoError(t, err)

	profiles, err := r.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID},
		[]uuid.UUID{profiles[0].ID, profiles[1].ID, profiles[2].ID})
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	r, _, _ := newFixture(t)
	a, _ := r.Create("Work")
	b, _ := r.Create("Home")

	a.Name = "Office"
	a.Dnd = profile.ActionEnable
	require.NoError(t, r.Update(a))

	profiles, err := r.Profiles()
	require.NoError(t, err)
	assert.Equal(t, "Office", profiles[0].Name)
	assert.Equal(t, profile.ActionEnable, profiles[0].Dnd)
	assert.Equal(t, b.ID, profiles[1].ID)
}

func TestUpdate_UnknownProfile(t *testing.T) {
	r, _, _ := newFixture(t)
	err := r.Update(profile.New("ghost"))
	assert.ErrorIs(t, err, profile.ErrInvalidReference)
}

func TestActiveProfile_UnsetAndStale(t *testing.T) {
	r, mem, _ := newFixture(t)

	_, ok, err := r.ActiveProfile()
	require.NoError(t, err)
	assert.False(t, ok)

	// A selection pointing at a deleted profile resolves to empty.
	require.NoError(t, mem.PutString(settings.KeyActiveProfile, uuid.New().String(), settings.ScopeSystem))
	_, ok, err = r.ActiveProfile()
	require.NoError(t, err)
	assert.False(t, ok)

	// Garbage resolves to empty too, never an error.
	require.NoError(t, mem.PutString(settings.KeyActiveProfile, "junk", settings.ScopeSystem))
	_, ok, err = r.ActiveProfile()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetActiveProfile(t *testing.T) {
	r, _, _ := newFixture(t)
	p, _ := r.Create("Work")

	require.NoError(t, r.SetActiveProfile(p.ID))
	active, ok, err := r.ActiveProfile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, active.ID)

	err = r.SetActiveProfile(uuid.New())
	assert.ErrorIs(t, err, profile.ErrInvalidReference)
}

func TestEnabled_DefaultsOnAndKeepsSelection(t *testing.T) {
	r, _, _ := newFixture(t)
	p, _ := r.Create("Work")
	require.NoError(t, r.SetActiveProfile(p.ID))

	on, err := r.Enabled()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, r.SetEnabled(false))
	on, err = r.Enabled()
	require.NoError(t, err)
	assert.False(t, on)

	// Disabling gates enforcement but never clears the selection.
	active, ok, err := r.ActiveProfile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, active.ID)

	require.NoError(t, r.SetEnabled(true))
	on, err = r.Enabled()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestDelete_RemovesTriggersToo(t *testing.T) {
	r, mem, sched := newFixture(t)
	p, _ := r.Create("Work")
	other, _ := r.Create("Home")

	times := trigger.NewTimeStore(mem, sched, trigger.Clock24, nil)
	apps := trigger.NewAppStore(mem, nil)
	require.NoError(t, times.Upsert(p.ID, 0, 9, 30))
	require.NoError(t, times.Upsert(p.ID, 1, 18, 0))
	require.NoError(t, apps.Toggle(p.ID, "com.foo", true))
	require.NoError(t, apps.Toggle(other.ID, "com.bar", true))

	require.NoError(t, r.Delete(p.ID))

	profiles, err := r.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, other.ID, profiles[0].ID)

	// Time slots gone and alarms cancelled.
	left, err := times.Load(p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Empty(t, sched.Active())

	// App claim released; the other profile's membership survives.
	owned, claimed, err := apps.Load(other.ID)
	require.NoError(t, err)
	assert.True(t, owned["com.bar"])
	assert.Empty(t, claimed)
}

func TestDelete_UnknownProfile(t *testing.T) {
	r, _, _ := newFixture(t)
	err := r.Delete(uuid.New())
	assert.ErrorIs(t, err, profile.ErrInvalidReference)
}

func TestResetAll(t *testing.T) {
	r, mem, sched := newFixture(t)
	p1, _ := r.Create("Work")
	p2, _ := r.Create("Home")

	times := trigger.NewTimeStore(mem, sched, trigger.Clock24, nil)
	apps := trigger.NewAppStore(mem, nil)
	require.NoError(t, times.Upsert(p1.ID, 0, 9, 30))
	require.NoError(t, apps.Toggle(p2.ID, "com.foo", true))
	require.NoError(t, r.SetActiveProfile(p1.ID))

	require.NoError(t, r.ResetAll())

	profiles, err := r.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, profile.DefaultName, profiles[0].Name)

	active, ok, err := r.ActiveProfile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profiles[0].ID, active.ID)

	assert.Empty(t, sched.Active())
	raw, _, err := mem.GetString(settings.KeyAppTriggerList, settings.ScopeSystem)
	require.NoError(t, err)
	var doc map[string][]string
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Empty(t, doc)
}

func TestProfiles_NormalizesUnknownModes(t *testing.T) {
	r, mem, _ := newFixture(t)
	p := profile.New("Work")
	raw, err := json.Marshal([]profile.Profile{{ID: p.ID, Name: p.Name, Dnd: "weird", HeadsUp: profile.ActionEnable}})
	require.NoError(t, err)
	require.NoError(t, mem.PutString(settings.KeyProfileList, string(raw), settings.ScopeSystem))

	profiles, err := r.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, profile.ActionUnchanged, profiles[0].Dnd)
	assert.Equal(t, profile.ActionEnable, profiles[0].HeadsUp)
}
