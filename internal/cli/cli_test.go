package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiled/internal/profile"
	"github.com/roach88/profiled/internal/settings"
	"github.com/roach88/profiled/internal/store"
)

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "profiled.db")
}

// seedProfiles writes a profile list with fixed UUIDs straight into the
// database so output is deterministic.
func seedProfiles(t *testing.T, dbPath string, profiles []profile.Profile, activeID string) {
	t.Helper()
	st, err := store.Open(dbPath, nil)
	require.NoError(t, err)
	defer st.Close()

	raw, err := json.Marshal(profiles)
	require.NoError(t, err)
	require.NoError(t, st.PutString(settings.KeyProfileList, string(raw), settings.ScopeSystem))
	if activeID != "" {
		require.NoError(t, st.PutString(settings.KeyActiveProfile, activeID, settings.ScopeSystem))
	}
}

func mustID(t *testing.T, s string) profile.Profile {
	t.Helper()
	id, err := profile.ParseID(s)
	require.NoError(t, err)
	return profile.Profile{ID: id, Dnd: profile.ActionUnchanged, HeadsUp: profile.ActionUnchanged}
}

func seedTwoProfiles(t *testing.T, dbPath string) {
	t.Helper()
	def := mustID(t, "11111111-1111-1111-1111-111111111111")
	def.Name = "Default"
	work := mustID(t, "22222222-2222-2222-2222-222222222222")
	work.Name = "Work"
	seedProfiles(t, dbPath, []profile.Profile{def, work}, def.ID.String())
}

func TestListGolden(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)

	buf := &bytes.Buffer{}
	opts := &RootOptions{Format: "text", Database: dbPath}
	cmd := NewListCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "list_profiles", buf.Bytes())
}

func TestListJSON(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)

	buf := &bytes.Buffer{}
	opts := &RootOptions{Format: "json", Database: dbPath}
	cmd := NewListCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestSelectByName(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)

	buf := &bytes.Buffer{}
	opts := &RootOptions{Format: "text", Database: dbPath}
	cmd := NewSelectCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"Work"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Selected Work")

	buf.Reset()
	list := NewListCommand(opts)
	list.SetOut(buf)
	list.SetArgs([]string{})
	require.NoError(t, list.Execute())
	assert.Contains(t, buf.String(), "* 22222222-2222-2222-2222-222222222222  Work")
}

func TestSelectUnknownProfile(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)

	buf := &bytes.Buffer{}
	opts := &RootOptions{Format: "text", Database: dbPath}
	cmd := NewSelectCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"Vacation"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E002")
}

func TestNewAndDelete(t *testing.T) {
	dbPath := tempDB(t)

	buf := &bytes.Buffer{}
	opts := &RootOptions{Format: "text", Database: dbPath}
	cmd := NewNewCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"Night"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Created Night")

	buf.Reset()
	del := NewDeleteCommand(opts)
	del.SetOut(buf)
	del.SetArgs([]string{"Night"})
	require.NoError(t, del.Execute())
	assert.Contains(t, buf.String(), "Deleted Night")
}

func TestTimeSetListDel(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	buf := &bytes.Buffer{}
	set := newTimeSetCommand(opts)
	set.SetOut(buf)
	set.SetErr(buf)
	set.SetArgs([]string{"Work", "09:30"})
	require.NoError(t, set.Execute())
	assert.Contains(t, buf.String(), "Trigger 0 set to 09:30")

	buf.Reset()
	list := newTimeListCommand(opts)
	list.SetOut(buf)
	list.SetArgs([]string{"Work"})
	require.NoError(t, list.Execute())
	assert.Contains(t, buf.String(), "Time triggers for Work (1/5)")
	assert.Contains(t, buf.String(), "0  09:30")

	buf.Reset()
	del := newTimeDelCommand(opts)
	del.SetOut(buf)
	del.SetArgs([]string{"Work", "0"})
	require.NoError(t, del.Execute())
	assert.Contains(t, buf.String(), "Trigger 0 deleted")
}

func TestTimeSetCapacity(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	for i := 0; i < 5; i++ {
		set := newTimeSetCommand(opts)
		set.SetOut(&bytes.Buffer{})
		set.SetErr(&bytes.Buffer{})
		set.SetArgs([]string{"Work", "09:30"})
		require.NoError(t, set.Execute())
	}

	buf := &bytes.Buffer{}
	set := newTimeSetCommand(opts)
	set.SetOut(buf)
	set.SetErr(buf)
	set.SetArgs([]string{"Work", "10:00"})

	err := set.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E003")
}

func TestTimeSetInvalidTime(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	buf := &bytes.Buffer{}
	set := newTimeSetCommand(opts)
	set.SetOut(buf)
	set.SetErr(buf)
	set.SetArgs([]string{"Work", "13:00 PM"})

	err := set.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E005")
}

func TestAppSetConflict(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	buf := &bytes.Buffer{}
	set := newAppSetCommand(opts)
	set.SetOut(buf)
	set.SetArgs([]string{"Default", "com.example.mail"})
	require.NoError(t, set.Execute())

	buf.Reset()
	set = newAppSetCommand(opts)
	set.SetOut(buf)
	set.SetArgs([]string{"Work", "com.example.mail"})

	err := set.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E004")

	// The Work profile sees the identifier as claimed elsewhere.
	buf.Reset()
	list := newAppListCommand(opts)
	list.SetOut(buf)
	list.SetArgs([]string{"Work"})
	require.NoError(t, list.Execute())
	assert.Contains(t, buf.String(), "Claimed by other profiles:")
	assert.Contains(t, buf.String(), "com.example.mail")
}

func TestResetRequiresConfirmation(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	buf := &bytes.Buffer{}
	cmd := NewResetCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "--yes")
}

func TestResetConfirmed(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	buf := &bytes.Buffer{}
	cmd := NewResetCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--yes"})
	require.NoError(t, cmd.Execute())

	buf.Reset()
	list := NewListCommand(opts)
	list.SetOut(buf)
	list.SetArgs([]string{})
	require.NoError(t, list.Execute())
	assert.Contains(t, buf.String(), "Default")
	assert.NotContains(t, buf.String(), "Work")
}

func TestDisableShowsInList(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	cmd := NewDisableCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	buf := &bytes.Buffer{}
	list := NewListCommand(opts)
	list.SetOut(buf)
	list.SetArgs([]string{})
	require.NoError(t, list.Execute())
	assert.Contains(t, buf.String(), "Profiles (disabled)")
	assert.NotContains(t, buf.String(), "*")
}

func TestConfigClockMode(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "profiled.db")
	seedTwoProfiles(t, dbPath)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("clock: 12h\n"), 0o644))

	opts := &RootOptions{Format: "text", Database: dbPath, Config: cfgPath}

	buf := &bytes.Buffer{}
	set := newTimeSetCommand(opts)
	set.SetOut(buf)
	set.SetErr(buf)
	set.SetArgs([]string{"Work", "14:05"})
	require.NoError(t, set.Execute())
	assert.Contains(t, buf.String(), "Trigger 0 set to 2:05 PM")
}

func TestConfigInvalidClock(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("clock: metric\n"), 0o644))

	_, err := LoadConfig(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid clock")
}

func TestConfigDatabaseFallback(t *testing.T) {
	cfg := Config{Database: "/data/profiled.db"}
	assert.Equal(t, "/override.db", cfg.DatabasePath("/override.db"))
	assert.Equal(t, "/data/profiled.db", cfg.DatabasePath(""))
	assert.Equal(t, DefaultDatabase, Config{}.DatabasePath(""))
}

func TestEditProfile(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "json", Database: dbPath}

	buf := &bytes.Buffer{}
	cmd := NewEditCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"Work", "--name", "Office", "--dnd", "enable"})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Office", data["name"])
	assert.Equal(t, "enable", data["dnd"])
}

func TestEditInvalidMode(t *testing.T) {
	dbPath := tempDB(t)
	seedTwoProfiles(t, dbPath)
	opts := &RootOptions{Format: "text", Database: dbPath}

	buf := &bytes.Buffer{}
	cmd := NewEditCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"Work", "--dnd", "loud"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E005")
}

func TestRootRejectsBadFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
