package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/profiled/internal/alarm"
	"github.com/roach88/profiled/internal/bus"
	"github.com/roach88/profiled/internal/controller"
	"github.com/roach88/profiled/internal/profile"
	"github.com/roach88/profiled/internal/registry"
	"github.com/roach88/profiled/internal/store"
	"github.com/roach88/profiled/internal/trigger"
)

// env is the wired-up engine a command operates on. The CLI process does
// not outlive its command, so alarms are recorded but not armed in
// process: firing is the responsibility of whatever hosts the engine
// long-term.
type env struct {
	bus   *bus.Bus
	store *store.Store
	reg   *registry.Registry
	times *trigger.TimeStore
	apps  *trigger.AppStore
	ctrl  *controller.Controller
	mode  trigger.ClockMode
}

// openEnv resolves the config, opens the database, and wires the engine.
func openEnv(opts *RootOptions) (*env, error) {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	b := bus.New()
	st, err := store.Open(cfg.DatabasePath(opts.Database), b)
	if err != nil {
		b.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	mode := cfg.ClockMode()
	times := trigger.NewTimeStore(st, alarm.Nop{Log: log}, mode, log)
	apps := trigger.NewAppStore(st, log)
	reg := registry.New(st, b, times, apps, log)
	ctrl := controller.New(reg, times, apps, b, nil, log)

	return &env{bus: b, store: st, reg: reg, times: times, apps: apps, ctrl: ctrl, mode: mode}, nil
}

func (e *env) Close() {
	e.bus.Close()
	e.store.Close()
}

// resolveProfile accepts either a profile UUID or a unique profile name.
func (e *env) resolveProfile(ref string) (profile.Profile, error) {
	if id, err := profile.ParseID(ref); err == nil {
		p, ok, err := e.reg.Get(id)
		if err != nil {
			return profile.Profile{}, WrapExitError(ExitCommandError, "failed to read profiles", err)
		}
		if !ok {
			return profile.Profile{}, NewExitError(ExitFailure, "unknown profile "+ref)
		}
		return p, nil
	}

	profiles, err := e.reg.Profiles()
	if err != nil {
		return profile.Profile{}, WrapExitError(ExitCommandError, "failed to read profiles", err)
	}
	var match profile.Profile
	found := 0
	for _, p := range profiles {
		if p.Name == ref {
			match = p
			found++
		}
	}
	switch found {
	case 0:
		return profile.Profile{}, NewExitError(ExitFailure, "unknown profile "+ref)
	case 1:
		return match, nil
	default:
		return profile.Profile{}, NewExitError(ExitFailure, "ambiguous profile name "+ref+", use the UUID")
	}
}

// newFormatter builds the OutputFormatter for a command invocation.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// profilePayload is the JSON shape commands report profiles in.
type profilePayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Dnd     string `json:"dnd"`
	HeadsUp string `json:"heads_up"`
}

func toPayload(p profile.Profile) profilePayload {
	return profilePayload{
		ID:      p.ID.String(),
		Name:    p.Name,
		Dnd:     string(p.Dnd),
		HeadsUp: string(p.HeadsUp),
	}
}
