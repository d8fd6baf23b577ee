package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/profiled/internal/trigger"
)

// NewAppCommand creates the app command group.
func NewAppCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Manage a profile's app triggers",
	}
	cmd.AddCommand(newAppListCommand(rootOpts))
	cmd.AddCommand(newAppSetCommand(rootOpts))
	cmd.AddCommand(newAppUnsetCommand(rootOpts))
	return cmd
}

// appListPayload is the JSON shape of a profile's app-trigger view.
type appListPayload struct {
	Owned            []string `json:"owned"`
	ClaimedElsewhere []string `json:"claimed_elsewhere"`
}

func newAppListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <profile>",
		Short: "List a profile's app triggers",
		Long: `List the app identifiers that trigger the profile, and the
identifiers already claimed by other profiles.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppList(rootOpts, args[0], cmd)
		},
	}
}

func runAppList(opts *RootOptions, ref string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	f := newFormatter(cmd, opts)
	p, err := e.resolveProfile(ref)
	if err != nil {
		f.Error(ErrCodeUnknownRef, err.Error(), nil)
		return err
	}
	owned, claimed, err := e.ctrl.AppMembership(p.ID)
	if err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read app triggers", err)
	}

	if opts.Format == "json" {
		return f.Success(appListPayload{
			Owned:            sortedKeys(owned),
			ClaimedElsewhere: sortedKeys(claimed),
		})
	}

	fmt.Fprintf(f.Writer, "App triggers for %s\n", p.Name)
	for _, app := range sortedKeys(owned) {
		fmt.Fprintf(f.Writer, "  %s\n", app)
	}
	if len(claimed) > 0 {
		fmt.Fprintln(f.Writer, "Claimed by other profiles:")
		for _, app := range sortedKeys(claimed) {
			fmt.Fprintf(f.Writer, "  %s\n", app)
		}
	}
	return nil
}

func newAppSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <profile> <app-id>",
		Short: "Add an app trigger to a profile",
		Long: `Add an app identifier to the profile's trigger set. Fails when
another profile already claims the identifier.

Example:
  profiled app set Work com.example.mail`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppToggle(rootOpts, args[0], args[1], true, cmd)
		},
	}
}

func newAppUnsetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unset <profile> <app-id>",
		Short:         "Remove an app trigger from a profile",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppToggle(rootOpts, args[0], args[1], false, cmd)
		},
	}
}

func runAppToggle(opts *RootOptions, ref, appID string, selected bool, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	f := newFormatter(cmd, opts)
	p, err := e.resolveProfile(ref)
	if err != nil {
		f.Error(ErrCodeUnknownRef, err.Error(), nil)
		return err
	}
	if err := e.ctrl.ToggleApp(p.ID, appID, selected); err != nil {
		if trigger.IsAlreadyClaimed(err) {
			f.Error(ErrCodeAppClaimed, err.Error(), nil)
			return WrapExitError(ExitFailure, "app already claimed", err)
		}
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to update app triggers", err)
	}

	verb := "removed from"
	if selected {
		verb = "added to"
	}
	if opts.Format == "json" {
		return f.Success(map[string]string{"profile": p.ID.String(), "app": appID})
	}
	fmt.Fprintf(f.Writer, "%s %s %s\n", appID, verb, p.Name)
	return nil
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
