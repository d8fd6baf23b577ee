package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/profiled/internal/profile"
)

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <profile>",
		Short: "Make a profile the active one",
		Long: `Select the active profile by UUID or unique name.

Example:
  profiled select Work
  profiled select 7cde3a5e-41a5-4f8b-8f2c-2d1c0a9b8e7f`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(rootOpts, args[0], cmd)
		},
	}
}

func runSelect(opts *RootOptions, ref string, cmd *cobra.Command) error {
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
	if err := e.reg.SetActiveProfile(p.ID); err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to select profile", err)
	}

	if opts.Format == "json" {
		return f.Success(toPayload(p))
	}
	fmt.Fprintf(f.Writer, "Selected %s (%s)\n", p.Name, p.ID)
	return nil
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "new <name>",
		Short:         "Create a profile",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(rootOpts, args[0], cmd)
		},
	}
}

func runNew(opts *RootOptions, name string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	f := newFormatter(cmd, opts)
	p, err := e.reg.Create(name)
	if err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to create profile", err)
	}

	if opts.Format == "json" {
		return f.Success(toPayload(p))
	}
	fmt.Fprintf(f.Writer, "Created %s (%s)\n", p.Name, p.ID)
	return nil
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var name, dnd, headsUp string

	cmd := &cobra.Command{
		Use:   "edit <profile>",
		Short: "Edit a profile definition",
		Long: `Edit a profile's name or action modes in place.

Action modes are "unchanged", "enable" or "disable".

Example:
  profiled edit Work --name Office --dnd enable`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, args[0], name, dnd, headsUp, cmd)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new profile name")
	cmd.Flags().StringVar(&dnd, "dnd", "", "do-not-disturb action mode")
	cmd.Flags().StringVar(&headsUp, "heads-up", "", "heads-up notification action mode")
	return cmd
}

func runEdit(opts *RootOptions, ref, name, dnd, headsUp string, cmd *cobra.Command) error {
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

	if name != "" {
		p.Name = name
	}
	if dnd != "" {
		mode := profile.ActionMode(dnd)
		if !mode.Valid() {
			f.Error(ErrCodeInvalidInput, "invalid dnd mode "+dnd, nil)
			return NewExitError(ExitCommandError, "invalid dnd mode "+dnd)
		}
		p.Dnd = mode
	}
	if headsUp != "" {
		mode := profile.ActionMode(headsUp)
		if !mode.Valid() {
			f.Error(ErrCodeInvalidInput, "invalid heads-up mode "+headsUp, nil)
			return NewExitError(ExitCommandError, "invalid heads-up mode "+headsUp)
		}
		p.HeadsUp = mode
	}

	if err := e.reg.Update(p); err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to update profile", err)
	}

	if opts.Format == "json" {
		return f.Success(toPayload(p))
	}
	fmt.Fprintf(f.Writer, "Updated %s (%s)\n", p.Name, p.ID)
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <profile>",
		Short:         "Delete a profile and its triggers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runDelete(opts *RootOptions, ref string, cmd *cobra.Command) error {
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
	if err := e.reg.Delete(p.ID); err != nil {
		if errors.Is(err, profile.ErrInvalidReference) {
			f.Error(ErrCodeUnknownRef, err.Error(), nil)
			return WrapExitError(ExitFailure, "unknown profile", err)
		}
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to delete profile", err)
	}

	if opts.Format == "json" {
		return f.Success(toPayload(p))
	}
	fmt.Fprintf(f.Writer, "Deleted %s (%s)\n", p.Name, p.ID)
	return nil
}

// NewEnableCommand creates the enable command.
func NewEnableCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "enable",
		Short:         "Turn the profile engine on",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetEnabled(rootOpts, true, cmd)
		},
	}
}

// NewDisableCommand creates the disable command.
func NewDisableCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Turn the profile engine off",
		Long: `Turn the profile engine off.

The active-profile selection is kept, so enable restores it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetEnabled(rootOpts, false, cmd)
		},
	}
}

func runSetEnabled(opts *RootOptions, enabled bool, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	f := newFormatter(cmd, opts)
	if err := e.reg.SetEnabled(enabled); err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write enabled state", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	if opts.Format == "json" {
		return f.Success(map[string]bool{"enabled": enabled})
	}
	fmt.Fprintf(f.Writer, "Profiles %s\n", state)
	return nil
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all profiles and restore the default",
		Long: `Delete every profile and every trigger, then recreate and select the
default profile. Irreversible; requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(rootOpts, yes, cmd)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func runReset(opts *RootOptions, yes bool, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	if !yes {
		f.Error(ErrCodeInvalidInput, "reset is irreversible, pass --yes to confirm", nil)
		return NewExitError(ExitCommandError, "reset not confirmed")
	}

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.ctrl.ResetAll(); err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to reset profiles", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]string{"reset": "done"})
	}
	fmt.Fprintln(f.Writer, "Profiles reset to default")
	return nil
}
