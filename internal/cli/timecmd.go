package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/profiled/internal/trigger"
)

// NewTimeCommand creates the time command group.
func NewTimeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Manage a profile's time triggers",
	}
	cmd.AddCommand(newTimeListCommand(rootOpts))
	cmd.AddCommand(newTimeSetCommand(rootOpts))
	cmd.AddCommand(newTimeDelCommand(rootOpts))
	return cmd
}

// timePayload is the JSON shape of one time trigger.
type timePayload struct {
	Slot int    `json:"slot"`
	Time string `json:"time"`
}

func newTimeListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <profile>",
		Short:         "List a profile's time triggers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeList(rootOpts, args[0], cmd)
		},
	}
}

func runTimeList(opts *RootOptions, ref string, cmd *cobra.Command) error {
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
	triggers, err := e.ctrl.TimeTriggers(p.ID)
	if err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read time triggers", err)
	}

	if opts.Format == "json" {
		out := make([]timePayload, 0, len(triggers))
		for _, tr := range triggers {
			out = append(out, timePayload{Slot: tr.Slot, Time: tr.Format(e.mode)})
		}
		return f.Success(out)
	}

	fmt.Fprintf(f.Writer, "Time triggers for %s (%d/%d)\n", p.Name, len(triggers), trigger.MaxAlarms)
	for _, tr := range triggers {
		fmt.Fprintf(f.Writer, "  %d  %s\n", tr.Slot, tr.Format(e.mode))
	}
	return nil
}

func newTimeSetCommand(rootOpts *RootOptions) *cobra.Command {
	var slot int

	cmd := &cobra.Command{
		Use:   "set <profile> <time>",
		Short: "Add or edit a time trigger",
		Long: `Add a time trigger in the first free slot, or edit a specific slot
with --slot. Times are "HH:MM" or "H:MM AM/PM".

Example:
  profiled time set Work 09:30
  profiled time set Work "2:05 PM" --slot 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeSet(rootOpts, args[0], args[1], slot, cmd)
		},
	}

	cmd.Flags().IntVar(&slot, "slot", -1, "slot index to overwrite (0-4)")
	return cmd
}

func runTimeSet(opts *RootOptions, ref, value string, slot int, cmd *cobra.Command) error {
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
	hour, minute, err := trigger.ParseTime(value)
	if err != nil {
		f.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid time", err)
	}

	if slot < 0 {
		tr, err := e.ctrl.AddTimeTrigger(p.ID, hour, minute)
		if err != nil {
			if trigger.IsCapacityExceeded(err) {
				f.Error(ErrCodeSlotsFull, err.Error(), nil)
				return WrapExitError(ExitFailure, "all trigger slots taken", err)
			}
			f.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to add time trigger", err)
		}
		slot = tr.Slot
	} else if err := e.ctrl.EditTimeTrigger(p.ID, slot, hour, minute); err != nil {
		f.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to set time trigger", err)
	}

	if opts.Format == "json" {
		return f.Success(timePayload{Slot: slot, Time: trigger.FormatTime(hour, minute, e.mode)})
	}
	fmt.Fprintf(f.Writer, "Trigger %d set to %s\n", slot, trigger.FormatTime(hour, minute, e.mode))
	return nil
}

func newTimeDelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "del <profile> <slot>",
		Short:         "Delete a time trigger slot",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeDel(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runTimeDel(opts *RootOptions, ref, slotArg string, cmd *cobra.Command) error {
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
	slot, err := strconv.Atoi(slotArg)
	if err != nil {
		f.Error(ErrCodeInvalidInput, "invalid slot "+slotArg, nil)
		return WrapExitError(ExitCommandError, "invalid slot", err)
	}
	if err := e.ctrl.DeleteTimeTrigger(p.ID, slot); err != nil {
		f.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to delete time trigger", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]int{"slot": slot})
	}
	fmt.Fprintf(f.Writer, "Trigger %d deleted\n", slot)
	return nil
}
