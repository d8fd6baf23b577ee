package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles and the active selection",
		Long: `List all profiles with their UUIDs.

The active profile is marked with an asterisk. When the master switch is
off no profile is marked and the header says so.

Example:
  profiled list --db ./profiled.db
  profiled list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	f := newFormatter(cmd, opts)
	snap, err := e.ctrl.Refresh()
	if err != nil {
		f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read profiles", err)
	}

	if opts.Format == "json" {
		return f.Success(snap)
	}

	state := "enabled"
	if !snap.Enabled {
		state = "disabled"
	}
	fmt.Fprintf(f.Writer, "Profiles (%s)\n", state)
	for _, row := range snap.Rows {
		marker := " "
		if row.Checked {
			marker = "*"
		}
		fmt.Fprintf(f.Writer, "%s %s  %s\n", marker, row.ID, row.Name)
	}
	return nil
}
