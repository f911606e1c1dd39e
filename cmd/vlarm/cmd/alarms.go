package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/vlarm/internal/service/client"
)

var (
	editTime    string
	editMessage string
	editRepeat  bool
	editEnabled bool

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show alarms grouped by status.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.List(ctx, clientOptions(), cmd.OutOrStdout())
		},
	}

	editCmd = &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an alarm's time, message, repeat or enabled flag.",
		Long: `Changes only the fields whose flags are given.

Time accepts RFC 3339 or a clock time (07:30, 7:30 PM), placed at its next occurrence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			edit := client.EditOptions{Time: editTime}

			flags := cmd.Flags()
			if flags.Changed("message") {
				edit.Message = &editMessage
			}

			if flags.Changed("repeat") {
				edit.Repeat = &editRepeat
			}

			if flags.Changed("enabled") {
				edit.Enabled = &editEnabled
			}

			return client.Edit(ctx, clientOptions(), args[0], edit, cmd.OutOrStdout())
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Delete(ctx, clientOptions(), args[0], cmd.OutOrStdout())
		},
	}

	snoozeCmd = &cobra.Command{
		Use:   "snooze <id>",
		Short: "Push an alarm back by the configured snooze interval.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Snooze(ctx, clientOptions(), args[0], cmd.OutOrStdout())
		},
	}

	dismissCmd = &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Clear the snooze state of an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Dismiss(ctx, clientOptions(), args[0], cmd.OutOrStdout())
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := editCmd.Flags()
	flags.StringVarP(&editTime, "time", "t", "", "new trigger time")
	flags.StringVarP(&editMessage, "message", "m", "", "new message, empty clears it")
	flags.BoolVarP(&editRepeat, "repeat", "r", false, "repeat daily")
	flags.BoolVarP(&editEnabled, "enabled", "e", true, "enable or disable the alarm")
}
