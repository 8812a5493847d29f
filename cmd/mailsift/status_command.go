package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				if jsonOut {
					return err
				}
				for _, line := range renderSectionHeader("Daemon Status", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", statusError, "no ("+err.Error()+")", colorize))
				return nil
			}
			if jsonOut {
				return writeJSON(cmd, status)
			}

			for _, line := range renderSectionHeader("Daemon Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			runningKind := statusError
			if status.Running {
				runningKind = statusOK
			}
			fmt.Fprintln(stdout, renderStatusLine("Running", runningKind, yesNo(status.Running), colorize))
			fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, strconv.Itoa(status.PID), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
			if status.JournalPath != "" {
				fmt.Fprintln(stdout, renderStatusLine("Journal", statusInfo, status.JournalPath, colorize))
			}
			fmt.Fprintln(stdout, renderStatusLine("Tasks held", statusInfo, strconv.Itoa(status.TaskCount), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Retention", statusInfo, fmt.Sprintf("%d hours", status.RetentionHours), colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of formatted output")
	return cmd
}
