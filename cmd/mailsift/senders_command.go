package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mailsift/internal/api"
)

func newSendersCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "senders",
		Short: "List the senders configured for analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			senders, err := ctx.client().Senders(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, api.SendersResponse{Senders: senders})
			}

			stdout := cmd.OutOrStdout()
			if len(senders) == 0 {
				fmt.Fprintln(stdout, "No senders configured")
				return nil
			}

			rows := make([][]string, 0, len(senders))
			for _, sender := range senders {
				rows = append(rows, []string{sender.ID, sender.Name, sender.Email, sender.PromptKey})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(stdout, renderTable([]string{"ID", "Name", "Email", "Prompt"}, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
