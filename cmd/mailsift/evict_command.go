package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvictCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "evict",
		Short: "Evict tasks older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Evict(cmd.Context())
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			switch resp.Evicted {
			case 0:
				fmt.Fprintln(stdout, "No tasks were old enough to evict")
			case 1:
				fmt.Fprintln(stdout, "Evicted 1 task")
			default:
				fmt.Fprintf(stdout, "Evicted %d tasks\n", resp.Evicted)
			}
			return nil
		},
	}
}
