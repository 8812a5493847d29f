package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mailsift/internal/api"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var batchSize int
	var wait bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <sender-id>",
		Short: "Start an analysis run for a configured sender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			senderID := strings.TrimSpace(args[0])
			if senderID == "" {
				return errors.New("sender id is required")
			}

			client := ctx.client()
			resp, err := client.Analyze(cmd.Context(), api.AnalyzeRequest{
				SenderID:  senderID,
				Limit:     limit,
				BatchSize: batchSize,
			})
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if !wait {
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(stdout, "Task %s started for sender %s\n", resp.TaskID, resp.SenderID)
				fmt.Fprintf(stdout, "Run `mailsift task %s` to inspect progress\n", resp.TaskID)
				return nil
			}

			task, err := waitForTask(cmd.Context(), ctx, resp.TaskID, stdout, !jsonOut)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, task)
			}
			renderTaskDetail(stdout, task, shouldColorize(stdout))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum conversations to analyze (0 uses the configured default)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Messages per pipeline batch (0 uses the configured default)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the task reaches a terminal state")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of formatted output")
	return cmd
}

// waitForTask polls the daemon until the task completes or fails, reporting
// progress transitions along the way.
func waitForTask(ctx context.Context, cctx *commandContext, taskID string, out io.Writer, report bool) (api.TaskResponse, error) {
	client := cctx.client()
	lastProgress := ""
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := client.Task(ctx, taskID)
		if err != nil {
			return api.TaskResponse{}, err
		}
		task := resp.Task
		if report && task.Progress != lastProgress {
			fmt.Fprintf(out, "Progress: %s\n", task.Progress)
			lastProgress = task.Progress
		}
		if task.Status.Terminal() {
			return resp, nil
		}
		select {
		case <-ctx.Done():
			return api.TaskResponse{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
