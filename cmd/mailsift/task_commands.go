package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mailsift/internal/api"
	"mailsift/internal/tasks"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List analysis tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := ctx.client().Tasks(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, api.TaskListResponse{Tasks: summaries})
			}

			stdout := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(stdout, "No tasks")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					summary.ID,
					summary.SenderID,
					summary.Status,
					summary.Progress,
					strconv.Itoa(summary.FailedCount),
					summary.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(stdout, renderTable([]string{"ID", "Sender", "Status", "Progress", "Failed", "Created"}, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newTaskCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var showRaw bool

	cmd := &cobra.Command{
		Use:   "task <task-id>",
		Short: "Show one task with its batch results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Task(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, resp)
			}
			stdout := cmd.OutOrStdout()
			renderTaskDetail(stdout, resp, shouldColorize(stdout))
			if showRaw {
				renderRawAnalyses(stdout, resp.Task)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of formatted output")
	cmd.Flags().BoolVar(&showRaw, "raw", false, "Include the unstructured analysis text for each batch")
	return cmd
}

func renderTaskDetail(out io.Writer, resp api.TaskResponse, colorize bool) {
	task := resp.Task

	for _, line := range renderSectionHeader("Task "+task.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Status", taskStatusKind(task.Status), string(task.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Sender", statusInfo, task.SenderID, colorize))
	fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, task.Progress, colorize))
	fmt.Fprintln(out, renderStatusLine("Created", statusInfo, task.CreatedAt.Local().Format(time.RFC3339), colorize))
	fmt.Fprintln(out, renderStatusLine("Updated", statusInfo, task.UpdatedAt.Local().Format(time.RFC3339), colorize))
	if task.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, task.ErrorMessage, colorize))
	}

	for _, result := range task.Results {
		fmt.Fprintln(out)
		title := fmt.Sprintf("Batch %d/%d", result.Ordinal, result.Total)
		for _, line := range renderSectionHeader(title, colorize) {
			fmt.Fprintln(out, line)
		}
		detail := fmt.Sprintf("%d messages across %d conversations", result.ItemCount, result.ThreadCount)
		fmt.Fprintln(out, renderStatusLine("Items", statusInfo, detail, colorize))
		fmt.Fprintln(out, renderStatusLine("Processed", statusInfo, result.ProcessedAt.Local().Format(time.RFC3339), colorize))
		if result.Failed() {
			fmt.Fprintln(out, renderStatusLine("Outcome", statusError, result.Failure.Message, colorize))
			continue
		}
		fmt.Fprintln(out, renderStatusLine("Outcome", statusOK, "analyzed", colorize))
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.TrimSpace(result.Success.Analysis))
	}
}

func renderRawAnalyses(out io.Writer, task tasks.Task) {
	for _, result := range task.Results {
		if result.Failed() || result.Success.Raw == result.Success.Analysis {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "--- raw analysis, batch %d/%d ---\n", result.Ordinal, result.Total)
		fmt.Fprintln(out, strings.TrimSpace(result.Success.Raw))
	}
}

func taskStatusKind(status tasks.Status) statusKind {
	switch status {
	case tasks.StatusCompleted:
		return statusOK
	case tasks.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}
