package api_test

import (
	"testing"

	"mailsift/internal/api"
	"mailsift/internal/tasks"
)

func TestSummarizeTaskCountsFailures(t *testing.T) {
	task := tasks.Task{
		ID:       "task-1",
		SenderID: "f5bot",
		Status:   tasks.StatusCompleted,
		Progress: "3/3",
		Results: []tasks.BatchResult{
			{Ordinal: 1, Success: &tasks.BatchSuccess{Analysis: "{}"}},
			{Ordinal: 2, Failure: &tasks.BatchFailure{Message: "timeout"}},
			{Ordinal: 3, Success: &tasks.BatchSuccess{Analysis: "{}"}},
		},
	}

	summary := api.SummarizeTask(task)
	if summary.ResultCount != 3 {
		t.Fatalf("result count = %d, want 3", summary.ResultCount)
	}
	if summary.FailedCount != 1 {
		t.Fatalf("failed count = %d, want 1", summary.FailedCount)
	}
	if summary.Status != "completed" || summary.Progress != "3/3" {
		t.Fatalf("summary = %+v", summary)
	}
}
