package api

import (
	"time"

	"mailsift/internal/tasks"
)

// AnalyzeRequest asks the daemon to start an analysis run for a configured
// sender. Zero values for Limit and BatchSize take the configured defaults.
type AnalyzeRequest struct {
	SenderID  string `json:"sender_id"`
	Limit     int    `json:"limit,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// AnalyzeResponse acknowledges an accepted analysis run.
type AnalyzeResponse struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	SenderID string `json:"sender_id"`
}

// TaskSummary is the list view of a task, without result payloads.
type TaskSummary struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"sender_id"`
	Status       string    `json:"status"`
	Progress     string    `json:"progress"`
	ResultCount  int       `json:"result_count"`
	FailedCount  int       `json:"failed_count"`
	ErrorMessage string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SummarizeTask converts a task record into its list view.
func SummarizeTask(task tasks.Task) TaskSummary {
	failed := 0
	for _, result := range task.Results {
		if result.Failed() {
			failed++
		}
	}
	return TaskSummary{
		ID:           task.ID,
		SenderID:     task.SenderID,
		Status:       string(task.Status),
		Progress:     task.Progress,
		ResultCount:  len(task.Results),
		FailedCount:  failed,
		ErrorMessage: task.ErrorMessage,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// TaskListResponse wraps the task list view.
type TaskListResponse struct {
	Tasks []TaskSummary `json:"tasks"`
}

// TaskResponse wraps one full task record including batch results.
type TaskResponse struct {
	Task tasks.Task `json:"task"`
}

// SenderInfo describes one configured sender.
type SenderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description,omitempty"`
	PromptKey   string `json:"prompt_key"`
}

// SendersResponse wraps the configured sender list.
type SendersResponse struct {
	Senders []SenderInfo `json:"senders"`
}

// EvictResponse reports the outcome of an on-demand eviction sweep.
type EvictResponse struct {
	Evicted int `json:"evicted"`
}

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running        bool   `json:"running"`
	PID            int    `json:"pid"`
	LockFilePath   string `json:"lock_file_path"`
	JournalPath    string `json:"journal_path,omitempty"`
	TaskCount      int    `json:"task_count"`
	RetentionHours int    `json:"retention_hours"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}
