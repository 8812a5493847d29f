package tasks

import (
	"time"

	"mailsift/internal/mail"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status permits no further mutation of the
// task's result sequence.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task tracks one end-to-end analysis run from fetch through all batches. It
// lives only for the process lifetime; records are evicted by age, never
// persisted.
type Task struct {
	ID           string        `json:"id"`
	SenderID     string        `json:"sender_id"`
	ItemLimit    int           `json:"item_limit"`
	BatchSize    int           `json:"batch_size"`
	Status       Status        `json:"status"`
	Progress     string        `json:"progress"`
	Results      []BatchResult `json:"results"`
	ErrorMessage string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BatchResult records the outcome of one pipeline batch. Exactly one of
// Success or Failure is set. Results are immutable once appended.
type BatchResult struct {
	Ordinal     int           `json:"batch"`
	Total       int           `json:"total_batches"`
	ItemCount   int           `json:"item_count"`
	ThreadCount int           `json:"thread_count"`
	Success     *BatchSuccess `json:"success,omitempty"`
	Failure     *BatchFailure `json:"failure,omitempty"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// BatchSuccess carries the structured analysis, the raw pre-structuring
// markdown, and a snapshot of the batch's items for cross-reference.
type BatchSuccess struct {
	Analysis string         `json:"analysis"`
	Raw      string         `json:"raw"`
	Items    []mail.Message `json:"items"`
}

// BatchFailure carries the stage error that sank the batch.
type BatchFailure struct {
	Message string `json:"message"`
}

// Failed reports whether the batch ended in failure.
func (r BatchResult) Failed() bool {
	return r.Failure != nil
}

func (r BatchResult) clone() BatchResult {
	out := r
	if r.Success != nil {
		success := *r.Success
		success.Items = append([]mail.Message(nil), r.Success.Items...)
		out.Success = &success
	}
	if r.Failure != nil {
		failure := *r.Failure
		out.Failure = &failure
	}
	return out
}

func (t *Task) clone() Task {
	out := *t
	out.Results = make([]BatchResult, len(t.Results))
	for i, r := range t.Results {
		out.Results[i] = r.clone()
	}
	return out
}
