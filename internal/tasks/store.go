package tasks

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the process-lifetime task registry. All operations are safe for
// concurrent use; reads return copies so callers can never reach into store
// state through a returned record.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	now   func() time.Time
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*Task),
		now:   time.Now,
	}
}

// Create registers a new task in the processing state and returns a copy of
// it. Identifiers are random 128-bit values, so collisions with live tasks do
// not occur in practice.
func (s *Store) Create(senderID string, itemLimit, batchSize int) Task {
	now := s.now()
	task := &Task{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		ItemLimit: itemLimit,
		BatchSize: batchSize,
		Status:    StatusProcessing,
		Progress:  "0/0",
		Results:   []BatchResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()
	return task.clone()
}

// Get returns an isolated copy of the task, or false if the id is unknown or
// already evicted.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// Update describes a partial task mutation. Nil fields are left untouched.
type Update struct {
	Status       *Status
	Progress     *string
	ErrorMessage *string
}

// Apply merges the update into the task and refreshes its update timestamp.
// An unknown id is a no-op returning false, never an error that aborts the
// caller; eviction racing an in-flight worker degrades to exactly this case.
func (s *Store) Apply(id string, update Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return false
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Progress != nil {
		task.Progress = *update.Progress
	}
	if update.ErrorMessage != nil {
		task.ErrorMessage = *update.ErrorMessage
	}
	task.UpdatedAt = s.now()
	return true
}

// AppendResult adds a batch result to the task's ordered result sequence.
// Appends against a terminal task are refused.
func (s *Store) AppendResult(id string, result BatchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return false
	}
	if task.Status.Terminal() {
		return false
	}
	task.Results = append(task.Results, result.clone())
	task.UpdatedAt = s.now()
	return true
}

// EvictOlderThan removes every task created before now minus retention and
// returns how many were removed.
func (s *Store) EvictOlderThan(retention time.Duration) int {
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, task := range s.tasks {
		if task.CreatedAt.Before(cutoff) {
			delete(s.tasks, id)
			evicted++
		}
	}
	return evicted
}

// List returns copies of every live task, newest first.
func (s *Store) List() []Task {
	s.mu.RLock()
	out := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len reports the current live task count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
