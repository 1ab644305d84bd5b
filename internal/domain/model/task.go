package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/murmur3"
)

// TaskStatus represents the lifecycle state of a scheduled task.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type TaskStatus string

const (
	// TaskStatusPending indicates a task was created but not yet queued.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusQueued indicates a task sits on a priority queue.
	TaskStatusQueued TaskStatus = "queued"
	// TaskStatusDispatched indicates a task was popped by a runner.
	TaskStatusDispatched TaskStatus = "dispatched"
	// TaskStatusRunning indicates a runner reported the task as started.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task finished with an error.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the TaskStatus is valid.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusQueued, TaskStatusDispatched,
		TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once a task can never change status again.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler for TaskStatus.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	ts := TaskStatus(v)
	if ts.Valid() {
		*s = ts
		return nil
	}
	return fmt.Errorf("invalid TaskStatus: %q", v)
}

// Task is the append-only audit record of one scheduled unit of work. The
// embedded queue envelope preserves exactly what was (or would have been)
// put on the queue.
type Task struct {
	ID          string           `json:"id"`
	SchedulerID string           `json:"scheduler_id"`
	Type        ItemType         `json:"type"`
	PItem       *PrioritizedItem `json:"p_item"`
	Status      TaskStatus       `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	ModifiedAt  time.Time        `json:"modified_at"`
}

// NewTask builds a queued-status task record for an item accepted onto the
// queue of the given scheduler. The task shares the item's ID, so runners
// reporting on a popped item address the same task row.
func NewTask(schedulerID string, itemType ItemType, item *PrioritizedItem, now time.Time) *Task {
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{
		ID:          id,
		SchedulerID: schedulerID,
		Type:        itemType,
		PItem:       item,
		Status:      TaskStatusQueued,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

// BoefjeTask is the payload for one boefje run against one OOI for one
// organisation. Dispatches is carried for the runners consuming the payload;
// scheduling never reads it and it does not contribute to the identity hash.
type BoefjeTask struct {
	ID           string       `json:"id"`
	Boefje       Boefje       `json:"boefje"`
	InputOOI     string       `json:"input_ooi"`
	Organization string       `json:"organization"`
	Dispatches   []Normalizer `json:"dispatches"`
}

// NewBoefjeTask builds a BoefjeTask with a fresh ID.
func NewBoefjeTask(boefje Boefje, inputOOI, organization string) *BoefjeTask {
	return &BoefjeTask{
		ID:           uuid.NewString(),
		Boefje:       boefje,
		InputOOI:     inputOOI,
		Organization: organization,
		Dispatches:   []Normalizer{},
	}
}

// Hash returns the de-duplication identity of the task: the same boefje
// against the same OOI for the same organisation always hashes identically,
// regardless of task ID.
func (t BoefjeTask) Hash() string {
	return hashIdentity(t.Boefje.ID, t.InputOOI, t.Organization)
}

// MarshalData serializes the task for transport in a queue envelope.
func (t BoefjeTask) MarshalData() (json.RawMessage, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal boefje task: %w", err)
	}
	return b, nil
}

// NormalizerTask is the payload for one normalizer run over the raw output
// of one boefje run.
type NormalizerTask struct {
	ID         string     `json:"id"`
	Normalizer Normalizer `json:"normalizer"`
	BoefjeMeta BoefjeMeta `json:"boefje_meta"`
}

// NewNormalizerTask builds a NormalizerTask with a fresh ID.
func NewNormalizerTask(normalizer Normalizer, meta BoefjeMeta) *NormalizerTask {
	return &NormalizerTask{
		ID:         uuid.NewString(),
		Normalizer: normalizer,
		BoefjeMeta: meta,
	}
}

// Hash returns the de-duplication identity of the task: one normalizer per
// raw-output record per organisation.
func (t NormalizerTask) Hash() string {
	return hashIdentity(t.Normalizer.ID, t.BoefjeMeta.ID, t.BoefjeMeta.Organization)
}

// MarshalData serializes the task for transport in a queue envelope.
func (t NormalizerTask) MarshalData() (json.RawMessage, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal normalizer task: %w", err)
	}
	return b, nil
}

// hashIdentity derives the 32-character hex identity hash from the canonical
// pipe-joined key. Murmur3 128 keeps the hash stable across versions and
// processes, which matters because hashes are persisted and compared against
// historical task rows.
func hashIdentity(parts ...string) string {
	h1, h2 := murmur3.Sum128([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%016x%016x", h1, h2)
}
