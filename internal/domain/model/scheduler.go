package model

import "time"

// QueueStatus is the API snapshot of one priority queue.
type QueueStatus struct {
	ID                   string   `json:"id"`
	Size                 int      `json:"size"`
	MaxSize              int      `json:"maxsize"`
	ItemType             ItemType `json:"item_type"`
	AllowReplace         bool     `json:"allow_replace"`
	AllowUpdates         bool     `json:"allow_updates"`
	AllowPriorityUpdates bool     `json:"allow_priority_updates"`
}

// SchedulerStatus is the API snapshot of one running scheduler.
type SchedulerStatus struct {
	ID              string      `json:"id"`
	Enabled         bool        `json:"enabled"`
	PopulateEnabled bool        `json:"populate_queue_enabled"`
	PriorityQueue   QueueStatus `json:"priority_queue"`
	LastActivity    *time.Time  `json:"last_activity,omitempty"`
}

// SchedulerPatch is the body accepted by the scheduler PATCH endpoint. Only
// the populate toggle is mutable at runtime.
type SchedulerPatch struct {
	PopulateEnabled *bool `json:"populate_queue_enabled"`
}
