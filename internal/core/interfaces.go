package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/strixlab/patrol/internal/domain/model"
)

// This file contains repository and connector interface definitions (ports in
// hexagonal architecture). These interfaces define the contracts between the
// service layer and the data/adapters layers. Service implementations should
// depend on these interfaces, not concrete implementations.

// PriorityQueueStore defines the persistence operations backing one or more
// priority queues. Items are keyed by (scheduler_id, hash); at most one live
// item per key exists at any time.
type PriorityQueueStore interface {
	// Push inserts a new item for the scheduler's queue.
	Push(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error
	// Pop atomically removes and returns the eligible item with the lowest
	// priority (FIFO within a priority). Returns nil when the queue is empty.
	Pop(ctx context.Context, schedulerID string) (*model.PrioritizedItem, error)
	// Peek returns the item Pop would return without removing it.
	Peek(ctx context.Context, schedulerID string) (*model.PrioritizedItem, error)
	// Update rewrites a live item in place, keyed by its ID.
	Update(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error
	// Remove deletes a live item by ID. Returns true when a row was removed.
	Remove(ctx context.Context, schedulerID, itemID string) (bool, error)
	// GetByHash returns the live item with the given identity hash, or nil.
	GetByHash(ctx context.Context, schedulerID, hash string) (*model.PrioritizedItem, error)
	// Size returns the number of live items on the scheduler's queue.
	Size(ctx context.Context, schedulerID string) (int, error)
}

// PriorityQueueStoreTx defines transactional variants used when a queue
// mutation must commit together with a task-store write.
type PriorityQueueStoreTx interface {
	PushInTx(ctx context.Context, tx *sql.Tx, schedulerID string, item *model.PrioritizedItem) error
	UpdateInTx(ctx context.Context, tx *sql.Tx, schedulerID string, item *model.PrioritizedItem) error
}

// TaskFilter narrows TaskStore.List results. Nil fields match everything.
type TaskFilter struct {
	SchedulerID *string
	Status      *model.TaskStatus
	Offset      int
	Limit       int
}

// TaskStore defines the append-only audit log of scheduled tasks.
type TaskStore interface {
	Add(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	// GetLatestByHash returns the most recently created task with the given
	// identity hash, or nil when the hash has never been scheduled.
	GetLatestByHash(ctx context.Context, hash string) (*model.Task, error)
	// List returns one page of matching tasks plus the total match count.
	List(ctx context.Context, filter TaskFilter) ([]*model.Task, int, error)
}

// TaskStoreTx defines transactional task writes paired with queue writes.
type TaskStoreTx interface {
	AddInTx(ctx context.Context, tx *sql.Tx, task *model.Task) error
	UpdateInTx(ctx context.Context, tx *sql.Tx, task *model.Task) error
}

// TxRunner runs a function inside one database transaction, committing when
// it returns nil and rolling back otherwise. Schedulers use it to pair a
// queue write with its audit-log write.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// CatalogueService is the katalogus connector: the source of truth for
// organisations and their plugins.
type CatalogueService interface {
	ListOrganisations(ctx context.Context) ([]model.Organisation, error)
	// GetBoefjesByOOIType returns the boefjes consuming the given OOI type
	// for the organisation, enabled or not.
	GetBoefjesByOOIType(ctx context.Context, orgID, ooiType string) ([]model.Plugin, error)
	// GetNewBoefjesByOrg returns boefjes enabled since the previous call for
	// the organisation, using the plugin cache as the previous snapshot.
	GetNewBoefjesByOrg(ctx context.Context, orgID string) ([]model.Plugin, error)
	// GetNormalizersByMimeType returns normalizers consuming the mime type.
	GetNormalizersByMimeType(ctx context.Context, orgID, mimeType string) ([]model.Plugin, error)
	// FlushCaches drops the organisation's cached plugin snapshots.
	FlushCaches(ctx context.Context, orgID string) error
	Health(ctx context.Context) error
}

// RandomObjectsParams groups parameters for InventoryService.GetRandomObjects
// to keep param count ≤3.
type RandomObjectsParams struct {
	OrganisationID string
	Amount         int
	// MaxCheckedAt filters to objects whose last check is older than this.
	MaxCheckedAt time.Time
}

// InventoryService is the octopoes connector: the asset inventory holding
// OOIs and their scan profiles.
type InventoryService interface {
	GetObject(ctx context.Context, orgID, primaryKey string) (*model.OOI, error)
	// GetObjectsByTypes returns the organisation's objects whose type is in
	// types. An empty types slice matches nothing.
	GetObjectsByTypes(ctx context.Context, orgID string, types []string) ([]model.OOI, error)
	GetRandomObjects(ctx context.Context, params RandomObjectsParams) ([]model.OOI, error)
	Health(ctx context.Context) error
}

// LastRunParams groups parameters for BlobStoreService.GetLastRun.
type LastRunParams struct {
	BoefjeID       string
	InputOOI       string
	OrganisationID string
}

// BlobStoreService is the bytes connector: the raw-file store that also
// records boefje run metadata.
type BlobStoreService interface {
	// GetLastRun returns the newest run record for the boefje/OOI/org
	// triple, or nil when it never ran.
	GetLastRun(ctx context.Context, params LastRunParams) (*model.BoefjeMeta, error)
	Health(ctx context.Context) error
}

// Delivery is one message taken off a broker queue. Ack must be called after
// the message was processed successfully; Nack returns it to the queue.
type Delivery interface {
	Body() []byte
	Ack() error
	Nack(requeue bool) error
}

// Broker provides non-blocking access to the platform's event queues.
type Broker interface {
	// Get fetches one message from the named queue without waiting.
	// Returns (nil, nil) when the queue is empty.
	Get(ctx context.Context, queue string) (Delivery, error)
	Close() error
}

// BoefjeRanker scores boefje tasks. Negative scores mean "not yet".
type BoefjeRanker interface {
	Rank(ctx context.Context, lastRun *model.BoefjeMeta, now time.Time) int64
}

// NormalizerRanker scores normalizer tasks.
type NormalizerRanker interface {
	Rank(ctx context.Context, now time.Time) int64
}

// SchedulerControl is the view of the running scheduler set consumed by the
// HTTP control API.
type SchedulerControl interface {
	ListSchedulers(ctx context.Context) []*model.SchedulerStatus
	GetScheduler(ctx context.Context, id string) (*model.SchedulerStatus, error)
	SetPopulateEnabled(ctx context.Context, id string, enabled bool) (*model.SchedulerStatus, error)
	ListQueues(ctx context.Context) []*model.QueueStatus
	GetQueue(ctx context.Context, id string) (*model.QueueStatus, error)
	PopQueue(ctx context.Context, id string) (*model.PrioritizedItem, error)
	PushQueue(ctx context.Context, id string, item *model.PrioritizedItem) error
}
