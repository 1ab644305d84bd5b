// Package queue implements the de-duplicating priority queues that feed
// task runners. Every queue is backed by the shared persistent store and
// enforces a per-queue policy for pushes that collide with an item already
// on the queue.
package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"reflect"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

// PriorityQueueOptions groups dependencies and policy for a PriorityQueue.
type PriorityQueueOptions struct {
	// ID identifies the queue; it doubles as the scheduler ID in the store.
	ID string

	// MaxSize caps the number of items on the queue. Zero means unbounded.
	MaxSize int

	// ItemType is the task payload type this queue carries.
	ItemType model.ItemType

	// AllowReplace permits pushes that replace an item already on the queue.
	AllowReplace bool

	// AllowUpdates permits pushes whose payload differs from the item
	// already on the queue.
	AllowUpdates bool

	// AllowPriorityUpdates permits pushes whose priority differs from the
	// item already on the queue.
	AllowPriorityUpdates bool

	Store   core.PriorityQueueStore
	TxStore core.PriorityQueueStoreTx
}

// PriorityQueue is one scheduler's queue view over the shared store. Items
// are ordered by ascending priority, ties broken by insertion time. Pushes
// are de-duplicated on the payload's identity hash.
type PriorityQueue struct {
	id                   string
	maxSize              int
	itemType             model.ItemType
	allowReplace         bool
	allowUpdates         bool
	allowPriorityUpdates bool

	store   core.PriorityQueueStore
	txStore core.PriorityQueueStoreTx
}

// NewPriorityQueue constructs a new PriorityQueue.
func NewPriorityQueue(opts PriorityQueueOptions) *PriorityQueue {
	return &PriorityQueue{
		id:                   opts.ID,
		maxSize:              opts.MaxSize,
		itemType:             opts.ItemType,
		allowReplace:         opts.AllowReplace,
		allowUpdates:         opts.AllowUpdates,
		allowPriorityUpdates: opts.AllowPriorityUpdates,
		store:                opts.Store,
		txStore:              opts.TxStore,
	}
}

// ID returns the queue identifier.
func (q *PriorityQueue) ID() string { return q.id }

// MaxSize returns the queue capacity. Zero means unbounded.
func (q *PriorityQueue) MaxSize() int { return q.maxSize }

// ItemType returns the task payload type this queue carries.
func (q *PriorityQueue) ItemType() model.ItemType { return q.itemType }

type writeFunc func(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error

// Push validates the item and adds it to the queue, or updates the item
// already on the queue with the same identity hash when the queue's policy
// permits. The item's hash is derived from its payload; a caller-supplied
// hash is overwritten. Returns the stored item.
func (q *PriorityQueue) Push(ctx context.Context, item *model.PrioritizedItem) (*model.PrioritizedItem, error) {
	return q.push(ctx, item, q.store.Push, q.store.Update)
}

// PushInTx behaves like Push but performs the queue write inside the given
// transaction, so it can commit together with a task-store insert.
func (q *PriorityQueue) PushInTx(ctx context.Context, tx *sql.Tx, item *model.PrioritizedItem) (*model.PrioritizedItem, error) {
	if q.txStore == nil {
		return nil, apperrors.Internalf("queue %s has no transactional store", q.id)
	}

	push := func(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error {
		return q.txStore.PushInTx(ctx, tx, schedulerID, item)
	}
	update := func(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error {
		return q.txStore.UpdateInTx(ctx, tx, schedulerID, item)
	}

	return q.push(ctx, item, push, update)
}

func (q *PriorityQueue) push(ctx context.Context, item *model.PrioritizedItem, pushFn, updateFn writeFunc) (*model.PrioritizedItem, error) {
	hash, err := q.validate(item)
	if err != nil {
		return nil, err
	}
	item.Hash = hash

	full, err := q.Full(ctx)
	if err != nil {
		return nil, err
	}
	if full {
		return nil, apperrors.QueueFull(q.id)
	}

	onQueue, err := q.store.GetByHash(ctx, q.id, item.Hash)
	if err != nil {
		return nil, err
	}

	itemChanged := onQueue != nil && !jsonEqual(item.Data, onQueue.Data)
	priorityChanged := onQueue != nil && item.Priority != onQueue.Priority

	allowed := false
	switch {
	case onQueue == nil:
		allowed = true
	case q.allowReplace:
		allowed = true
	case q.allowUpdates && itemChanged:
		allowed = true
	case q.allowPriorityUpdates && priorityChanged:
		allowed = true
	}
	if !allowed {
		return nil, apperrors.NotAllowedf(
			"push not allowed on queue %s (item_changed=%t, priority_changed=%t, allow_replace=%t, allow_updates=%t, allow_priority_updates=%t)",
			q.id, itemChanged, priorityChanged, q.allowReplace, q.allowUpdates, q.allowPriorityUpdates,
		)
	}

	if onQueue == nil {
		if pushErr := pushFn(ctx, q.id, item); pushErr != nil {
			return nil, pushErr
		}
		return item, nil
	}

	// Keep the stored identity so the update addresses the existing row.
	item.ID = onQueue.ID
	if updateErr := updateFn(ctx, q.id, item); updateErr != nil {
		return nil, updateErr
	}
	return item, nil
}

// Pop removes and returns the item with the lowest priority, ties broken by
// insertion time. Returns a QueueEmpty error when there is nothing to pop.
func (q *PriorityQueue) Pop(ctx context.Context) (*model.PrioritizedItem, error) {
	item, err := q.store.Pop(ctx, q.id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.QueueEmpty(q.id)
	}
	return item, nil
}

// Peek returns the item Pop would return without removing it, or nil when
// the queue is empty.
func (q *PriorityQueue) Peek(ctx context.Context) (*model.PrioritizedItem, error) {
	return q.store.Peek(ctx, q.id)
}

// Remove deletes an item from the queue by ID. Returns true when an item
// was removed.
func (q *PriorityQueue) Remove(ctx context.Context, itemID string) (bool, error) {
	return q.store.Remove(ctx, q.id, itemID)
}

// Size returns the number of items on the queue.
func (q *PriorityQueue) Size(ctx context.Context) (int, error) {
	return q.store.Size(ctx, q.id)
}

// Full reports whether the queue is at capacity.
func (q *PriorityQueue) Full(ctx context.Context) (bool, error) {
	if q.maxSize <= 0 {
		return false, nil
	}
	size, err := q.Size(ctx)
	if err != nil {
		return false, err
	}
	return size >= q.maxSize, nil
}

// IsItemOnQueue reports whether an item with the given identity hash is on
// the queue.
func (q *PriorityQueue) IsItemOnQueue(ctx context.Context, hash string) (bool, error) {
	item, err := q.store.GetByHash(ctx, q.id, hash)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// GetByHash returns the item with the given identity hash, or nil.
func (q *PriorityQueue) GetByHash(ctx context.Context, hash string) (*model.PrioritizedItem, error) {
	return q.store.GetByHash(ctx, q.id, hash)
}

// Status returns the queue's control-API representation.
func (q *PriorityQueue) Status(ctx context.Context) (*model.QueueStatus, error) {
	size, err := q.Size(ctx)
	if err != nil {
		return nil, err
	}
	return &model.QueueStatus{
		ID:                   q.id,
		Size:                 size,
		MaxSize:              q.maxSize,
		ItemType:             q.itemType,
		AllowReplace:         q.allowReplace,
		AllowUpdates:         q.allowUpdates,
		AllowPriorityUpdates: q.allowPriorityUpdates,
	}, nil
}

// validate checks that the item carries a payload of the queue's item type
// and returns the payload's identity hash.
func (q *PriorityQueue) validate(item *model.PrioritizedItem) (string, error) {
	if item == nil {
		return "", apperrors.Validation("item is required")
	}
	if len(item.Data) == 0 {
		return "", apperrors.ValidationField("data", "task payload is required")
	}

	switch q.itemType {
	case model.ItemTypeBoefje:
		var task model.BoefjeTask
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return "", apperrors.Wrapf(err, apperrors.ErrCodeValidation, "queue %s expects a boefje task payload", q.id)
		}
		if task.Boefje.ID == "" || task.InputOOI == "" || task.Organization == "" {
			return "", apperrors.ValidationField("data", "boefje task requires boefje.id, input_ooi and organization")
		}
		return task.Hash(), nil
	case model.ItemTypeNormalizer:
		var task model.NormalizerTask
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return "", apperrors.Wrapf(err, apperrors.ErrCodeValidation, "queue %s expects a normalizer task payload", q.id)
		}
		if task.Normalizer.ID == "" || task.BoefjeMeta.ID == "" {
			return "", apperrors.ValidationField("data", "normalizer task requires normalizer.id and boefje_meta.id")
		}
		return task.Hash(), nil
	default:
		return "", apperrors.Internalf("queue %s carries unknown item type %q", q.id, q.itemType)
	}
}

// jsonEqual compares two JSON documents structurally, so formatting and key
// order differences do not count as payload changes.
func jsonEqual(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
