package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data/pgxutil"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

var (
	_ core.PriorityQueueStore   = (*PQStore)(nil)
	_ core.PriorityQueueStoreTx = (*PQStore)(nil)
)

// PQStore persists priority queue items in the items table. Items are live
// only while they sit on a queue: Pop and Remove delete the row.
type PQStore struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPQStore creates a new PQStore instance with the given database connection.
func NewPQStore(db *sql.DB) *PQStore {
	return &PQStore{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewPQStoreWithTimeProvider creates a PQStore with a custom TimeProvider (useful for testing).
func NewPQStoreWithTimeProvider(db *sql.DB, timeProvider TimeProvider) *PQStore {
	return &PQStore{
		DB:           db,
		timeProvider: timeProvider,
	}
}

const itemColumns = `id, scheduler_id, hash, priority, data, created_at, modified_at`

// Push inserts a new live item for the scheduler's queue. A unique index on
// (scheduler_id, hash) turns racing duplicate pushes into a Conflict error.
func (s *PQStore) Push(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error {
	now := s.timeProvider.Now()
	query := `
		INSERT INTO items (id, scheduler_id, hash, priority, data, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	if _, err := s.DB.ExecContext(ctx, query,
		item.ID, schedulerID, item.Hash, item.Priority, []byte(item.Data), now.UTC(),
	); err != nil {
		return apperrors.MapDBError(fmt.Errorf("push item: %w", err))
	}
	item.ScoredAt = now.UTC()
	return nil
}

// PushInTx inserts a new live item within an existing transaction, so the
// queue write can commit together with the task-store write.
func (s *PQStore) PushInTx(ctx context.Context, tx *sql.Tx, schedulerID string, item *model.PrioritizedItem) error {
	now := s.timeProvider.Now()
	query := `
		INSERT INTO items (id, scheduler_id, hash, priority, data, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	if _, err := tx.ExecContext(ctx, query,
		item.ID, schedulerID, item.Hash, item.Priority, []byte(item.Data), now.UTC(),
	); err != nil {
		return apperrors.MapDBError(fmt.Errorf("push item (tx): %w", err))
	}
	item.ScoredAt = now.UTC()
	return nil
}

// Pop atomically removes and returns the item with the lowest priority,
// FIFO within a priority. FOR UPDATE SKIP LOCKED keeps concurrent poppers
// from ever receiving the same item. Returns nil when the queue is empty.
func (s *PQStore) Pop(ctx context.Context, schedulerID string) (*model.PrioritizedItem, error) {
	var item *model.PrioritizedItem

	err := pgxutil.WithSQLTx(ctx, s.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			query := `
				SELECT ` + itemColumns + `
				FROM items
				WHERE scheduler_id = $1
				ORDER BY priority ASC, created_at ASC
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			`

			row, err := scanItemRow(tx.QueryRowContext(ctx, query, schedulerID))
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("select next item: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, row.ID); err != nil {
				return fmt.Errorf("delete popped item: %w", err)
			}

			item = row.toDomainItem()
			return nil
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	return item, nil
}

// Peek returns the item Pop would return without removing it, or nil when
// the queue is empty.
func (s *PQStore) Peek(ctx context.Context, schedulerID string) (*model.PrioritizedItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE scheduler_id = $1
		ORDER BY priority ASC, created_at ASC
		LIMIT 1
	`

	row, err := scanItemRow(s.DB.QueryRowContext(ctx, query, schedulerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("peek item: %w", err))
	}
	return row.toDomainItem(), nil
}

// Update rewrites a live item's priority and payload in place, keyed by ID.
func (s *PQStore) Update(ctx context.Context, schedulerID string, item *model.PrioritizedItem) error {
	return s.update(ctx, s.DB.ExecContext, schedulerID, item)
}

// UpdateInTx is the transactional variant of Update.
func (s *PQStore) UpdateInTx(ctx context.Context, tx *sql.Tx, schedulerID string, item *model.PrioritizedItem) error {
	return s.update(ctx, tx.ExecContext, schedulerID, item)
}

type execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)

func (s *PQStore) update(ctx context.Context, exec execFunc, schedulerID string, item *model.PrioritizedItem) error {
	now := s.timeProvider.Now()
	query := `
		UPDATE items
		SET priority = $3, data = $4, modified_at = $5
		WHERE scheduler_id = $1 AND id = $2
	`

	res, err := exec(ctx, query, schedulerID, item.ID, item.Priority, []byte(item.Data), now.UTC())
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("update item: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("item %s not on queue %s", item.ID, schedulerID)
	}
	return nil
}

// Remove deletes a live item by ID. Returns true when a row was removed.
func (s *PQStore) Remove(ctx context.Context, schedulerID, itemID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM items WHERE scheduler_id = $1 AND id = $2`, schedulerID, itemID)
	if err != nil {
		return false, apperrors.MapDBError(fmt.Errorf("remove item: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetByHash returns the live item with the given identity hash, or nil when
// no such item sits on the queue.
func (s *PQStore) GetByHash(ctx context.Context, schedulerID, hash string) (*model.PrioritizedItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE scheduler_id = $1 AND hash = $2
	`

	row, err := scanItemRow(s.DB.QueryRowContext(ctx, query, schedulerID, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get item by hash: %w", err))
	}
	return row.toDomainItem(), nil
}

// Size returns the number of live items on the scheduler's queue.
func (s *PQStore) Size(ctx context.Context, schedulerID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE scheduler_id = $1`, schedulerID).Scan(&count)
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("count items: %w", err))
	}
	return count, nil
}

// itemRow represents the database row structure for queue items. It matches
// the items table exactly.
type itemRow struct {
	ID          string    `db:"id"`
	SchedulerID string    `db:"scheduler_id"`
	Hash        string    `db:"hash"`
	Priority    int64     `db:"priority"`
	Data        []byte    `db:"data"`
	CreatedAt   time.Time `db:"created_at"`
	ModifiedAt  time.Time `db:"modified_at"`
}

// toDomainItem converts an itemRow to a model.PrioritizedItem.
func (r *itemRow) toDomainItem() *model.PrioritizedItem {
	if r == nil {
		return nil
	}
	return &model.PrioritizedItem{
		ID:       r.ID,
		ScoredAt: r.CreatedAt,
		Priority: r.Priority,
		Hash:     r.Hash,
		Data:     json.RawMessage(r.Data),
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for single-row scans.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItemRow scans one items row from a database/sql row.
func scanItemRow(row rowScanner) (*itemRow, error) {
	var dbRow itemRow
	err := row.Scan(
		&dbRow.ID,
		&dbRow.SchedulerID,
		&dbRow.Hash,
		&dbRow.Priority,
		&dbRow.Data,
		&dbRow.CreatedAt,
		&dbRow.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dbRow, nil
}
