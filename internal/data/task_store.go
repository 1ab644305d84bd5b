package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data/pgxutil"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

var (
	_ core.TaskStore   = (*TaskStore)(nil)
	_ core.TaskStoreTx = (*TaskStore)(nil)
)

// TaskStore persists the append-only audit log of scheduled tasks. Rows are
// never deleted; status transitions update the row in place.
type TaskStore struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTaskStore creates a new TaskStore instance with the given database connection.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewTaskStoreWithTimeProvider creates a TaskStore with a custom TimeProvider (useful for testing).
func NewTaskStoreWithTimeProvider(db *sql.DB, timeProvider TimeProvider) *TaskStore {
	return &TaskStore{
		DB:           db,
		timeProvider: timeProvider,
	}
}

const taskColumns = `id, scheduler_id, type, hash, priority, data, status, created_at, modified_at`

// Add inserts a new task row.
func (s *TaskStore) Add(ctx context.Context, task *model.Task) error {
	return s.add(ctx, s.DB.ExecContext, task)
}

// AddInTx inserts a new task row within an existing transaction, pairing the
// audit write with the queue write.
func (s *TaskStore) AddInTx(ctx context.Context, tx *sql.Tx, task *model.Task) error {
	return s.add(ctx, tx.ExecContext, task)
}

func (s *TaskStore) add(ctx context.Context, exec execFunc, task *model.Task) error {
	if task.PItem == nil {
		return apperrors.Validation("task has no prioritized item")
	}

	query := `
		INSERT INTO tasks (id, scheduler_id, type, hash, priority, data, status, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err := exec(ctx, query,
		task.ID,
		task.SchedulerID,
		string(task.Type),
		task.PItem.Hash,
		task.PItem.Priority,
		[]byte(task.PItem.Data),
		string(task.Status),
		task.CreatedAt.UTC(),
		task.ModifiedAt.UTC(),
	); err != nil {
		return apperrors.MapDBError(fmt.Errorf("insert task: %w", err))
	}
	return nil
}

// Update rewrites a task's status, priority and payload. ModifiedAt is
// stamped from the store's time provider.
func (s *TaskStore) Update(ctx context.Context, task *model.Task) error {
	return s.update(ctx, s.DB.ExecContext, task)
}

// UpdateInTx rewrites a task row within an existing transaction, pairing the
// audit update with the queue write that caused it.
func (s *TaskStore) UpdateInTx(ctx context.Context, tx *sql.Tx, task *model.Task) error {
	return s.update(ctx, tx.ExecContext, task)
}

func (s *TaskStore) update(ctx context.Context, exec execFunc, task *model.Task) error {
	if task.PItem == nil {
		return apperrors.Validation("task has no prioritized item")
	}

	now := s.timeProvider.Now()
	query := `
		UPDATE tasks
		SET status = $2, priority = $3, data = $4, modified_at = $5
		WHERE id = $1
	`

	res, err := exec(ctx, query,
		task.ID, string(task.Status), task.PItem.Priority, []byte(task.PItem.Data), now.UTC())
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("update task: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("task %s not found", task.ID)
	}
	task.ModifiedAt = now.UTC()
	return nil
}

// GetByID returns the task with the given ID, or nil when it does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`

	row, err := scanTaskRow(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get task by id: %w", err))
	}
	return row.toDomainTask(), nil
}

// GetLatestByHash returns the most recently created task with the given
// identity hash, or nil when the hash was never scheduled.
func (s *TaskStore) GetLatestByHash(ctx context.Context, hash string) (*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE hash = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	row, err := scanTaskRow(s.DB.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get task by hash: %w", err))
	}
	return row.toDomainTask(), nil
}

// List returns one page of tasks matching the filter, newest first, plus the
// total number of matches.
func (s *TaskStore) List(ctx context.Context, filter core.TaskFilter) ([]*model.Task, int, error) {
	where, args := buildTaskFilter(filter)

	countQuery := `SELECT COUNT(*) FROM tasks` + where
	var total int
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.MapDBError(fmt.Errorf("count tasks: %w", err))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks%s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Offset, limit)

	// Use pgx via the stdlib bridge to leverage pgx v5 row collection.
	var tasks []*model.Task
	err := pgxutil.WithPgxConn(ctx, s.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		collected, collectErr := pgx.CollectRows(rows, rowToTask)
		if collectErr != nil {
			return collectErr
		}
		tasks = collected
		return nil
	})
	if err != nil {
		return nil, 0, apperrors.MapDBError(fmt.Errorf("list tasks: %w", err))
	}

	return tasks, total, nil
}

// buildTaskFilter renders the WHERE clause and args for a TaskFilter.
func buildTaskFilter(filter core.TaskFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.SchedulerID != nil {
		args = append(args, *filter.SchedulerID)
		clauses = append(clauses, fmt.Sprintf("scheduler_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// taskRow represents the database row structure for tasks. This struct
// matches the tasks table exactly, allowing pgx.RowToStructByName to work.
type taskRow struct {
	ID          string    `db:"id"`
	SchedulerID string    `db:"scheduler_id"`
	Type        string    `db:"type"`
	Hash        string    `db:"hash"`
	Priority    int64     `db:"priority"`
	Data        []byte    `db:"data"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	ModifiedAt  time.Time `db:"modified_at"`
}

// toDomainTask converts a taskRow to a model.Task, rebuilding the queue
// envelope from the flattened columns.
func (r *taskRow) toDomainTask() *model.Task {
	if r == nil {
		return nil
	}
	return &model.Task{
		ID:          r.ID,
		SchedulerID: r.SchedulerID,
		Type:        model.ItemType(r.Type),
		PItem: &model.PrioritizedItem{
			ID:       r.ID,
			ScoredAt: r.CreatedAt,
			Priority: r.Priority,
			Hash:     r.Hash,
			Data:     json.RawMessage(r.Data),
		},
		Status:     model.TaskStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		ModifiedAt: r.ModifiedAt,
	}
}

// rowToTask maps a pgx row to a model.Task using pgx v5 generics.
func rowToTask(row pgx.CollectableRow) (*model.Task, error) {
	dbRow, err := pgx.RowToStructByName[taskRow](row)
	if err != nil {
		return nil, fmt.Errorf("scan task row: %w", err)
	}
	return dbRow.toDomainTask(), nil
}

// scanTaskRow scans one tasks row from a database/sql row.
func scanTaskRow(row rowScanner) (*taskRow, error) {
	var dbRow taskRow
	err := row.Scan(
		&dbRow.ID,
		&dbRow.SchedulerID,
		&dbRow.Type,
		&dbRow.Hash,
		&dbRow.Priority,
		&dbRow.Data,
		&dbRow.Status,
		&dbRow.CreatedAt,
		&dbRow.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dbRow, nil
}
