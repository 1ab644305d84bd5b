package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

func runListQueues(cmdCtx *commandContext, args []string) error {
	opts, err := parseListQueuesFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	db, _, err := connectInfraWithOptions(&connectInfraOptions{
		Logger: cmdCtx.Logger,
		Config: &cmdCtx.Config,
		WantDB: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeInfra(db, nil); cerr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", cerr)
		}
	}()

	rows, err := fetchQueueSummaries(ctx, db, opts.SchedulerID)
	if err != nil {
		return err
	}

	return printQueueSummaries(os.Stdout, rows)
}

type queueSummaryRow struct {
	SchedulerID  string
	Size         int
	NextPriority int64
	OldestScored time.Time
}

// fetchQueueSummaries aggregates the live queue rows per scheduler. Each row
// reports the size, the priority Pop would serve next, and how long the
// oldest item has been waiting.
func fetchQueueSummaries(ctx context.Context, db *sql.DB, schedulerID string) ([]queueSummaryRow, error) {
	query := `
		SELECT scheduler_id, COUNT(*), MIN(priority), MIN(created_at)
		FROM items
	`
	args := []any{}
	if schedulerID != "" {
		query += ` WHERE scheduler_id = $1`
		args = append(args, schedulerID)
	}
	query += `
		GROUP BY scheduler_id
		ORDER BY scheduler_id
	`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query queue summaries: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var summaries []queueSummaryRow
	for rows.Next() {
		var row queueSummaryRow
		if err := rows.Scan(&row.SchedulerID, &row.Size, &row.NextPriority, &row.OldestScored); err != nil {
			return nil, fmt.Errorf("scan queue summary: %w", err)
		}
		summaries = append(summaries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue summaries: %w", err)
	}

	return summaries, nil
}

func printQueueSummaries(out io.Writer, rows []queueSummaryRow) error {
	if len(rows) == 0 {
		if err := writeln(out, "No queued items found."); err != nil {
			return fmt.Errorf("print empty queue notice: %w", err)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Scheduler\tSize\tNext Priority\tOldest Item"); err != nil {
		return fmt.Errorf("write queue summary header: %w", err)
	}
	for _, row := range rows {
		age := time.Since(row.OldestScored).Round(time.Second)
		if err := writef(w, "%s\t%d\t%d\t%s ago\n", row.SchedulerID, row.Size, row.NextPriority, age); err != nil {
			return fmt.Errorf("write queue summary row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush queue summary: %w", err)
	}
	return nil
}

func runRequeueFailed(cmdCtx *commandContext, args []string) error {
	opts, err := parseRequeueFlags(args)
	if err != nil {
		return err
	}
	if confirmErr := confirmAction(requeueConfirmOptions{opts}, "requeue failed tasks"); confirmErr != nil {
		return confirmErr
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	db, _, err := connectInfraWithOptions(&connectInfraOptions{
		Logger: cmdCtx.Logger,
		Config: &cmdCtx.Config,
		WantDB: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeInfra(db, nil); cerr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", cerr)
		}
	}()

	stats, err := requeueFailedTasks(&requeueRequest{
		Ctx:     ctx,
		DB:      db,
		Logger:  cmdCtx.Logger,
		Options: opts,
	})
	if err != nil {
		return err
	}

	return printRequeueStats(os.Stdout, opts, stats)
}

type requeueRequest struct {
	Ctx     context.Context
	DB      *sql.DB
	Logger  *slog.Logger
	Options requeueOptions
}

type requeueStats struct {
	totalFailed int
	examined    int
	requeued    int
	skipped     int
}

// requeueFailedTasks pushes the newest failed attempt per hash back onto its
// scheduler queue. A failed task is skipped when a newer task exists for the
// same hash: either a retry is already in flight or a later attempt settled
// the work.
func requeueFailedTasks(req *requeueRequest) (requeueStats, error) {
	tasks := data.NewTaskStore(req.DB)
	queues := data.NewPQStore(req.DB)
	runner := data.NewSQLTxRunner(req.DB)

	status := model.TaskStatusFailed
	filter := core.TaskFilter{Status: &status, Limit: req.Options.Limit}
	if req.Options.SchedulerID != "" {
		filter.SchedulerID = &req.Options.SchedulerID
	}

	failed, total, err := tasks.List(req.Ctx, filter)
	if err != nil {
		return requeueStats{}, fmt.Errorf("list failed tasks: %w", err)
	}

	stats := requeueStats{totalFailed: total}
	for _, task := range failed {
		stats.examined++

		if task.PItem == nil || task.PItem.Hash == "" {
			stats.skipped++
			continue
		}

		latest, latestErr := tasks.GetLatestByHash(req.Ctx, task.PItem.Hash)
		if latestErr != nil {
			return stats, fmt.Errorf("latest task for hash %s: %w", task.PItem.Hash, latestErr)
		}
		if latest != nil && latest.ID != task.ID {
			stats.skipped++
			continue
		}

		if req.Options.DryRun {
			req.Logger.Info("dry-run would requeue",
				"task_id", task.ID, "scheduler_id", task.SchedulerID, "hash", task.PItem.Hash)
			stats.requeued++
			continue
		}

		if requeueErr := requeueTask(req.Ctx, runner, queues, tasks, task); requeueErr != nil {
			if apperrors.IsConflict(requeueErr) {
				// The hash landed back on the queue through another path.
				stats.skipped++
				continue
			}
			return stats, requeueErr
		}

		req.Logger.Info("requeued failed task",
			"task_id", task.ID, "scheduler_id", task.SchedulerID, "hash", task.PItem.Hash)
		stats.requeued++
	}

	return stats, nil
}

// requeueTask writes a fresh queue item and its audit row in one
// transaction, mirroring the scheduler's own push path.
func requeueTask(
	ctx context.Context,
	runner *data.SQLTxRunner,
	queues *data.PQStore,
	tasks *data.TaskStore,
	task *model.Task,
) error {
	if task == nil || task.PItem == nil {
		return errors.New("task has no prioritized item")
	}

	item := model.NewPrioritizedItem(task.PItem.Priority, task.PItem.Hash, task.PItem.Data)
	return runner.InTx(ctx, func(tx *sql.Tx) error {
		if err := queues.PushInTx(ctx, tx, task.SchedulerID, item); err != nil {
			return err
		}
		audit := model.NewTask(task.SchedulerID, task.Type, item, time.Now().UTC())
		return tasks.AddInTx(ctx, tx, audit)
	})
}

func printRequeueStats(out io.Writer, opts requeueOptions, stats requeueStats) error {
	if stats.examined == 0 {
		if err := writeln(out, "No failed tasks found."); err != nil {
			return fmt.Errorf("print requeue empty notice: %w", err)
		}
		return nil
	}

	if opts.DryRun {
		if err := writef(out, "Dry-run: would requeue %d/%d failed tasks (skipped %d)\n",
			stats.requeued, stats.examined, stats.skipped); err != nil {
			return fmt.Errorf("print requeue dry run: %w", err)
		}
		return nil
	}

	if err := writef(out, "Examined %d of %d failed tasks\n", stats.examined, stats.totalFailed); err != nil {
		return fmt.Errorf("print requeue examined: %w", err)
	}
	if err := writef(out, "Requeued %d, skipped %d\n", stats.requeued, stats.skipped); err != nil {
		return fmt.Errorf("print requeue summary: %w", err)
	}
	return nil
}
