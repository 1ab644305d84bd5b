package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data"
	"github.com/strixlab/patrol/internal/domain/model"
)

func runListTasks(cmdCtx *commandContext, args []string) error {
	opts, err := parseListTasksFlags(args)
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

	filter := core.TaskFilter{Limit: opts.Limit, Offset: opts.Offset}
	if opts.SchedulerID != "" {
		filter.SchedulerID = &opts.SchedulerID
	}
	if opts.Status != "" {
		status := model.TaskStatus(opts.Status)
		filter.Status = &status
	}

	tasks, total, err := data.NewTaskStore(db).List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	return printTaskRows(os.Stdout, tasks, total, opts)
}

func printTaskRows(out io.Writer, tasks []*model.Task, total int, opts listTasksOptions) error {
	if len(tasks) == 0 {
		if err := writeln(out, "No tasks found."); err != nil {
			return fmt.Errorf("print empty task notice: %w", err)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tScheduler\tType\tStatus\tHash\tCreated"); err != nil {
		return fmt.Errorf("write task header: %w", err)
	}
	for _, task := range tasks {
		hash := ""
		if task.PItem != nil {
			hash = shortHash(task.PItem.Hash)
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.SchedulerID,
			task.Type,
			task.Status,
			hash,
			task.CreatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("write task row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush task rows: %w", err)
	}

	if err := writef(out, "\nShowing %d of %d tasks (offset %d)\n", len(tasks), total, opts.Offset); err != nil {
		return fmt.Errorf("print task totals: %w", err)
	}
	return nil
}

func shortHash(hash string) string {
	const width = 12
	if len(hash) <= width {
		return hash
	}
	return hash[:width]
}
