// Package service implements the scheduler runtime: one priority queue per
// scheduler, filled by a populate loop and drained through the control API.
// A supervisor keeps a boefje/normalizer scheduler pair alive per
// organisation.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/observability/metrics"
	"github.com/strixlab/patrol/internal/observability/statsd"
	"github.com/strixlab/patrol/internal/queue"
)

// backpressureDelay is how long a populate push waits before rechecking a
// full queue. Runners drain continuously, so one short wait usually frees a
// slot.
const backpressureDelay = time.Second

// populateFunc is one populate cycle of a concrete scheduler. It returns the
// number of items pushed.
type populateFunc func(ctx context.Context, now time.Time) (int, error)

// SchedulerOptions groups the runtime dependencies shared by every
// scheduler.
type SchedulerOptions struct {
	ID           string
	Organisation model.Organisation

	Tasks   core.TaskStore
	TasksTx core.TaskStoreTx
	Tx      core.TxRunner

	TimeProvider data.TimeProvider
	Logger       *slog.Logger
	Metrics      statsd.Sink

	// PopulateInterval is the delay between populate cycles.
	PopulateInterval time.Duration

	// PopulateDisabled starts the scheduler with its populate loop off.
	// The control API can toggle it at runtime either way.
	PopulateDisabled bool
}

// Scheduler is the runtime embedded by the concrete schedulers: the populate
// ticker, the transactional push path and the snapshot accessors backing the
// control API.
type Scheduler struct {
	id           string
	organisation model.Organisation
	queue        *queue.PriorityQueue
	tasks        core.TaskStore
	tasksTx      core.TaskStoreTx
	tx           core.TxRunner
	clock        data.TimeProvider
	logger       *slog.Logger
	metrics      statsd.Sink
	interval     time.Duration
	populate     populateFunc

	populateEnabled atomic.Bool
	lastActivity    atomic.Pointer[time.Time]
}

// newScheduler wires the shared runtime. The concrete scheduler owns the
// queue and the populate strategy.
func newScheduler(opts SchedulerOptions, q *queue.PriorityQueue, populate populateFunc) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	interval := opts.PopulateInterval
	if interval <= 0 {
		interval = time.Minute
	}

	s := &Scheduler{
		id:           opts.ID,
		organisation: opts.Organisation,
		queue:        q,
		tasks:        opts.Tasks,
		tasksTx:      opts.TasksTx,
		tx:           opts.Tx,
		clock:        clock,
		logger:       logger.With("scheduler_id", opts.ID),
		metrics:      opts.Metrics,
		interval:     interval,
		populate:     populate,
	}
	s.populateEnabled.Store(!opts.PopulateDisabled)
	return s
}

// ID returns the scheduler identifier, which doubles as its queue ID.
func (s *Scheduler) ID() string { return s.id }

// Organisation returns the tenant this scheduler works for.
func (s *Scheduler) Organisation() model.Organisation { return s.organisation }

// Queue returns the scheduler's priority queue.
func (s *Scheduler) Queue() *queue.PriorityQueue { return s.queue }

// PopulateEnabled reports whether the populate loop is currently filling the
// queue.
func (s *Scheduler) PopulateEnabled() bool { return s.populateEnabled.Load() }

// SetPopulateEnabled toggles the populate loop. Pops and manual pushes keep
// working either way.
func (s *Scheduler) SetPopulateEnabled(enabled bool) {
	if s.populateEnabled.Swap(enabled) != enabled {
		s.logger.Info("populate toggled", "enabled", enabled)
	}
}

// LastActivity returns when the scheduler last accepted an item, or nil.
func (s *Scheduler) LastActivity() *time.Time { return s.lastActivity.Load() }

// Status returns the scheduler's control-API snapshot.
func (s *Scheduler) Status(ctx context.Context) (*model.SchedulerStatus, error) {
	qs, err := s.queue.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &model.SchedulerStatus{
		ID:              s.id,
		Enabled:         true,
		PopulateEnabled: s.populateEnabled.Load(),
		PriorityQueue:   *qs,
		LastActivity:    s.lastActivity.Load(),
	}, nil
}

// Run drives the populate loop until the context ends. Cycle errors are
// logged and the loop keeps going; only cancellation stops it.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First cycle right away so a fresh tenant gets work before the first
	// tick.
	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle executes one populate cycle and emits its metrics.
func (s *Scheduler) runCycle(ctx context.Context) {
	if s.populate == nil || !s.populateEnabled.Load() {
		return
	}

	start := time.Now()
	pushed, err := s.populate(ctx, s.clock.Now())
	elapsed := time.Since(start)

	s.emitCycleMetrics(ctx, pushed, elapsed, err)

	switch {
	case errors.Is(err, context.Canceled):
		// Shutdown mid-cycle; Run's next select returns.
	case err != nil:
		s.logger.Error("populate cycle failed", "error", err)
	case pushed > 0:
		s.logger.Info("populate cycle finished", "pushed", pushed, "elapsed", elapsed)
	}
}

func (s *Scheduler) emitCycleMetrics(ctx context.Context, pushed int, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}

	result := metrics.ResultNoop
	switch {
	case err != nil:
		result = metrics.ResultError
	case pushed > 0:
		result = metrics.ResultSuccess
	}

	size, sizeErr := s.queue.Size(ctx)
	if sizeErr != nil {
		size = -1
	}

	metrics.EmitPopulateCycle(s.metrics, metrics.CycleMetric{
		SchedulerID: s.id,
		Result:      result,
		Pushed:      pushed,
		QueueSize:   size,
		Duration:    elapsed,
		Err:         err,
	})
}

// Push runs the shared push path once: queue write plus audit-task write in
// one transaction. Manual API pushes land here directly.
func (s *Scheduler) Push(ctx context.Context, item *model.PrioritizedItem) (*model.PrioritizedItem, error) {
	prevID := ""
	if item != nil {
		prevID = item.ID
	}

	var stored *model.PrioritizedItem
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		pushed, pushErr := s.queue.PushInTx(ctx, tx, item)
		if pushErr != nil {
			return pushErr
		}

		now := s.clock.Now()
		task := model.NewTask(s.id, s.queue.ItemType(), pushed, now)
		if pushed.ID != prevID {
			// The queue kept the row that was already there, so the audit
			// row with that ID exists too; refresh it instead of inserting
			// a duplicate.
			if updateErr := s.tasksTx.UpdateInTx(ctx, tx, task); updateErr != nil {
				return updateErr
			}
		} else if addErr := s.tasksTx.AddInTx(ctx, tx, task); addErr != nil {
			return addErr
		}

		stored = pushed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordPush()
	return stored, nil
}

// pushWithBackPressure pushes an item, waiting once for a slot when the
// queue is full. Populate cycles use this so a full queue slows them down
// instead of shedding work.
func (s *Scheduler) pushWithBackPressure(ctx context.Context, item *model.PrioritizedItem) (*model.PrioritizedItem, error) {
	stored, err := s.Push(ctx, item)
	if err == nil || !apperrors.IsQueueFull(err) {
		return stored, err
	}

	if sleepErr := sleepCtx(ctx, backpressureDelay); sleepErr != nil {
		return nil, sleepErr
	}
	return s.Push(ctx, item)
}

// pushEnvelope pushes one task envelope from a populate cycle. The bool
// reports acceptance. Racing pushes for the same hash are skipped quietly;
// only cycle-ending failures (context, persistently full queue) return an
// error.
func (s *Scheduler) pushEnvelope(ctx context.Context, item *model.PrioritizedItem) (bool, error) {
	if _, err := s.pushWithBackPressure(ctx, item); err != nil {
		switch {
		case apperrors.IsQueueFull(err):
			return false, err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return false, err
		case apperrors.IsNotAllowed(err) || apperrors.IsConflict(err):
			s.logger.Debug("task already queued", "hash", item.Hash)
			return false, nil
		default:
			s.logger.Warn("push failed", "hash", item.Hash, "error", err)
			return false, nil
		}
	}
	return true, nil
}

// recordPush stamps the activity marker and counts the push.
func (s *Scheduler) recordPush() {
	now := s.clock.Now()
	s.lastActivity.Store(&now)
	metrics.EmitPush(s.metrics, s.id, string(s.queue.ItemType()))
}

// ack acknowledges a broker delivery, logging a failed ack instead of
// surfacing it. The message was already handled at that point.
func (s *Scheduler) ack(d core.Delivery) {
	if err := d.Ack(); err != nil {
		s.logger.Warn("ack failed", "error", err)
	}
}

// nack returns a delivery to the broker. With requeue false the message is
// dropped.
func (s *Scheduler) nack(d core.Delivery, requeue bool) {
	if err := d.Nack(requeue); err != nil {
		s.logger.Warn("nack failed", "error", err)
	}
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
