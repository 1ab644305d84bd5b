package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/observability/metrics"
	"github.com/strixlab/patrol/internal/observability/statsd"
	"github.com/strixlab/patrol/internal/queue"
	"github.com/strixlab/patrol/internal/ranker"
)

// stopJoinTimeout caps how long stopping waits for one scheduler goroutine.
const stopJoinTimeout = 5 * time.Second

// defaultReconcileInterval is used when no interval is configured.
const defaultReconcileInterval = 3 * time.Minute

// managedScheduler is the supervisor's view of one running scheduler.
type managedScheduler interface {
	ID() string
	Organisation() model.Organisation
	Run(ctx context.Context) error
	Status(ctx context.Context) (*model.SchedulerStatus, error)
	Queue() *queue.PriorityQueue
	PopulateEnabled() bool
	SetPopulateEnabled(enabled bool)
	Push(ctx context.Context, item *model.PrioritizedItem) (*model.PrioritizedItem, error)
}

// SupervisorOptions groups the dependencies shared by every scheduler the
// supervisor starts.
type SupervisorOptions struct {
	Catalogue core.CatalogueService
	Inventory core.InventoryService
	BlobStore core.BlobStoreService
	Broker    core.Broker

	Tasks   core.TaskStore
	TasksTx core.TaskStoreTx
	Tx      core.TxRunner

	PQStore   core.PriorityQueueStore
	PQStoreTx core.PriorityQueueStoreTx

	TimeProvider data.TimeProvider
	Logger       *slog.Logger
	Metrics      statsd.Sink

	// ReconcileInterval is how often the running scheduler set is synced
	// against the catalogue's organisations.
	ReconcileInterval time.Duration

	PopulateInterval  time.Duration
	QueueMaxSize      int
	GracePeriod       time.Duration
	RandomObjectCount int
}

// schedulerWorker tracks one scheduler goroutine.
type schedulerWorker struct {
	scheduler managedScheduler
	cancel    context.CancelFunc
	done      chan struct{}
}

// Supervisor keeps one boefje and one normalizer scheduler running per
// organisation known to the catalogue, and exposes the running set to the
// control API.
type Supervisor struct {
	opts   SupervisorOptions
	logger *slog.Logger

	mu      sync.RWMutex
	workers map[string]*schedulerWorker
}

var _ core.SchedulerControl = (*Supervisor)(nil)

// NewSupervisor constructs a Supervisor. Schedulers are started by Run, not
// here.
func NewSupervisor(opts SupervisorOptions) *Supervisor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ReconcileInterval <= 0 {
		opts.ReconcileInterval = defaultReconcileInterval
	}

	return &Supervisor{
		opts:    opts,
		logger:  logger.With("component", "supervisor"),
		workers: make(map[string]*schedulerWorker),
	}
}

// Run reconciles the scheduler set immediately and then on every tick until
// the context ends, at which point all schedulers are stopped.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info("supervisor started", "reconcile_interval", s.opts.ReconcileInterval)

	if err := s.reconcile(ctx); err != nil {
		s.logger.Warn("initial reconcile failed", "error", err)
	}

	ticker := time.NewTicker(s.opts.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopAll()
			s.logger.Info("supervisor stopped")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.reconcile(ctx); err != nil {
				s.logger.Warn("reconcile failed", "error", err)
			}
		}
	}
}

// reconcile syncs the running scheduler set against the catalogue: new
// organisations get a scheduler pair, vanished organisations have theirs
// stopped. A failure leaves the current set running until the next tick.
func (s *Supervisor) reconcile(ctx context.Context) error {
	orgs, err := s.opts.Catalogue.ListOrganisations(ctx)
	if err != nil {
		return fmt.Errorf("list organisations: %w", err)
	}

	wanted := make(map[string]bool, len(orgs))
	for _, org := range orgs {
		wanted[org.ID] = true
	}

	for _, id := range s.schedulerIDs() {
		worker := s.worker(id)
		if worker == nil {
			continue
		}
		if !wanted[worker.scheduler.Organisation().ID] {
			s.logger.Info("organisation vanished, stopping scheduler", "scheduler_id", id)
			s.stopWorker(id)
		}
	}

	for _, org := range orgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.startOrganisation(ctx, org)
	}

	s.mu.RLock()
	running := len(s.workers)
	s.mu.RUnlock()
	metrics.EmitSchedulerCount(s.opts.Metrics, running)

	return nil
}

// startOrganisation ensures the organisation's scheduler pair is running.
// The plugin cache is flushed before the first start so the schedulers never
// begin on a stale snapshot; a failed flush skips the organisation until the
// next reconcile.
func (s *Supervisor) startOrganisation(ctx context.Context, org model.Organisation) {
	boefjeID := BoefjeSchedulerID(org.ID)
	normalizerID := NormalizerSchedulerID(org.ID)
	if s.worker(boefjeID) != nil && s.worker(normalizerID) != nil {
		return
	}

	if err := s.opts.Catalogue.FlushCaches(ctx, org.ID); err != nil {
		s.logger.Warn("cache flush failed, skipping organisation",
			"organisation_id", org.ID, "error", err)
		return
	}

	if s.worker(boefjeID) == nil {
		s.startWorker(ctx, s.newBoefjeScheduler(org))
	}
	if s.worker(normalizerID) == nil {
		s.startWorker(ctx, s.newNormalizerScheduler(org))
	}
}

func (s *Supervisor) newBoefjeScheduler(org model.Organisation) *BoefjeScheduler {
	return NewBoefjeScheduler(BoefjeSchedulerOptions{
		SchedulerOptions:  s.schedulerOptions(org),
		Catalogue:         s.opts.Catalogue,
		Inventory:         s.opts.Inventory,
		BlobStore:         s.opts.BlobStore,
		Broker:            s.opts.Broker,
		Ranker:            ranker.NewBoefjeRanker(s.opts.QueueMaxSize, s.opts.GracePeriod),
		PQStore:           s.opts.PQStore,
		PQStoreTx:         s.opts.PQStoreTx,
		QueueMaxSize:      s.opts.QueueMaxSize,
		GracePeriod:       s.opts.GracePeriod,
		RandomObjectCount: s.opts.RandomObjectCount,
	})
}

func (s *Supervisor) newNormalizerScheduler(org model.Organisation) *NormalizerScheduler {
	return NewNormalizerScheduler(NormalizerSchedulerOptions{
		SchedulerOptions: s.schedulerOptions(org),
		Catalogue:        s.opts.Catalogue,
		Broker:           s.opts.Broker,
		Ranker:           ranker.NewNormalizerRanker(),
		PQStore:          s.opts.PQStore,
		PQStoreTx:        s.opts.PQStoreTx,
		QueueMaxSize:     s.opts.QueueMaxSize,
	})
}

func (s *Supervisor) schedulerOptions(org model.Organisation) SchedulerOptions {
	return SchedulerOptions{
		Organisation:     org,
		Tasks:            s.opts.Tasks,
		TasksTx:          s.opts.TasksTx,
		Tx:               s.opts.Tx,
		TimeProvider:     s.opts.TimeProvider,
		Logger:           s.opts.Logger,
		Metrics:          s.opts.Metrics,
		PopulateInterval: s.opts.PopulateInterval,
	}
}

// startWorker launches the scheduler in its own goroutine and registers it.
func (s *Supervisor) startWorker(ctx context.Context, scheduler managedScheduler) {
	workerCtx, cancel := context.WithCancel(ctx)
	worker := &schedulerWorker{
		scheduler: scheduler,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.workers[scheduler.ID()] = worker
	s.mu.Unlock()

	go func() {
		defer close(worker.done)
		if err := scheduler.Run(workerCtx); err != nil {
			s.logger.Error("scheduler exited", "scheduler_id", scheduler.ID(), "error", err)
		}
	}()

	s.logger.Info("scheduler registered",
		"scheduler_id", scheduler.ID(), "organisation_id", scheduler.Organisation().ID)
}

// stopWorker cancels one scheduler and waits for its goroutine before
// removing it from the registry, so a replacement never runs concurrently
// with its predecessor.
func (s *Supervisor) stopWorker(id string) {
	s.mu.Lock()
	worker, ok := s.workers[id]
	s.mu.Unlock()
	if !ok {
		return
	}

	worker.cancel()
	select {
	case <-worker.done:
	case <-time.After(stopJoinTimeout):
		s.logger.Warn("scheduler did not stop in time", "scheduler_id", id)
	}

	s.mu.Lock()
	delete(s.workers, id)
	s.mu.Unlock()
}

func (s *Supervisor) stopAll() {
	for _, id := range s.schedulerIDs() {
		s.stopWorker(id)
	}
}

func (s *Supervisor) worker(id string) *schedulerWorker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workers[id]
}

// schedulerIDs returns the registered scheduler IDs in stable order.
func (s *Supervisor) schedulerIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// ListSchedulers returns a status snapshot of every running scheduler,
// sorted by ID. A scheduler whose snapshot fails is skipped.
func (s *Supervisor) ListSchedulers(ctx context.Context) []*model.SchedulerStatus {
	statuses := make([]*model.SchedulerStatus, 0)
	for _, id := range s.schedulerIDs() {
		worker := s.worker(id)
		if worker == nil {
			continue
		}
		status, err := worker.scheduler.Status(ctx)
		if err != nil {
			s.logger.Warn("scheduler status failed", "scheduler_id", id, "error", err)
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// GetScheduler returns the status of one running scheduler.
func (s *Supervisor) GetScheduler(ctx context.Context, id string) (*model.SchedulerStatus, error) {
	worker := s.worker(id)
	if worker == nil {
		return nil, apperrors.NotFoundf("no scheduler %s", id)
	}
	return worker.scheduler.Status(ctx)
}

// SetPopulateEnabled toggles one scheduler's populate loop and returns the
// resulting status.
func (s *Supervisor) SetPopulateEnabled(ctx context.Context, id string, enabled bool) (*model.SchedulerStatus, error) {
	worker := s.worker(id)
	if worker == nil {
		return nil, apperrors.NotFoundf("no scheduler %s", id)
	}
	worker.scheduler.SetPopulateEnabled(enabled)
	return worker.scheduler.Status(ctx)
}

// ListQueues returns a snapshot of every queue, sorted by ID.
func (s *Supervisor) ListQueues(ctx context.Context) []*model.QueueStatus {
	queues := make([]*model.QueueStatus, 0)
	for _, id := range s.schedulerIDs() {
		worker := s.worker(id)
		if worker == nil {
			continue
		}
		status, err := worker.scheduler.Queue().Status(ctx)
		if err != nil {
			s.logger.Warn("queue status failed", "queue_id", id, "error", err)
			continue
		}
		queues = append(queues, status)
	}
	return queues
}

// GetQueue returns the snapshot of one queue.
func (s *Supervisor) GetQueue(ctx context.Context, id string) (*model.QueueStatus, error) {
	worker := s.worker(id)
	if worker == nil {
		return nil, apperrors.NotFoundf("no queue %s", id)
	}
	return worker.scheduler.Queue().Status(ctx)
}

// PopQueue hands the queue's most urgent item to a runner and marks the
// item's audit task dispatched.
func (s *Supervisor) PopQueue(ctx context.Context, id string) (*model.PrioritizedItem, error) {
	worker := s.worker(id)
	if worker == nil {
		return nil, apperrors.NotFoundf("no queue %s", id)
	}

	item, err := worker.scheduler.Queue().Pop(ctx)
	if err != nil {
		return nil, err
	}

	s.markDispatched(ctx, item.ID)
	return item, nil
}

// markDispatched moves a popped item's task to dispatched. Best effort: the
// runner holds the item either way, so a failed update only logs.
func (s *Supervisor) markDispatched(ctx context.Context, taskID string) {
	task, err := s.opts.Tasks.GetByID(ctx, taskID)
	if err != nil {
		s.logger.Warn("dispatched task lookup failed", "task_id", taskID, "error", err)
		return
	}
	if task.Status.IsTerminal() {
		return
	}

	task.Status = model.TaskStatusDispatched
	if err := s.opts.Tasks.Update(ctx, task); err != nil {
		s.logger.Warn("dispatched task update failed", "task_id", taskID, "error", err)
	}
}

// PushQueue places an item on the queue on behalf of an API caller.
func (s *Supervisor) PushQueue(ctx context.Context, id string, item *model.PrioritizedItem) error {
	worker := s.worker(id)
	if worker == nil {
		return apperrors.NotFoundf("no queue %s", id)
	}
	if item == nil {
		return apperrors.ValidationField("item", "an item is required")
	}

	_, err := worker.scheduler.Push(ctx, item)
	return err
}
