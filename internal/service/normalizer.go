package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/queue"
)

// NormalizerSchedulerID derives the scheduler (and queue) ID for a tenant's
// normalizer scheduler.
func NormalizerSchedulerID(orgID string) string { return "normalizer-" + orgID }

// rawFileQueue names the broker queue announcing stored raw files.
func rawFileQueue(orgID string) string { return orgID + "__raw_file_received" }

// normalizerMetaQueue names the broker queue carrying normalizer run
// reports.
func normalizerMetaQueue(orgID string) string { return orgID + "__normalizer_meta_received" }

// NormalizerSchedulerOptions groups dependencies for a NormalizerScheduler.
type NormalizerSchedulerOptions struct {
	SchedulerOptions

	Catalogue core.CatalogueService
	Broker    core.Broker
	Ranker    core.NormalizerRanker

	PQStore   core.PriorityQueueStore
	PQStoreTx core.PriorityQueueStoreTx

	// QueueMaxSize caps the queue; zero means unbounded.
	QueueMaxSize int
}

// NormalizerScheduler fills one tenant's normalizer queue. Each populate
// cycle drains the raw-file events the runners publish and fans every file
// out over the enabled normalizers consuming its mime types. A second loop
// drains normalizer run reports to close out finished tasks.
type NormalizerScheduler struct {
	*Scheduler

	catalogue core.CatalogueService
	broker    core.Broker
	ranker    core.NormalizerRanker
}

// NewNormalizerScheduler constructs a NormalizerScheduler with its own
// priority queue.
func NewNormalizerScheduler(opts NormalizerSchedulerOptions) *NormalizerScheduler {
	if opts.ID == "" {
		opts.ID = NormalizerSchedulerID(opts.Organisation.ID)
	}

	q := queue.NewPriorityQueue(queue.PriorityQueueOptions{
		ID:                   opts.ID,
		MaxSize:              opts.QueueMaxSize,
		ItemType:             model.ItemTypeNormalizer,
		AllowPriorityUpdates: true,
		Store:                opts.PQStore,
		TxStore:              opts.PQStoreTx,
	})

	s := &NormalizerScheduler{
		catalogue: opts.Catalogue,
		broker:    opts.Broker,
		ranker:    opts.Ranker,
	}
	s.Scheduler = newScheduler(opts.SchedulerOptions, q, s.populateQueue)
	return s
}

// Run drives the populate loop and, alongside it, the run-report loop. The
// report loop keeps running when populating is toggled off: finished tasks
// are closed out either way.
func (s *NormalizerScheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Scheduler.Run(ctx) })
	g.Go(func() error { return s.runReportLoop(ctx) })
	return g.Wait()
}

// populateQueue drains the tenant's raw-file queue, closing out the boefje
// task behind each file and fanning the file out over its normalizers.
func (s *NormalizerScheduler) populateQueue(ctx context.Context, now time.Time) (int, error) {
	queueName := rawFileQueue(s.organisation.ID)

	pushed := 0
	for {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}

		delivery, err := s.broker.Get(ctx, queueName)
		if err != nil {
			if ctx.Err() != nil {
				return pushed, ctx.Err()
			}
			s.logger.Warn("raw file queue unavailable", "queue", queueName, "error", err)
			return pushed, nil
		}
		if delivery == nil {
			return pushed, nil
		}

		n, err := s.handleRawFile(ctx, delivery)
		pushed += n
		switch {
		case err == nil:
		case apperrors.IsQueueFull(err):
			s.logger.Info("queue full, deferring remaining raw files", "pushed", pushed)
			return pushed, nil
		default:
			return pushed, err
		}
	}
}

func (s *NormalizerScheduler) handleRawFile(ctx context.Context, delivery core.Delivery) (int, error) {
	var event model.RawDataReceivedEvent
	if err := json.Unmarshal(delivery.Body(), &event); err != nil {
		s.logger.Warn("dropping undecodable raw file event", "error", err)
		s.nack(delivery, false)
		return 0, nil
	}

	failed := event.RawData.HasErrorMimeType()
	s.closeBoefjeTask(ctx, event.RawData.BoefjeMeta, failed)

	if failed {
		// A crashed boefje run leaves nothing to normalize.
		s.ack(delivery)
		return 0, nil
	}

	pushed, err := s.fanOut(ctx, event)
	if err != nil {
		// The cycle is ending early; leave the event for the next one.
		s.nack(delivery, true)
		return pushed, err
	}

	s.ack(delivery)
	return pushed, nil
}

// closeBoefjeTask marks the boefje task that produced a raw file as
// finished. The raw file is the first signal the scheduler gets about the
// run's outcome; an error mime type means the run crashed.
func (s *NormalizerScheduler) closeBoefjeTask(ctx context.Context, meta model.BoefjeMeta, failed bool) {
	hash := model.BoefjeTask{
		Boefje:       meta.Boefje,
		InputOOI:     meta.InputOOI,
		Organization: meta.Organization,
	}.Hash()

	task, err := s.tasks.GetLatestByHash(ctx, hash)
	if err != nil {
		s.logger.Warn("boefje task lookup failed", "hash", hash, "error", err)
		return
	}
	if task == nil || task.Status.IsTerminal() {
		return
	}

	task.Status = model.TaskStatusCompleted
	if failed {
		task.Status = model.TaskStatusFailed
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Warn("boefje task update failed", "task_id", task.ID, "error", err)
	}
}

// fanOut pushes one normalizer task per enabled normalizer consuming any of
// the raw file's mime types. A normalizer consuming several of them still
// gets a single task.
func (s *NormalizerScheduler) fanOut(ctx context.Context, event model.RawDataReceivedEvent) (int, error) {
	seen := make(map[string]bool)

	pushed := 0
	for _, mime := range event.RawData.MimeTypes {
		normalizers, err := s.catalogue.GetNormalizersByMimeType(ctx, s.organisation.ID, mime.Value)
		if err != nil {
			s.logger.Warn("normalizer lookup failed", "mime_type", mime.Value, "error", err)
			continue
		}

		for _, plugin := range normalizers {
			if err := ctx.Err(); err != nil {
				return pushed, err
			}
			if seen[plugin.ID] {
				continue
			}
			seen[plugin.ID] = true

			task, score, ok := s.admit(ctx, plugin, event)
			if !ok {
				continue
			}

			accepted, err := s.pushNormalizerTask(ctx, task, score)
			if err != nil {
				return pushed, err
			}
			if accepted {
				pushed++
			}
		}
	}
	return pushed, nil
}

// admit runs the admissibility checks for one normalizer against one raw
// file. Tasks rank by event creation time, so older files pop first.
func (s *NormalizerScheduler) admit(ctx context.Context, plugin model.Plugin, event model.RawDataReceivedEvent) (*model.NormalizerTask, int64, bool) {
	logger := s.logger.With("normalizer_id", plugin.ID, "raw_data_id", event.RawData.ID)

	if !plugin.Enabled {
		return nil, 0, false
	}

	task := model.NewNormalizerTask(plugin.AsNormalizer(), event.RawData.BoefjeMeta)
	hash := task.Hash()

	onQueue, err := s.queue.IsItemOnQueue(ctx, hash)
	if err != nil {
		logger.Warn("queue lookup failed", "error", err)
		return nil, 0, false
	}
	if onQueue {
		logger.Debug("task already on queue", "hash", hash)
		return nil, 0, false
	}

	latest, err := s.tasks.GetLatestByHash(ctx, hash)
	if err != nil {
		logger.Warn("task lookup failed", "error", err)
		return nil, 0, false
	}
	if latest != nil && !latest.Status.IsTerminal() {
		logger.Debug("previous task still in flight", "status", latest.Status)
		return nil, 0, false
	}

	return task, s.ranker.Rank(ctx, event.CreatedAt), true
}

// pushNormalizerTask wraps the task in a queue envelope and pushes it.
func (s *NormalizerScheduler) pushNormalizerTask(ctx context.Context, task *model.NormalizerTask, score int64) (bool, error) {
	payload, err := task.MarshalData()
	if err != nil {
		s.logger.Warn("encode normalizer task failed", "normalizer_id", task.Normalizer.ID, "error", err)
		return false, nil
	}
	return s.pushEnvelope(ctx, model.NewPrioritizedItem(score, task.Hash(), payload))
}

// runReportLoop drains normalizer run reports on the populate interval.
func (s *NormalizerScheduler) runReportLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.processRunReports(ctx)

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			s.processRunReports(ctx)
		}
	}
}

// processRunReports drains the tenant's normalizer-meta queue.
func (s *NormalizerScheduler) processRunReports(ctx context.Context) {
	queueName := normalizerMetaQueue(s.organisation.ID)

	for {
		if ctx.Err() != nil {
			return
		}

		delivery, err := s.broker.Get(ctx, queueName)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("run report queue unavailable", "queue", queueName, "error", err)
			return
		}
		if delivery == nil {
			return
		}

		s.handleRunReport(ctx, delivery)
	}
}

func (s *NormalizerScheduler) handleRunReport(ctx context.Context, delivery core.Delivery) {
	var event model.NormalizerMetaReceivedEvent
	if err := json.Unmarshal(delivery.Body(), &event); err != nil {
		s.logger.Warn("dropping undecodable run report", "error", err)
		s.nack(delivery, false)
		return
	}

	if err := s.completeTask(ctx, event.NormalizerMeta); err != nil {
		s.logger.Warn("run report not applied", "normalizer_meta_id", event.NormalizerMeta.ID, "error", err)
		s.nack(delivery, true)
		return
	}
	s.ack(delivery)
}

// completeTask marks the normalizer task a run report refers to as
// completed. Runners reuse the queued task's ID as the meta ID; reports
// that don't carry one fall back to the identity hash.
func (s *NormalizerScheduler) completeTask(ctx context.Context, meta model.NormalizerMeta) error {
	var task *model.Task

	if meta.ID != "" {
		found, err := s.tasks.GetByID(ctx, meta.ID)
		if err != nil && !apperrors.IsNotFound(err) {
			return err
		}
		task = found
	}

	if task == nil {
		hash := model.NormalizerTask{
			Normalizer: meta.Normalizer,
			BoefjeMeta: meta.RawData.BoefjeMeta,
		}.Hash()

		found, err := s.tasks.GetLatestByHash(ctx, hash)
		if err != nil {
			return err
		}
		task = found
	}

	if task == nil {
		s.logger.Warn("run report for unknown task", "normalizer_meta_id", meta.ID)
		return nil
	}
	if task.Status.IsTerminal() {
		return nil
	}

	task.Status = model.TaskStatusCompleted
	return s.tasks.Update(ctx, task)
}
