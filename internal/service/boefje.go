package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/queue"
)

const (
	defaultGracePeriod       = 24 * time.Hour
	defaultRandomObjectCount = 10
)

// BoefjeSchedulerID derives the scheduler (and queue) ID for a tenant's
// boefje scheduler.
func BoefjeSchedulerID(orgID string) string { return "boefje-" + orgID }

// mutationsQueue names the broker queue carrying the tenant's scan profile
// changes.
func mutationsQueue(orgID string) string { return orgID + "__scan_profile_mutations" }

// BoefjeSchedulerOptions groups dependencies for a BoefjeScheduler.
type BoefjeSchedulerOptions struct {
	SchedulerOptions

	Catalogue core.CatalogueService
	Inventory core.InventoryService
	BlobStore core.BlobStoreService
	Broker    core.Broker
	Ranker    core.BoefjeRanker

	PQStore   core.PriorityQueueStore
	PQStoreTx core.PriorityQueueStoreTx

	// QueueMaxSize caps the queue; zero means unbounded.
	QueueMaxSize int

	// GracePeriod is the minimum time between two runs of the same boefje
	// against the same object.
	GracePeriod time.Duration

	// RandomObjectCount is how many objects one rescheduling pass samples.
	RandomObjectCount int
}

// BoefjeScheduler fills one tenant's boefje queue. Each populate cycle
// gathers candidate (boefje, object) pairs from three sources — scan profile
// mutations, newly enabled boefjes, and a random rescheduling sample — and
// pushes the ones that pass the admissibility checks.
type BoefjeScheduler struct {
	*Scheduler

	catalogue core.CatalogueService
	inventory core.InventoryService
	blobStore core.BlobStoreService
	broker    core.Broker
	ranker    core.BoefjeRanker

	gracePeriod       time.Duration
	randomObjectCount int
}

// NewBoefjeScheduler constructs a BoefjeScheduler with its own priority
// queue. Boefje queues permit priority updates so rescheduling can move an
// already-queued task forward, but never payload replacement.
func NewBoefjeScheduler(opts BoefjeSchedulerOptions) *BoefjeScheduler {
	if opts.ID == "" {
		opts.ID = BoefjeSchedulerID(opts.Organisation.ID)
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = defaultGracePeriod
	}
	if opts.RandomObjectCount <= 0 {
		opts.RandomObjectCount = defaultRandomObjectCount
	}

	q := queue.NewPriorityQueue(queue.PriorityQueueOptions{
		ID:                   opts.ID,
		MaxSize:              opts.QueueMaxSize,
		ItemType:             model.ItemTypeBoefje,
		AllowPriorityUpdates: true,
		Store:                opts.PQStore,
		TxStore:              opts.PQStoreTx,
	})

	s := &BoefjeScheduler{
		catalogue:         opts.Catalogue,
		inventory:         opts.Inventory,
		blobStore:         opts.BlobStore,
		broker:            opts.Broker,
		ranker:            opts.Ranker,
		gracePeriod:       opts.GracePeriod,
		randomObjectCount: opts.RandomObjectCount,
	}
	s.Scheduler = newScheduler(opts.SchedulerOptions, q, s.populateQueue)
	return s
}

// populateQueue runs the three candidate sources in order. A full queue ends
// the cycle without error; the remaining candidates surface again next
// cycle.
func (s *BoefjeScheduler) populateQueue(ctx context.Context, now time.Time) (int, error) {
	sources := []populateFunc{
		s.processMutations,
		s.processNewBoefjes,
		s.processRescheduling,
	}

	pushed := 0
	for _, source := range sources {
		n, err := source(ctx, now)
		pushed += n
		switch {
		case err == nil:
		case apperrors.IsQueueFull(err):
			s.logger.Info("queue full, deferring remaining candidates", "pushed", pushed)
			return pushed, nil
		default:
			return pushed, err
		}
	}
	return pushed, nil
}

// processMutations drains the tenant's scan profile mutation queue. Every
// create or update yields candidates for the boefjes consuming the object's
// type; deletes only acknowledge.
func (s *BoefjeScheduler) processMutations(ctx context.Context, now time.Time) (int, error) {
	queueName := mutationsQueue(s.organisation.ID)

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
			s.logger.Warn("mutation queue unavailable", "queue", queueName, "error", err)
			return pushed, nil
		}
		if delivery == nil {
			return pushed, nil
		}

		n, err := s.handleMutation(ctx, now, delivery)
		pushed += n
		if err != nil {
			return pushed, err
		}
	}
}

func (s *BoefjeScheduler) handleMutation(ctx context.Context, now time.Time, delivery core.Delivery) (int, error) {
	var mutation model.ScanProfileMutation
	if err := json.Unmarshal(delivery.Body(), &mutation); err != nil {
		s.logger.Warn("dropping undecodable scan profile mutation", "error", err)
		s.nack(delivery, false)
		return 0, nil
	}

	if mutation.Operation == model.MutationOperationDelete || mutation.Value == nil {
		s.ack(delivery)
		return 0, nil
	}

	ooi := *mutation.Value
	boefjes, err := s.catalogue.GetBoefjesByOOIType(ctx, s.organisation.ID, ooi.ObjectType)
	if err != nil {
		s.logger.Warn("catalogue lookup failed for mutation", "ooi", ooi.PrimaryKey, "error", err)
		s.nack(delivery, true)
		return 0, nil
	}

	pushed, err := s.scheduleForOOI(ctx, now, ooi, boefjes)
	if err != nil {
		// The cycle is ending early; leave the message for the next one.
		s.nack(delivery, true)
		return pushed, err
	}

	s.ack(delivery)
	return pushed, nil
}

// processNewBoefjes fans recently enabled boefjes out over the objects they
// consume.
func (s *BoefjeScheduler) processNewBoefjes(ctx context.Context, now time.Time) (int, error) {
	plugins, err := s.catalogue.GetNewBoefjesByOrg(ctx, s.organisation.ID)
	if err != nil {
		s.logger.Warn("new boefje lookup failed", "error", err)
		return 0, nil
	}

	pushed := 0
	for _, plugin := range plugins {
		if len(plugin.Consumes) == 0 {
			continue
		}

		oois, err := s.inventory.GetObjectsByTypes(ctx, s.organisation.ID, plugin.Consumes)
		if err != nil {
			s.logger.Warn("inventory lookup failed for new boefje", "boefje_id", plugin.ID, "error", err)
			continue
		}

		for _, ooi := range oois {
			n, err := s.scheduleForOOI(ctx, now, ooi, []model.Plugin{plugin})
			pushed += n
			if err != nil {
				return pushed, err
			}
		}
	}
	return pushed, nil
}

// processRescheduling samples objects whose last check predates the grace
// period and re-evaluates every boefje consuming them. Objects that vanished
// from the inventory since the sample are skipped.
func (s *BoefjeScheduler) processRescheduling(ctx context.Context, now time.Time) (int, error) {
	oois, err := s.inventory.GetRandomObjects(ctx, core.RandomObjectsParams{
		OrganisationID: s.organisation.ID,
		Amount:         s.randomObjectCount,
		MaxCheckedAt:   now.Add(-s.gracePeriod),
	})
	if err != nil {
		s.logger.Warn("random object lookup failed", "error", err)
		return 0, nil
	}

	pushed := 0
	for _, candidate := range oois {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}

		ooi, err := s.inventory.GetObject(ctx, s.organisation.ID, candidate.PrimaryKey)
		if err != nil {
			if apperrors.IsNotFound(err) {
				s.logger.Info("skipping vanished object", "ooi", candidate.PrimaryKey)
			} else {
				s.logger.Warn("object lookup failed", "ooi", candidate.PrimaryKey, "error", err)
			}
			continue
		}
		if ooi.ScanLevel() < 0 {
			continue
		}

		boefjes, err := s.catalogue.GetBoefjesByOOIType(ctx, s.organisation.ID, ooi.ObjectType)
		if err != nil {
			s.logger.Warn("catalogue lookup failed", "ooi", ooi.PrimaryKey, "error", err)
			continue
		}

		n, err := s.scheduleForOOI(ctx, now, *ooi, boefjes)
		pushed += n
		if err != nil {
			return pushed, err
		}
	}
	return pushed, nil
}

// scheduleForOOI gates every (boefje, ooi) pair and pushes the admissible
// ones.
func (s *BoefjeScheduler) scheduleForOOI(ctx context.Context, now time.Time, ooi model.OOI, boefjes []model.Plugin) (int, error) {
	pushed := 0
	for _, plugin := range boefjes {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}

		task, score, ok := s.admit(ctx, now, plugin, ooi)
		if !ok {
			continue
		}

		accepted, err := s.pushBoefjeTask(ctx, task, score)
		if err != nil {
			return pushed, err
		}
		if accepted {
			pushed++
		}
	}
	return pushed, nil
}

// admit runs the admissibility checks for one (boefje, ooi) pair and returns
// the task and its score when all of them pass. External lookup failures
// reject the pair and are logged; the rest of the cycle continues.
func (s *BoefjeScheduler) admit(ctx context.Context, now time.Time, plugin model.Plugin, ooi model.OOI) (*model.BoefjeTask, int64, bool) {
	logger := s.logger.With("boefje_id", plugin.ID, "ooi", ooi.PrimaryKey)

	if !plugin.Enabled {
		return nil, 0, false
	}

	level := ooi.ScanLevel()
	if level < 0 {
		logger.Debug("object has no scan profile")
		return nil, 0, false
	}
	if level < plugin.ScanLevel {
		logger.Debug("scan level too low", "level", level, "required", plugin.ScanLevel)
		return nil, 0, false
	}

	task := model.NewBoefjeTask(plugin.AsBoefje(), ooi.PrimaryKey, s.organisation.ID)
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

	lastRun, err := s.blobStore.GetLastRun(ctx, core.LastRunParams{
		BoefjeID:       plugin.ID,
		InputOOI:       ooi.PrimaryKey,
		OrganisationID: s.organisation.ID,
	})
	if err != nil {
		logger.Warn("blob store lookup failed", "error", err)
		return nil, 0, false
	}
	if lastRun != nil {
		if lastRun.EndedAt == nil {
			logger.Debug("previous run still in flight")
			return nil, 0, false
		}
		if now.Sub(*lastRun.EndedAt) < s.gracePeriod {
			logger.Debug("grace period has not passed", "ended_at", lastRun.EndedAt)
			return nil, 0, false
		}
	}

	score := s.ranker.Rank(ctx, lastRun, now)
	if score < 0 {
		return nil, 0, false
	}
	return task, score, true
}

// pushBoefjeTask wraps the task in a queue envelope and pushes it.
func (s *BoefjeScheduler) pushBoefjeTask(ctx context.Context, task *model.BoefjeTask, score int64) (bool, error) {
	payload, err := task.MarshalData()
	if err != nil {
		s.logger.Warn("encode boefje task failed", "boefje_id", task.Boefje.ID, "error", err)
		return false, nil
	}
	return s.pushEnvelope(ctx, model.NewPrioritizedItem(score, task.Hash(), payload))
}
