package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/mocks"
	"github.com/strixlab/patrol/internal/ranker"
	"github.com/strixlab/patrol/internal/testutil"
	"go.uber.org/mock/gomock"
)

const (
	testNormalizerID   = "normalizer-acme"
	testRawQueue       = "acme__raw_file_received"
	testRunReportQueue = "acme__normalizer_meta_received"
)

type normalizerFixture struct {
	ctrl      *gomock.Controller
	catalogue *mocks.MockCatalogueService
	broker    *mocks.MockBroker
	pqStore   *mocks.MockPriorityQueueStore
	pqStoreTx *mocks.MockPriorityQueueStoreTx
	tasks     *mocks.MockTaskStore
	tasksTx   *mocks.MockTaskStoreTx
	tx        *mocks.MockTxRunner
	clock     *data.FixedTimeProvider
	scheduler *NormalizerScheduler
}

func newNormalizerFixture(t *testing.T) *normalizerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &normalizerFixture{
		ctrl:      ctrl,
		catalogue: mocks.NewMockCatalogueService(ctrl),
		broker:    mocks.NewMockBroker(ctrl),
		pqStore:   mocks.NewMockPriorityQueueStore(ctrl),
		pqStoreTx: mocks.NewMockPriorityQueueStoreTx(ctrl),
		tasks:     mocks.NewMockTaskStore(ctrl),
		tasksTx:   mocks.NewMockTaskStoreTx(ctrl),
		tx:        mocks.NewMockTxRunner(ctrl),
		clock:     data.NewFixedTimeProvider(testutil.TestTime()),
	}
	passthroughTx(f.tx)

	f.scheduler = NewNormalizerScheduler(NormalizerSchedulerOptions{
		SchedulerOptions: SchedulerOptions{
			Organisation:     model.Organisation{ID: testOrgID, Name: "Acme Corp"},
			Tasks:            f.tasks,
			TasksTx:          f.tasksTx,
			Tx:               f.tx,
			TimeProvider:     f.clock,
			Logger:           testLogger(),
			PopulateInterval: 5 * time.Millisecond,
		},
		Catalogue:    f.catalogue,
		Broker:       f.broker,
		Ranker:       ranker.NewNormalizerRanker(),
		PQStore:      f.pqStore,
		PQStoreTx:    f.pqStoreTx,
		QueueMaxSize: 10,
	})
	return f
}

func (f *normalizerFixture) deliverRawFile(t *testing.T, body []byte) *mocks.MockDelivery {
	t.Helper()
	delivery := mocks.NewMockDelivery(f.ctrl)
	delivery.EXPECT().Body().Return(body).AnyTimes()

	gomock.InOrder(
		f.broker.EXPECT().Get(gomock.Any(), testRawQueue).Return(delivery, nil),
		f.broker.EXPECT().Get(gomock.Any(), testRawQueue).Return(nil, nil),
	)
	return delivery
}

func (f *normalizerFixture) deliverRunReport(t *testing.T, body []byte) *mocks.MockDelivery {
	t.Helper()
	delivery := mocks.NewMockDelivery(f.ctrl)
	delivery.EXPECT().Body().Return(body).AnyTimes()

	gomock.InOrder(
		f.broker.EXPECT().Get(gomock.Any(), testRunReportQueue).Return(delivery, nil),
		f.broker.EXPECT().Get(gomock.Any(), testRunReportQueue).Return(nil, nil),
	)
	return delivery
}

func testBoefjeMeta() model.BoefjeMeta {
	return model.BoefjeMeta{
		ID:           "meta-1",
		Boefje:       model.Boefje{ID: "dns-records", Version: "1.0.0"},
		InputOOI:     "Hostname|internet|example.com",
		Organization: testOrgID,
	}
}

func rawFileEvent(t *testing.T, mimes ...string) ([]byte, model.RawDataReceivedEvent) {
	t.Helper()
	mimeTypes := make([]model.MimeType, 0, len(mimes))
	for _, m := range mimes {
		mimeTypes = append(mimeTypes, model.MimeType{Value: m})
	}

	event := model.RawDataReceivedEvent{
		CreatedAt:    testutil.TestTime(),
		Organization: testOrgID,
		RawData: model.RawData{
			ID:         "raw-1",
			BoefjeMeta: testBoefjeMeta(),
			MimeTypes:  mimeTypes,
		},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body, event
}

func TestNormalizerScheduler_DerivesIDFromOrganisation(t *testing.T) {
	f := newNormalizerFixture(t)

	assert.Equal(t, testNormalizerID, f.scheduler.ID())
	assert.Equal(t, model.ItemTypeNormalizer, f.scheduler.Queue().ItemType())
}

func TestNormalizerScheduler_PopulateQueue_FansOutOverMimeTypes(t *testing.T) {
	f := newNormalizerFixture(t)
	ctx := context.Background()

	body, event := rawFileEvent(t, "text/plain", "boefje/dns-records")
	delivery := f.deliverRawFile(t, body)
	delivery.EXPECT().Ack().Return(nil)

	// The raw file closes out the boefje task that produced it.
	boefjeHash := model.BoefjeTask{
		Boefje:       event.RawData.BoefjeMeta.Boefje,
		InputOOI:     event.RawData.BoefjeMeta.InputOOI,
		Organization: testOrgID,
	}.Hash()
	boefjeTask := &model.Task{ID: "bt-1", Status: model.TaskStatusDispatched}
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), boefjeHash).Return(boefjeTask, nil)

	var closed *model.Task
	f.tasks.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *model.Task) error {
			closed = task
			return nil
		},
	)

	// One normalizer consumes both mime types; a second only the stronger
	// one. The overlap must not produce a duplicate task.
	normA := *testutil.NormalizerPlugin("text/plain")
	normB := *testutil.NewPlugin().
		WithID("kat_dns_classify").
		WithType(model.PluginTypeNormalizer).
		WithConsumes("boefje/dns-records").
		Build()
	f.catalogue.EXPECT().GetNormalizersByMimeType(gomock.Any(), testOrgID, "text/plain").
		Return([]model.Plugin{normA}, nil)
	f.catalogue.EXPECT().GetNormalizersByMimeType(gomock.Any(), testOrgID, "boefje/dns-records").
		Return([]model.Plugin{normA, normB}, nil)

	hashA := model.NormalizerTask{Normalizer: normA.AsNormalizer(), BoefjeMeta: event.RawData.BoefjeMeta}.Hash()
	hashB := model.NormalizerTask{Normalizer: normB.AsNormalizer(), BoefjeMeta: event.RawData.BoefjeMeta}.Hash()

	f.pqStore.EXPECT().GetByHash(gomock.Any(), testNormalizerID, hashA).Return(nil, nil).Times(2)
	f.pqStore.EXPECT().GetByHash(gomock.Any(), testNormalizerID, hashB).Return(nil, nil).Times(2)
	f.pqStore.EXPECT().Size(gomock.Any(), testNormalizerID).Return(0, nil).Times(2)
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), hashA).Return(nil, nil)
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), hashB).Return(nil, nil)

	var items []*model.PrioritizedItem
	f.pqStoreTx.EXPECT().PushInTx(gomock.Any(), gomock.Nil(), testNormalizerID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, _ string, item *model.PrioritizedItem) error {
			items = append(items, item)
			return nil
		},
	).Times(2)
	f.tasksTx.EXPECT().AddInTx(gomock.Any(), gomock.Nil(), gomock.Any()).Return(nil).Times(2)

	count, err := f.scheduler.populateQueue(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NotNil(t, closed)
	assert.Equal(t, model.TaskStatusCompleted, closed.Status)

	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, testutil.TestTime().Unix(), item.Priority)
	}
}

func TestNormalizerScheduler_PopulateQueue_ErrorMimeFailsBoefjeTask(t *testing.T) {
	f := newNormalizerFixture(t)

	body, event := rawFileEvent(t, "error/boefje", "text/plain")
	delivery := f.deliverRawFile(t, body)
	delivery.EXPECT().Ack().Return(nil)

	boefjeHash := model.BoefjeTask{
		Boefje:       event.RawData.BoefjeMeta.Boefje,
		InputOOI:     event.RawData.BoefjeMeta.InputOOI,
		Organization: testOrgID,
	}.Hash()
	boefjeTask := &model.Task{ID: "bt-1", Status: model.TaskStatusDispatched}
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), boefjeHash).Return(boefjeTask, nil)

	var closed *model.Task
	f.tasks.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *model.Task) error {
			closed = task
			return nil
		},
	)

	count, err := f.scheduler.populateQueue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NotNil(t, closed)
	assert.Equal(t, model.TaskStatusFailed, closed.Status)
}

func TestNormalizerScheduler_PopulateQueue_SkipsDisabledNormalizer(t *testing.T) {
	f := newNormalizerFixture(t)

	body, event := rawFileEvent(t, "text/plain")
	delivery := f.deliverRawFile(t, body)
	delivery.EXPECT().Ack().Return(nil)

	boefjeHash := model.BoefjeTask{
		Boefje:       event.RawData.BoefjeMeta.Boefje,
		InputOOI:     event.RawData.BoefjeMeta.InputOOI,
		Organization: testOrgID,
	}.Hash()
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), boefjeHash).Return(nil, nil)

	disabled := *testutil.NewPlugin().
		WithType(model.PluginTypeNormalizer).
		WithConsumes("text/plain").
		WithEnabled(false).
		Build()
	f.catalogue.EXPECT().GetNormalizersByMimeType(gomock.Any(), testOrgID, "text/plain").
		Return([]model.Plugin{disabled}, nil)

	count, err := f.scheduler.populateQueue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNormalizerScheduler_PopulateQueue_DropsUndecodableEvent(t *testing.T) {
	f := newNormalizerFixture(t)

	delivery := f.deliverRawFile(t, []byte("not json"))
	delivery.EXPECT().Nack(false).Return(nil)

	count, err := f.scheduler.populateQueue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func runReportBody(t *testing.T, meta model.NormalizerMeta) []byte {
	t.Helper()
	body, err := json.Marshal(model.NormalizerMetaReceivedEvent{
		CreatedAt:      testutil.TestTime(),
		Organization:   testOrgID,
		NormalizerMeta: meta,
	})
	require.NoError(t, err)
	return body
}

func TestNormalizerScheduler_ProcessRunReports_CompletesTask(t *testing.T) {
	f := newNormalizerFixture(t)

	meta := model.NormalizerMeta{
		ID:         "nt-1",
		RawData:    model.RawData{ID: "raw-1", BoefjeMeta: testBoefjeMeta()},
		Normalizer: model.Normalizer{ID: "kat_dns_normalize"},
	}
	delivery := f.deliverRunReport(t, runReportBody(t, meta))
	delivery.EXPECT().Ack().Return(nil)

	task := &model.Task{ID: "nt-1", Status: model.TaskStatusDispatched}
	f.tasks.EXPECT().GetByID(gomock.Any(), "nt-1").Return(task, nil)

	var updated *model.Task
	f.tasks.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *model.Task) error {
			updated = task
			return nil
		},
	)

	f.scheduler.processRunReports(context.Background())

	require.NotNil(t, updated)
	assert.Equal(t, "nt-1", updated.ID)
	assert.Equal(t, model.TaskStatusCompleted, updated.Status)
}

func TestNormalizerScheduler_ProcessRunReports_FallsBackToHash(t *testing.T) {
	f := newNormalizerFixture(t)

	meta := model.NormalizerMeta{
		ID:         "meta-from-old-runner",
		RawData:    model.RawData{ID: "raw-1", BoefjeMeta: testBoefjeMeta()},
		Normalizer: model.Normalizer{ID: "kat_dns_normalize"},
	}
	delivery := f.deliverRunReport(t, runReportBody(t, meta))
	delivery.EXPECT().Ack().Return(nil)

	hash := model.NormalizerTask{Normalizer: meta.Normalizer, BoefjeMeta: meta.RawData.BoefjeMeta}.Hash()

	f.tasks.EXPECT().GetByID(gomock.Any(), "meta-from-old-runner").
		Return(nil, apperrors.NotFoundf("no task"))
	task := &model.Task{ID: "nt-2", Status: model.TaskStatusQueued}
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), hash).Return(task, nil)
	f.tasks.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	f.scheduler.processRunReports(context.Background())
}

func TestNormalizerScheduler_ProcessRunReports_UnknownTaskAcked(t *testing.T) {
	f := newNormalizerFixture(t)

	meta := model.NormalizerMeta{
		ID:         "unknown",
		RawData:    model.RawData{ID: "raw-1", BoefjeMeta: testBoefjeMeta()},
		Normalizer: model.Normalizer{ID: "kat_dns_normalize"},
	}
	delivery := f.deliverRunReport(t, runReportBody(t, meta))
	delivery.EXPECT().Ack().Return(nil)

	f.tasks.EXPECT().GetByID(gomock.Any(), "unknown").Return(nil, apperrors.NotFoundf("no task"))
	f.tasks.EXPECT().GetLatestByHash(gomock.Any(), gomock.Any()).Return(nil, nil)

	f.scheduler.processRunReports(context.Background())
}

func TestNormalizerScheduler_ProcessRunReports_RequeuesOnStoreError(t *testing.T) {
	f := newNormalizerFixture(t)

	meta := model.NormalizerMeta{
		ID:         "nt-1",
		RawData:    model.RawData{ID: "raw-1", BoefjeMeta: testBoefjeMeta()},
		Normalizer: model.Normalizer{ID: "kat_dns_normalize"},
	}
	delivery := f.deliverRunReport(t, runReportBody(t, meta))
	delivery.EXPECT().Nack(true).Return(nil)

	f.tasks.EXPECT().GetByID(gomock.Any(), "nt-1").
		Return(nil, apperrors.Unavailablef("database down"))

	f.scheduler.processRunReports(context.Background())
}

func TestNormalizerScheduler_Run_DrainsBothQueues(t *testing.T) {
	f := newNormalizerFixture(t)

	var rawPolls, reportPolls atomic.Int32
	f.broker.EXPECT().Get(gomock.Any(), testRawQueue).DoAndReturn(
		func(context.Context, string) (core.Delivery, error) {
			rawPolls.Add(1)
			return nil, nil
		},
	).AnyTimes()
	f.broker.EXPECT().Get(gomock.Any(), testRunReportQueue).DoAndReturn(
		func(context.Context, string) (core.Delivery, error) {
			reportPolls.Add(1)
			return nil, nil
		},
	).AnyTimes()
	f.pqStore.EXPECT().Size(gomock.Any(), testNormalizerID).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return rawPolls.Load() >= 2 && reportPolls.Load() >= 2
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
