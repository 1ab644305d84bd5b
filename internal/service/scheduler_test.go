package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixlab/patrol/internal/data"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/mocks"
	"github.com/strixlab/patrol/internal/queue"
	"github.com/strixlab/patrol/internal/testutil"
	"go.uber.org/mock/gomock"
)

const testSchedulerID = "boefje-acme"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// passthroughTx makes the mock runner invoke the callback with a nil
// transaction, so store mocks see the calls the real runner would forward.
func passthroughTx(tx *mocks.MockTxRunner) {
	tx.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(*sql.Tx) error) error {
			return fn(nil)
		},
	).AnyTimes()
}

type schedulerFixture struct {
	pqStore   *mocks.MockPriorityQueueStore
	pqStoreTx *mocks.MockPriorityQueueStoreTx
	tasks     *mocks.MockTaskStore
	tasksTx   *mocks.MockTaskStoreTx
	tx        *mocks.MockTxRunner
	clock     *data.FixedTimeProvider
	scheduler *Scheduler
}

func newSchedulerFixture(t *testing.T, maxSize int, populate populateFunc) *schedulerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &schedulerFixture{
		pqStore:   mocks.NewMockPriorityQueueStore(ctrl),
		pqStoreTx: mocks.NewMockPriorityQueueStoreTx(ctrl),
		tasks:     mocks.NewMockTaskStore(ctrl),
		tasksTx:   mocks.NewMockTaskStoreTx(ctrl),
		tx:        mocks.NewMockTxRunner(ctrl),
		clock:     data.NewFixedTimeProvider(testutil.TestTime()),
	}
	passthroughTx(f.tx)

	q := queue.NewPriorityQueue(queue.PriorityQueueOptions{
		ID:                   testSchedulerID,
		MaxSize:              maxSize,
		ItemType:             model.ItemTypeBoefje,
		AllowPriorityUpdates: true,
		Store:                f.pqStore,
		TxStore:              f.pqStoreTx,
	})

	f.scheduler = newScheduler(SchedulerOptions{
		ID:               testSchedulerID,
		Organisation:     model.Organisation{ID: "acme", Name: "Acme Corp"},
		Tasks:            f.tasks,
		TasksTx:          f.tasksTx,
		Tx:               f.tx,
		TimeProvider:     f.clock,
		Logger:           testLogger(),
		PopulateInterval: 5 * time.Millisecond,
	}, q, populate)
	return f
}

func TestScheduler_Push_NewItemWritesTask(t *testing.T) {
	f := newSchedulerFixture(t, 10, nil)
	ctx := context.Background()

	item := testutil.QueuedItem(2)

	f.pqStore.EXPECT().Size(ctx, testSchedulerID).Return(0, nil)
	f.pqStore.EXPECT().GetByHash(ctx, testSchedulerID, gomock.Any()).Return(nil, nil)
	f.pqStoreTx.EXPECT().PushInTx(ctx, gomock.Nil(), testSchedulerID, item).Return(nil)

	var recorded *model.Task
	f.tasksTx.EXPECT().AddInTx(ctx, gomock.Nil(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *sql.Tx, task *model.Task) error {
			recorded = task
			return nil
		},
	)

	stored, err := f.scheduler.Push(ctx, item)
	require.NoError(t, err)
	require.NotNil(t, stored)

	require.NotNil(t, recorded)
	assert.Equal(t, stored.ID, recorded.ID)
	assert.Equal(t, testSchedulerID, recorded.SchedulerID)
	assert.Equal(t, model.ItemTypeBoefje, recorded.Type)
	assert.Equal(t, model.TaskStatusQueued, recorded.Status)
	assert.Equal(t, testutil.TestTime(), recorded.CreatedAt)

	require.NotNil(t, f.scheduler.LastActivity())
	assert.Equal(t, testutil.TestTime(), *f.scheduler.LastActivity())
}

func TestScheduler_Push_ExistingHashRefreshesTask(t *testing.T) {
	f := newSchedulerFixture(t, 10, nil)
	ctx := context.Background()

	onQueue := testutil.QueuedItem(5)
	onQueue.ID = "existing-row"

	item := testutil.QueuedItem(2)

	f.pqStore.EXPECT().Size(ctx, testSchedulerID).Return(3, nil)
	f.pqStore.EXPECT().GetByHash(ctx, testSchedulerID, gomock.Any()).Return(onQueue, nil)
	f.pqStoreTx.EXPECT().UpdateInTx(ctx, gomock.Nil(), testSchedulerID, gomock.Any()).Return(nil)

	var recorded *model.Task
	f.tasksTx.EXPECT().UpdateInTx(ctx, gomock.Nil(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *sql.Tx, task *model.Task) error {
			recorded = task
			return nil
		},
	)

	stored, err := f.scheduler.Push(ctx, item)
	require.NoError(t, err)

	// The queue kept the stored row's identity, and the audit row follows it.
	assert.Equal(t, "existing-row", stored.ID)
	require.NotNil(t, recorded)
	assert.Equal(t, "existing-row", recorded.ID)
	assert.Equal(t, model.TaskStatusQueued, recorded.Status)
}

func TestScheduler_Push_FullQueueWritesNothing(t *testing.T) {
	f := newSchedulerFixture(t, 2, nil)
	ctx := context.Background()

	f.pqStore.EXPECT().Size(ctx, testSchedulerID).Return(2, nil)

	_, err := f.scheduler.Push(ctx, testutil.QueuedItem(1))
	require.Error(t, err)
	assert.True(t, apperrors.IsQueueFull(err))
	assert.Nil(t, f.scheduler.LastActivity())
}

func TestScheduler_Push_DuplicateNotAllowed(t *testing.T) {
	f := newSchedulerFixture(t, 10, nil)
	ctx := context.Background()

	onQueue := testutil.QueuedItem(2)
	onQueue.ID = "existing-row"

	// Same payload, same priority: nothing to update.
	f.pqStore.EXPECT().Size(ctx, testSchedulerID).Return(1, nil)
	f.pqStore.EXPECT().GetByHash(ctx, testSchedulerID, gomock.Any()).Return(onQueue, nil)

	_, err := f.scheduler.Push(ctx, testutil.QueuedItem(2))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotAllowed(err))
}

func TestScheduler_Run_StopsOnCancel(t *testing.T) {
	var cycles atomic.Int32
	populate := func(context.Context, time.Time) (int, error) {
		cycles.Add(1)
		return 0, nil
	}

	f := newSchedulerFixture(t, 0, populate)
	f.pqStore.EXPECT().Size(gomock.Any(), testSchedulerID).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	assert.Eventually(t, func() bool { return cycles.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_Run_PopulateDisabledSkipsCycles(t *testing.T) {
	var cycles atomic.Int32
	populate := func(context.Context, time.Time) (int, error) {
		cycles.Add(1)
		return 0, nil
	}

	f := newSchedulerFixture(t, 0, populate)
	f.scheduler.SetPopulateEnabled(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Zero(t, cycles.Load())
	assert.False(t, f.scheduler.PopulateEnabled())
}

func TestScheduler_Run_KeepsGoingAfterCycleError(t *testing.T) {
	var cycles atomic.Int32
	populate := func(context.Context, time.Time) (int, error) {
		cycles.Add(1)
		return 0, apperrors.Unavailablef("catalogue down")
	}

	f := newSchedulerFixture(t, 0, populate)
	f.pqStore.EXPECT().Size(gomock.Any(), testSchedulerID).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	assert.Eventually(t, func() bool { return cycles.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_Status(t *testing.T) {
	f := newSchedulerFixture(t, 50, nil)
	ctx := context.Background()

	f.pqStore.EXPECT().Size(ctx, testSchedulerID).Return(7, nil)

	status, err := f.scheduler.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, testSchedulerID, status.ID)
	assert.True(t, status.Enabled)
	assert.True(t, status.PopulateEnabled)
	assert.Nil(t, status.LastActivity)
	assert.Equal(t, testSchedulerID, status.PriorityQueue.ID)
	assert.Equal(t, 7, status.PriorityQueue.Size)
	assert.Equal(t, 50, status.PriorityQueue.MaxSize)
	assert.Equal(t, model.ItemTypeBoefje, status.PriorityQueue.ItemType)
	assert.True(t, status.PriorityQueue.AllowPriorityUpdates)
}

func TestScheduler_SetPopulateEnabled(t *testing.T) {
	f := newSchedulerFixture(t, 0, nil)

	assert.True(t, f.scheduler.PopulateEnabled())
	f.scheduler.SetPopulateEnabled(false)
	assert.False(t, f.scheduler.PopulateEnabled())
	f.scheduler.SetPopulateEnabled(true)
	assert.True(t, f.scheduler.PopulateEnabled())
}
