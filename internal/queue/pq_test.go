package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"github.com/strixlab/patrol/internal/mocks"
	"github.com/strixlab/patrol/internal/testutil"
	"go.uber.org/mock/gomock"
)

const testQueueID = "boefje-acme"

func newBoefjeQueue(store *mocks.MockPriorityQueueStore, maxSize int) *PriorityQueue {
	return NewPriorityQueue(PriorityQueueOptions{
		ID:       testQueueID,
		MaxSize:  maxSize,
		ItemType: model.ItemTypeBoefje,
		Store:    store,
	})
}

func TestPriorityQueue_Push_NewItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 10)

	item := testutil.QueuedItem(2)
	wantHash := testutil.NewBoefjeTask().Build().Hash()

	store.EXPECT().Size(ctx, testQueueID).Return(0, nil)
	store.EXPECT().GetByHash(ctx, testQueueID, wantHash).Return(nil, nil)
	store.EXPECT().Push(ctx, testQueueID, item).Return(nil)

	got, err := q.Push(ctx, item)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wantHash, got.Hash)
	assert.Len(t, got.Hash, 32)
}

func TestPriorityQueue_Push_DerivesHashFromPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	item := testutil.QueuedItem(1)
	item.Hash = "bogus"
	wantHash := testutil.NewBoefjeTask().Build().Hash()

	store.EXPECT().GetByHash(ctx, testQueueID, wantHash).Return(nil, nil)
	store.EXPECT().Push(ctx, testQueueID, gomock.Any()).Return(nil)

	got, err := q.Push(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, wantHash, got.Hash)
}

func TestPriorityQueue_Push_InvalidPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 10)

	tests := []struct {
		name string
		item *model.PrioritizedItem
	}{
		{"nil item", nil},
		{"empty data", model.NewPrioritizedItem(1, "", nil)},
		{"malformed json", model.NewPrioritizedItem(1, "", json.RawMessage(`{"boefje":`))},
		{"missing boefje id", model.NewPrioritizedItem(1, "", json.RawMessage(`{"boefje":{"id":""},"input_ooi":"Hostname|internet|example.com","organization":"acme"}`))},
		{"missing input ooi", model.NewPrioritizedItem(1, "", json.RawMessage(`{"boefje":{"id":"dns-records"},"input_ooi":"","organization":"acme"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation fails before any store interaction.
			_, err := q.Push(ctx, tt.item)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestPriorityQueue_Push_QueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 2)

	store.EXPECT().Size(ctx, testQueueID).Return(2, nil)

	_, err := q.Push(ctx, testutil.QueuedItem(1))
	require.Error(t, err)
	assert.True(t, apperrors.IsQueueFull(err), "expected queue full error, got %v", err)
}

func TestPriorityQueue_Push_DuplicateDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	item := testutil.QueuedItem(2)
	existing := testutil.QueuedItem(2)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(existing, nil)

	_, err := q.Push(ctx, item)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotAllowed(err), "expected not allowed error, got %v", err)
}

func TestPriorityQueue_Push_AllowReplace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:           testQueueID,
		ItemType:     model.ItemTypeBoefje,
		AllowReplace: true,
		Store:        store,
	})

	existing := testutil.QueuedItem(2)
	item := testutil.QueuedItem(2)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(existing, nil)
	store.EXPECT().Update(ctx, testQueueID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, it *model.PrioritizedItem) error {
			assert.Equal(t, existing.ID, it.ID)
			return nil
		})

	got, err := q.Push(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
}

func TestPriorityQueue_Push_AllowUpdates_PayloadChanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:           testQueueID,
		ItemType:     model.ItemTypeBoefje,
		AllowUpdates: true,
		Store:        store,
	})

	existing := testutil.QueuedItem(2)

	// Same identity triple, different boefje version: same hash, new payload.
	task := testutil.NewBoefjeTask().
		WithBoefje(model.Boefje{ID: "dns-records", Version: "2.0.0"}).
		Build()
	data, err := task.MarshalData()
	require.NoError(t, err)
	item := model.NewPrioritizedItem(2, task.Hash(), data)
	require.Equal(t, existing.Hash, item.Hash)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(existing, nil)
	store.EXPECT().Update(ctx, testQueueID, gomock.Any()).Return(nil)

	got, err := q.Push(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
}

func TestPriorityQueue_Push_AllowUpdates_PriorityOnlyChangeDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:           testQueueID,
		ItemType:     model.ItemTypeBoefje,
		AllowUpdates: true,
		Store:        store,
	})

	existing := testutil.QueuedItem(2)
	item := testutil.QueuedItem(5)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(existing, nil)

	_, err := q.Push(ctx, item)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotAllowed(err))
}

func TestPriorityQueue_Push_AllowPriorityUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:                   testQueueID,
		ItemType:             model.ItemTypeBoefje,
		AllowPriorityUpdates: true,
		Store:                store,
	})

	existing := testutil.QueuedItem(10)
	item := testutil.QueuedItem(1)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(existing, nil)
	store.EXPECT().Update(ctx, testQueueID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, it *model.PrioritizedItem) error {
			assert.Equal(t, existing.ID, it.ID)
			assert.Equal(t, int64(1), it.Priority)
			return nil
		})

	got, err := q.Push(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Priority)
}

func TestPriorityQueue_Push_NormalizerPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:       "normalizer-acme",
		ItemType: model.ItemTypeNormalizer,
		Store:    store,
	})

	task := model.NewNormalizerTask(
		model.Normalizer{ID: "kat_dns_normalize"},
		model.BoefjeMeta{ID: "meta-1", Organization: "acme"},
	)
	data, err := task.MarshalData()
	require.NoError(t, err)
	item := model.NewPrioritizedItem(1, "", data)

	store.EXPECT().GetByHash(ctx, "normalizer-acme", task.Hash()).Return(nil, nil)
	store.EXPECT().Push(ctx, "normalizer-acme", gomock.Any()).Return(nil)

	got, err := q.Push(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, task.Hash(), got.Hash)
}

func TestPriorityQueue_Push_NormalizerPayloadRejectedOnBoefjeQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	task := model.NewNormalizerTask(
		model.Normalizer{ID: "kat_dns_normalize"},
		model.BoefjeMeta{ID: "meta-1", Organization: "acme"},
	)
	data, err := task.MarshalData()
	require.NoError(t, err)

	_, err = q.Push(ctx, model.NewPrioritizedItem(1, "", data))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPriorityQueue_PushInTx_UsesTransactionalStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	txStore := mocks.NewMockPriorityQueueStoreTx(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:       testQueueID,
		ItemType: model.ItemTypeBoefje,
		Store:    store,
		TxStore:  txStore,
	})

	item := testutil.QueuedItem(3)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(nil, nil)
	txStore.EXPECT().PushInTx(ctx, gomock.Nil(), testQueueID, item).Return(nil)

	got, err := q.PushInTx(ctx, nil, item)
	require.NoError(t, err)
	assert.Equal(t, item.Hash, got.Hash)
}

func TestPriorityQueue_PushInTx_WithoutTxStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	_, err := q.PushInTx(context.Background(), nil, testutil.QueuedItem(1))
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestPriorityQueue_Pop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	want := testutil.QueuedItem(1)
	store.EXPECT().Pop(ctx, testQueueID).Return(want, nil)

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPriorityQueue_Pop_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	store.EXPECT().Pop(ctx, testQueueID).Return(nil, nil)

	_, err := q.Pop(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsQueueEmpty(err), "expected queue empty error, got %v", err)
}

func TestPriorityQueue_Full_UnboundedNeverFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	full, err := q.Full(context.Background())
	require.NoError(t, err)
	assert.False(t, full)
}

func TestPriorityQueue_IsItemOnQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := newBoefjeQueue(store, 0)

	item := testutil.QueuedItem(1)

	store.EXPECT().GetByHash(ctx, testQueueID, item.Hash).Return(item, nil)
	onQueue, err := q.IsItemOnQueue(ctx, item.Hash)
	require.NoError(t, err)
	assert.True(t, onQueue)

	store.EXPECT().GetByHash(ctx, testQueueID, "other").Return(nil, nil)
	onQueue, err = q.IsItemOnQueue(ctx, "other")
	require.NoError(t, err)
	assert.False(t, onQueue)
}

func TestPriorityQueue_Status(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockPriorityQueueStore(ctrl)
	q := NewPriorityQueue(PriorityQueueOptions{
		ID:                   testQueueID,
		MaxSize:              1000,
		ItemType:             model.ItemTypeBoefje,
		AllowPriorityUpdates: true,
		Store:                store,
	})

	store.EXPECT().Size(ctx, testQueueID).Return(3, nil)

	status, err := q.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.QueueStatus{
		ID:                   testQueueID,
		Size:                 3,
		MaxSize:              1000,
		ItemType:             model.ItemTypeBoefje,
		AllowPriorityUpdates: true,
	}, status)
}
