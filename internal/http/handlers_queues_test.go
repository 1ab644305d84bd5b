package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
	"go.uber.org/mock/gomock"
)

func queueSnapshot(id string) *model.QueueStatus {
	return &model.QueueStatus{
		ID:                   id,
		Size:                 7,
		MaxSize:              1000,
		ItemType:             model.ItemTypeBoefje,
		AllowPriorityUpdates: true,
	}
}

func TestListQueues(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().ListQueues(gomock.Any()).Return([]*model.QueueStatus{
		queueSnapshot("boefje-acme"),
		queueSnapshot("normalizer-acme"),
	})

	w := f.do(t, http.MethodGet, "/queues", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []*model.QueueStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "boefje-acme", got[0].ID)
}

func TestGetQueue(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().GetQueue(gomock.Any(), "boefje-acme").Return(queueSnapshot("boefje-acme"), nil)

	w := f.do(t, http.MethodGet, "/queues/boefje-acme", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.QueueStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, 7, got.Size)
}

func TestGetQueue_NotFound(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		GetQueue(gomock.Any(), "boefje-ghost").
		Return(nil, apperrors.NotFoundf("no queue boefje-ghost"))

	w := f.do(t, http.MethodGet, "/queues/boefje-ghost", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w)["error"])
}

func TestPopQueue(t *testing.T) {
	f := newRouterFixture(t)
	item := model.NewPrioritizedItem(2, "hash-1", json.RawMessage(`{"id":"task-1"}`))
	f.control.EXPECT().PopQueue(gomock.Any(), "boefje-acme").Return(item, nil)

	w := f.do(t, http.MethodGet, "/queues/boefje-acme/pop", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.PrioritizedItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, int64(2), got.Priority)
}

func TestPopQueue_Empty(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		PopQueue(gomock.Any(), "boefje-acme").
		Return(nil, apperrors.QueueEmpty("boefje-acme"))

	w := f.do(t, http.MethodGet, "/queues/boefje-acme/pop", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "queue_empty", decodeError(t, w)["error"])
}

func TestPushQueue(t *testing.T) {
	f := newRouterFixture(t)

	var pushed *model.PrioritizedItem
	f.control.EXPECT().
		PushQueue(gomock.Any(), "boefje-acme", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, item *model.PrioritizedItem) error {
			pushed = item
			return nil
		})

	item := model.PrioritizedItem{Priority: 0, Hash: "hash-1", Data: json.RawMessage(`{"id":"task-1"}`)}
	body, err := json.Marshal(item)
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/queues/boefje-acme/push", bytes.NewReader(body))

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	require.NotNil(t, pushed)
	assert.Equal(t, int64(0), pushed.Priority)
	assert.Equal(t, "hash-1", pushed.Hash)
}

func TestPushQueue_Full(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		PushQueue(gomock.Any(), "boefje-acme", gomock.Any()).
		Return(apperrors.QueueFull("boefje-acme"))

	body := strings.NewReader(`{"priority": 1, "hash": "hash-1", "data": {}}`)
	w := f.do(t, http.MethodPost, "/queues/boefje-acme/push", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "queue_full", decodeError(t, w)["error"])
}

func TestPushQueue_NotAllowed(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		PushQueue(gomock.Any(), "boefje-acme", gomock.Any()).
		Return(apperrors.NotAllowed("item is already on the queue"))

	body := strings.NewReader(`{"priority": 1, "hash": "hash-1", "data": {}}`)
	w := f.do(t, http.MethodPost, "/queues/boefje-acme/push", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "not_allowed", decodeError(t, w)["error"])
}

func TestPushQueue_InvalidJSON(t *testing.T) {
	f := newRouterFixture(t)

	body := strings.NewReader(`{"priority": "high"}`)
	w := f.do(t, http.MethodPost, "/queues/boefje-acme/push", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", decodeError(t, w)["error"])
}

func TestPushQueue_UnknownQueue(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		PushQueue(gomock.Any(), "boefje-ghost", gomock.Any()).
		Return(apperrors.NotFoundf("no queue boefje-ghost"))

	body := strings.NewReader(`{"priority": 1, "hash": "hash-1", "data": {}}`)
	w := f.do(t, http.MethodPost, "/queues/boefje-ghost/push", body)

	require.Equal(t, http.StatusNotFound, w.Code)
}
