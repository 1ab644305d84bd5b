package httpx

import (
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

func schedulerSnapshot(id string) *model.SchedulerStatus {
	return &model.SchedulerStatus{
		ID:              id,
		Enabled:         true,
		PopulateEnabled: true,
		PriorityQueue: model.QueueStatus{
			ID:                   id,
			Size:                 3,
			MaxSize:              1000,
			ItemType:             model.ItemTypeBoefje,
			AllowPriorityUpdates: true,
		},
	}
}

func TestListSchedulers(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().ListSchedulers(gomock.Any()).Return([]*model.SchedulerStatus{
		schedulerSnapshot("boefje-acme"),
		schedulerSnapshot("normalizer-acme"),
	})

	w := f.do(t, http.MethodGet, "/schedulers", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []*model.SchedulerStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "boefje-acme", got[0].ID)
	assert.Equal(t, "normalizer-acme", got[1].ID)
}

func TestGetScheduler(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		GetScheduler(gomock.Any(), "boefje-acme").
		Return(schedulerSnapshot("boefje-acme"), nil)

	w := f.do(t, http.MethodGet, "/schedulers/boefje-acme", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.SchedulerStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "boefje-acme", got.ID)
	assert.Equal(t, 3, got.PriorityQueue.Size)
}

func TestGetScheduler_NotFound(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		GetScheduler(gomock.Any(), "boefje-ghost").
		Return(nil, apperrors.NotFoundf("no scheduler boefje-ghost"))

	w := f.do(t, http.MethodGet, "/schedulers/boefje-ghost", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w)["error"])
}

func TestPatchScheduler_TogglesPopulate(t *testing.T) {
	f := newRouterFixture(t)
	updated := schedulerSnapshot("boefje-acme")
	updated.PopulateEnabled = false
	f.control.EXPECT().
		SetPopulateEnabled(gomock.Any(), "boefje-acme", false).
		Return(updated, nil)

	body := strings.NewReader(`{"populate_queue_enabled": false}`)
	w := f.do(t, http.MethodPatch, "/schedulers/boefje-acme", body)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.SchedulerStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.False(t, got.PopulateEnabled)
}

func TestPatchScheduler_RejectsUnknownField(t *testing.T) {
	f := newRouterFixture(t)

	body := strings.NewReader(`{"enabled": false}`)
	w := f.do(t, http.MethodPatch, "/schedulers/boefje-acme", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", decodeError(t, w)["error"])
}

func TestPatchScheduler_RequiresToggle(t *testing.T) {
	f := newRouterFixture(t)

	body := strings.NewReader(`{}`)
	w := f.do(t, http.MethodPatch, "/schedulers/boefje-acme", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decodeError(t, w)["error"])
}

func TestPatchScheduler_NotFound(t *testing.T) {
	f := newRouterFixture(t)
	f.control.EXPECT().
		SetPopulateEnabled(gomock.Any(), "boefje-ghost", true).
		Return(nil, apperrors.NotFoundf("no scheduler boefje-ghost"))

	body := strings.NewReader(`{"populate_queue_enabled": true}`)
	w := f.do(t, http.MethodPatch, "/schedulers/boefje-ghost", body)

	require.Equal(t, http.StatusNotFound, w.Code)
}
