package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixlab/patrol/internal/mocks"
	"go.uber.org/mock/gomock"
)

type recordedTiming struct {
	name string
	tags map[string]string
}

type recordingSink struct {
	timings []recordedTiming
}

func (s *recordingSink) Count(string, int64, map[string]string)   {}
func (s *recordingSink) Gauge(string, float64, map[string]string) {}

func (s *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	s.timings = append(s.timings, recordedTiming{name: name, tags: tags})
}

func TestRecover_PanicBecomes500(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestTiming_TagsMatchedRoute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sink := &recordingSink{}
	handler := RequestTiming(sink)(mux)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	require.Len(t, sink.timings, 1)
	assert.Equal(t, "api.request", sink.timings[0].name)
	assert.Equal(t, "GET /things/{id}", sink.timings[0].tags["route"])
	assert.Equal(t, "GET", sink.timings[0].tags["method"])
	assert.Equal(t, "200", sink.timings[0].tags["status"])
}

func TestMaxBytes_OversizedBodyRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := NewRouter(RouterServices{
		Control:      mocks.NewMockSchedulerControl(ctrl),
		Tasks:        mocks.NewMockTaskStore(ctrl),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxBodyBytes: 16,
	})

	body := strings.NewReader(`{"priority": 1, "hash": "` + strings.Repeat("h", 64) + `", "data": {}}`)
	r := httptest.NewRequest(http.MethodPost, "/queues/boefje-acme/push", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", decodeError(t, w)["error"])
}
