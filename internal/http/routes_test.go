package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixlab/patrol/internal/mocks"
	"go.uber.org/mock/gomock"
)

// routerFixture routes requests through the full middleware chain so handler
// tests exercise route patterns and error rendering the way clients see them.
type routerFixture struct {
	handler http.Handler
	control *mocks.MockSchedulerControl
	tasks   *mocks.MockTaskStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &routerFixture{
		control: mocks.NewMockSchedulerControl(ctrl),
		tasks:   mocks.NewMockTaskStore(ctrl),
	}
	f.handler = NewRouter(RouterServices{
		Control: f.control,
		Tasks:   f.tasks,
		Version: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

// decodeError unpacks the JSON error envelope.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var envelope map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	return envelope
}

func TestRoot_ReturnsEmptyObject(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestUnknownPath_ReturnsJSONNotFound(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodGet, "/no-such-thing", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeError(t, w)
	assert.Equal(t, "not_found", envelope["error"])
}
