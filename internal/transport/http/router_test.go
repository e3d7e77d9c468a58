package httptransport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"bizverify/internal/platform/logger"
	"bizverify/internal/platform/metrics"
	"bizverify/pkg/platform/httputil"
	"bizverify/pkg/requestcontext"
	"bizverify/pkg/testutil"
)

type echoModule struct{}

func (echoModule) Register(r chi.Router) {
	r.Get("/echo", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"request_id": requestcontext.RequestID(r.Context()),
		})
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Logger:   logger.Discard(),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Checks:   checks,
		Modules:  []Registrar{echoModule{}},
	}), reg
}

func TestHealth(t *testing.T) {
	t.Run("ok without checks", func(t *testing.T) {
		router, _ := newTestRouter(nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("degraded when a dependency fails", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"redis":    func(context.Context) error { return errors.New("connection refused") },
			"postgres": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "ok", resp.Checks["postgres"])
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})
}

func TestModulesAndMiddleware(t *testing.T) {
	router, _ := newTestRouter(nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/echo"))

	testutil.AssertStatusOK(t, rr)
	reqID := rr.Header().Get("X-Request-ID")
	assert.NotEmpty(t, reqID)
	testutil.AssertJSONContains(t, rr, "request_id", reqID)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.Contains(t, rr.Body.String(), `bizverify_http_requests_total{code="200",route="/health"} 1`)
}
