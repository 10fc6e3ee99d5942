package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	calls *int
	err   error
}

func (f fakeChecker) HealthCheck(context.Context) error {
	if f.calls != nil {
		*f.calls++
	}
	return f.err
}

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(Config{ServiceName: "angel5000", Version: "1.0.0", Port: "0"})

	rec := serve(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "angel5000", resp.Service)
	assert.Nil(t, resp.LastBatch)
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		db         DatabaseChecker
		wantStatus int
	}{
		{name: "not marked ready", ready: false, wantStatus: http.StatusServiceUnavailable},
		{name: "ready without database", ready: true, wantStatus: http.StatusOK},
		{name: "ready with healthy database", ready: true, db: fakeChecker{}, wantStatus: http.StatusOK},
		{name: "database down", ready: true, db: fakeChecker{err: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "angel5000", Port: "0", DB: tt.db})
			s.SetReady(tt.ready)

			rec := serve(t, s, "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestReadyRunsDatabaseHealthCheck(t *testing.T) {
	calls := 0
	s := NewServer(Config{ServiceName: "angel5000", Port: "0", DB: fakeChecker{calls: &calls}})
	s.SetReady(true)

	rec := serve(t, s, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["database"])

	serve(t, s, "/health")
	assert.Equal(t, 1, calls)
}

func TestLastBatchReported(t *testing.T) {
	s := NewServer(Config{ServiceName: "angel5000", Port: "0"})
	s.SetReady(true)
	s.SetLastBatch(BatchStatus{FinishedAt: time.Now().UTC(), Runs: 100, Persisted: false})

	rec := serve(t, s, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var ready ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "not_persisted", ready.Checks["last_batch"])

	var health HealthResponse
	require.NoError(t, json.Unmarshal(serve(t, s, "/health").Body.Bytes(), &health))
	require.NotNil(t, health.LastBatch)
	assert.Equal(t, 100, health.LastBatch.Runs)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("angel5000_simulation_runs_total 1\n"))
	})
	s := NewServer(Config{ServiceName: "angel5000", Port: "0", Metrics: metrics, MetricsPath: "/prom"})

	rec := serve(t, s, "/prom")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simulation_runs_total")

	noMetrics := NewServer(Config{ServiceName: "angel5000", Port: "0"})
	assert.Equal(t, http.StatusNotFound, serve(t, noMetrics, "/metrics").Code)
}
