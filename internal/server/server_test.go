package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/health"
	"github.com/felixgeelhaar/taskweave/internal/metrics"
)

func newTestServer(t *testing.T, docPath string) *Server {
	t.Helper()
	reg, m := metrics.NewRegistry()
	m.ObserveFallback(metrics.FallbackEmbedding)
	pm := health.NewProbeManager("1.0.0", health.NewDocumentChecker(backlog.NewFileRepository(), docPath))
	return New(pm, metrics.HandlerFor(reg), nil, Config{Address: "127.0.0.1:0"})
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backlog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[]}`), 0644))
	return path
}

func TestNewDefaults(t *testing.T) {
	s := New(health.NewProbeManager("1.0.0"), nil, nil, Config{Address: ":0"})

	assert.Equal(t, 10*time.Second, s.shutdownTimeout)
	assert.Equal(t, 10*time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 10*time.Second, s.httpServer.WriteTimeout)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProbeEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		docMissing bool
		wantCode   int
		wantStatus health.Status
	}{
		{"live", "/health/live", http.MethodGet, false, http.StatusOK, health.StatusHealthy},
		{"ready", "/health/ready", http.MethodGet, false, http.StatusOK, health.StatusHealthy},
		{"healthz", "/healthz", http.MethodGet, false, http.StatusOK, health.StatusHealthy},
		{"ready without document", "/health/ready", http.MethodGet, true, http.StatusServiceUnavailable, health.StatusUnhealthy},
		{"live without document", "/health/live", http.MethodGet, true, http.StatusOK, health.StatusHealthy},
		{"post not allowed", "/health/live", http.MethodPost, false, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t)
			if tt.docMissing {
				path += ".missing"
			}
			s := newTestServer(t, path)

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantStatus == "" {
				return
			}
			var res health.ProbeResult
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, "1.0.0", res.Version)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, writeDoc(t))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taskweave_fallbacks_total{kind="embedding"} 1`)
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, writeDoc(t))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/health/live")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"healthy"`))

	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, s.IsShuttingDown())
	assert.NoError(t, <-done)
}
