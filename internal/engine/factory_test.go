package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/config"
	twerrors "github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/metrics"
	"github.com/felixgeelhaar/taskweave/internal/priority"
)

// embeddingServer answers every input with the same unit vector.
func embeddingServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i := range req.Input {
			resp.Data = append(resp.Data, item{Embedding: []float32{1, 0}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func unrelatedDoc() *backlog.Document {
	doc := backlog.NewDocument(backlog.FormatJSON)
	doc.Tasks = []backlog.Task{
		{ID: "A-1", Title: "Alpha", FilesLikelyModified: []string{"a.py"}},
		{ID: "B-1", Title: "Beta", FilesLikelyModified: []string{"b.py"}},
	}
	return doc
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Embed.CachePath = ""
	return cfg
}

func TestFromConfigDefaults(t *testing.T) {
	e, err := FromConfig(testConfig())
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	report, err := e.Preview(context.Background(), unrelatedDoc())
	require.NoError(t, err)
	assert.False(t, report.Semantic)
	assert.Len(t, report.Clusters, 2)
}

func TestFromConfigRejectsInvalid(t *testing.T) {
	cfg := testConfig()
	cfg.Cluster.SimilarityThreshold = 2

	_, err := FromConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, twerrors.ErrCodeConfigInvalid, twerrors.CodeOf(err))
}

func TestFromConfigSections(t *testing.T) {
	cfg := testConfig()
	cfg.Sections = []priority.Section{{Prefix: "B", Title: "Beta work"}}
	cfg.Priority.HeaderFormat = "## {title} [{prefix}]"

	e, err := FromConfig(cfg)
	require.NoError(t, err)

	report, err := e.Preview(context.Background(), unrelatedDoc())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"## Beta work [B]", "B-1 - Beta",
		"## A [A]", "A-1 - Alpha",
	}, report.NewPriorityList)
}

func TestFromConfigEmbeddingWithCache(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, &calls)

	cfg := testConfig()
	cfg.Embed.Provider = "custom/test-model"
	cfg.Embed.Endpoint = srv.URL
	cfg.Embed.MaxRetries = 0
	cfg.Embed.CachePath = filepath.Join(t.TempDir(), "embeddings.db")

	_, m := metrics.NewRegistry()
	e, err := FromConfig(cfg, WithMetrics(m))
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	for i := 0; i < 2; i++ {
		report, err := e.Preview(context.Background(), unrelatedDoc())
		require.NoError(t, err)
		assert.True(t, report.Semantic)
		require.Len(t, report.Clusters, 1)
		assert.Equal(t, []string{"A-1", "B-1"}, report.Clusters[0].TaskIDs)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHits.WithLabelValues()))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues()))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmbedCalls.WithLabelValues("custom/test-model", "true")))
}

func TestFromConfigCacheUnavailable(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, &calls)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	cfg := testConfig()
	cfg.Embed.Provider = "custom/test-model"
	cfg.Embed.Endpoint = srv.URL
	cfg.Embed.MaxRetries = 0
	cfg.Embed.CachePath = filepath.Join(blocker, "sub", "embeddings.db")

	e, err := FromConfig(cfg)
	require.NoError(t, err)

	report, err := e.Preview(context.Background(), unrelatedDoc())
	require.NoError(t, err)
	assert.True(t, report.Semantic)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFromConfigInjectedProviderWins(t *testing.T) {
	cfg := testConfig()
	cfg.Embed.Provider = "custom/unused"
	cfg.Embed.Endpoint = "http://127.0.0.1:1"

	provider := vectorProvider{"A-1": {0, 1}, "B-1": {0, 1}}
	e, err := FromConfig(cfg, WithProvider(provider, "fake"))
	require.NoError(t, err)

	report, err := e.Preview(context.Background(), unrelatedDoc())
	require.NoError(t, err)
	assert.True(t, report.Semantic)
	assert.Empty(t, report.Warnings)
}
