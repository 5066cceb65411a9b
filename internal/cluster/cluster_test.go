package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/hints"
	"github.com/felixgeelhaar/taskweave/internal/similarity"
)

// fileHints reads hints from files_likely_modified only.
type fileHints struct{}

func (fileHints) Get(t backlog.Task) hints.Set {
	return hints.NewSet(t.FilesLikelyModified...)
}

func fileScorer() *similarity.Scorer {
	return similarity.NewScorer(fileHints{}, nil)
}

func task(id string, files ...string) backlog.Task {
	return backlog.Task{ID: id, Title: id, FilesLikelyModified: files}
}

func scenarioTasks() []backlog.Task {
	return []backlog.Task{
		{ID: "UI-001", Title: "Preferences panel", FilesLikelyModified: []string{"settings.py", "ui.py"}},
		{ID: "UI-002", Title: "Dark theme", FilesLikelyModified: []string{"ui.py", "styles.css"}},
		{ID: "API-001", Title: "Login endpoint", FilesLikelyModified: []string{"api_server.py", "auth.py"}},
		{ID: "API-002", Title: "Throttle requests", FilesLikelyModified: []string{"api_server.py", "rate_limiter.py"}},
		{ID: "SEC-001", Title: "Escape user input", FilesLikelyModified: []string{"api_server.py", "sanitizer.py"}},
	}
}

func TestBuildScenario(t *testing.T) {
	tasks := scenarioTasks()
	scorer := similarity.NewScorer(hints.NewCache(hints.NewExtractor()), nil)

	clusters := Build(tasks, scorer, 0.2)
	require.NoError(t, CheckPartition(tasks, clusters))

	ui := IndexOf(clusters, "UI-001")
	assert.Equal(t, ui, IndexOf(clusters, "UI-002"), "UI tasks share ui.py")

	for _, id := range []string{"API-001", "API-002", "SEC-001"} {
		assert.NotEqual(t, ui, IndexOf(clusters, id), "%s must not join the UI cluster", id)
	}
	assert.Equal(t, IndexOf(clusters, "API-001"), IndexOf(clusters, "API-002"))
}

func TestBuildEdgeCases(t *testing.T) {
	assert.Empty(t, Build(nil, fileScorer(), 0.3))

	single := Build([]backlog.Task{task("A-1")}, fileScorer(), 0.3)
	require.Len(t, single, 1)
	assert.Equal(t, []string{"A-1"}, single[0].IDs())

	// threshold 0 merges everything, even unrelated tasks
	all := Build([]backlog.Task{task("A-1", "a.py"), task("B-1", "b.py"), task("C-1")}, fileScorer(), 0)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"A-1", "B-1", "C-1"}, all[0].IDs())

	// above 1 nothing merges
	none := Build([]backlog.Task{task("A-1", "a.py"), task("A-2", "a.py")}, fileScorer(), 1.01)
	assert.Len(t, none, 2)
}

func TestBuildSortsBySizeAndBreaksTiesByPosition(t *testing.T) {
	tasks := []backlog.Task{
		task("X-1", "x.py"),
		task("A-1", "a.py"), task("A-2", "a.py"),
		task("B-1", "b.py"), task("B-2", "b.py"), task("B-3", "b.py"),
	}
	clusters := Build(tasks, fileScorer(), 0.3)

	require.Len(t, clusters, 3)
	assert.Equal(t, []string{"B-1", "B-2", "B-3"}, clusters[0].IDs())
	assert.Equal(t, []string{"A-1", "A-2"}, clusters[1].IDs())
	assert.Equal(t, []string{"X-1"}, clusters[2].IDs())
}

func TestBuildAverageLinkage(t *testing.T) {
	// C-1 is close to A-1 only; average linkage keeps it apart from {A-1, A-2}
	tasks := []backlog.Task{
		task("A-1", "a.py", "c.py"),
		task("A-2", "a.py", "b.py"),
		task("C-1", "c.py", "d.py"),
	}
	clusters := Build(tasks, fileScorer(), 0.19)

	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"A-1", "A-2"}, clusters[0].IDs())
	assert.Equal(t, []string{"C-1"}, clusters[1].IDs())
}

func TestName(t *testing.T) {
	clusters := []Cluster{
		{Tasks: []backlog.Task{
			{ID: "SEC-1", Category: "Security"},
			{ID: "SEC-2", Category: "Backend"},
			{ID: "SEC-3", Category: "Backend"},
		}},
		{Tasks: []backlog.Task{
			{ID: "UI-1", Category: "Frontend"},
			{ID: "UI-2", Category: "Design"},
		}},
		{Tasks: []backlog.Task{{ID: "ONB-1"}, {ID: "API-3"}, {ID: "API-4"}}},
		{Tasks: []backlog.Task{{ID: "-1"}}},
	}

	named := Name(clusters)

	assert.Equal(t, "Backend", named[0].Name)
	assert.Equal(t, "Frontend", named[1].Name, "ties go to the first category seen")
	assert.Equal(t, "API Tasks", named[2].Name)
	assert.Equal(t, "Cluster 4", named[3].Name)
}

func TestCheckPartition(t *testing.T) {
	tasks := []backlog.Task{task("A-1"), task("B-1")}

	assert.NoError(t, CheckPartition(tasks, []Cluster{{Tasks: tasks}}))
	assert.Error(t, CheckPartition(tasks, []Cluster{{Tasks: tasks[:1]}}), "missing task")
	assert.Error(t, CheckPartition(tasks, []Cluster{{Tasks: tasks}, {Tasks: tasks[:1]}}), "duplicate task")
	assert.Error(t, CheckPartition(tasks[:1], []Cluster{{Tasks: tasks}}), "unknown task")
	assert.Error(t, CheckPartition(tasks, []Cluster{{Tasks: tasks}, {}}), "empty cluster")
}

func TestClusterHelpers(t *testing.T) {
	c := Cluster{Name: "n", Tasks: []backlog.Task{task("A-1"), task("B-1")}}
	clone := c.Clone()
	clone.Tasks[0].ID = "Z-9"

	assert.Equal(t, "A-1", c.Tasks[0].ID)
	assert.True(t, c.Contains("B-1"))
	assert.False(t, c.Contains("Z-9"))
	assert.Equal(t, []int{2, 1}, Sizes([]Cluster{c, {Tasks: c.Tasks[:1]}}))
	assert.Equal(t, -1, IndexOf([]Cluster{c}, "nope"))
}
