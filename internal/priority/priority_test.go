package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/cluster"
)

func clustersOf(groups ...[]backlog.Task) []cluster.Cluster {
	out := make([]cluster.Cluster, len(groups))
	for i, g := range groups {
		out[i] = cluster.Cluster{Tasks: g}
	}
	return out
}

func TestSerialize(t *testing.T) {
	clusters := clustersOf(
		[]backlog.Task{{ID: "UI-002", Title: "Dark theme"}, {ID: "API-001", Title: "Login"}},
		[]backlog.Task{{ID: "ZED-1", Title: "Misc"}, {ID: "SEC-001", Title: "Escape input"}},
		[]backlog.Task{{ID: "UI-001", Title: "Preferences"}, {ID: "BETA-9", Title: "Beta"}, {ID: "README", Title: "Docs"}},
	)

	got := NewSerializer().Serialize(clusters)

	assert.Equal(t, []string{
		"=== Security (SEC) ===",
		"SEC-001 - Escape input",
		"=== API & Services (API) ===",
		"API-001 - Login",
		"=== UI & Polish (UI) ===",
		"UI-002 - Dark theme",
		"UI-001 - Preferences",
		"=== BETA (BETA) ===",
		"BETA-9 - Beta",
		"=== README (README) ===",
		"README - Docs",
		"=== ZED (ZED) ===",
		"ZED-1 - Misc",
	}, got)
}

func TestSerializeEmpty(t *testing.T) {
	got := NewSerializer().Serialize(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSerializerOptions(t *testing.T) {
	s := NewSerializer(
		WithSections([]Section{{Prefix: "UI", Title: "Frontend"}, {Prefix: "SEC", Title: "Safety"}}),
		WithHeaderFormat("## {title}"),
	)
	clusters := clustersOf([]backlog.Task{{ID: "SEC-1", Title: "a"}, {ID: "UI-1", Title: "b"}})

	assert.Equal(t, []string{"## Frontend", "UI-1 - b", "## Safety", "SEC-1 - a"}, s.Serialize(clusters))
	assert.Equal(t, "=== X (Y) ===", NewSerializer(WithHeaderFormat("")).Header(Section{Prefix: "Y", Title: "X"}))
}

func TestApplyOnlyTouchesPriorityList(t *testing.T) {
	doc, err := backlog.Parse([]byte(`{"meta": {"v": 1}, "tasks": [{"id": "SEC-1", "title": "a"}], "priority_list": ["old"]}`), backlog.FormatJSON)
	require.NoError(t, err)

	previous := NewSerializer().Apply(doc, clustersOf(doc.Tasks))

	assert.Equal(t, []string{"old"}, previous)
	assert.Equal(t, []string{"=== Security (SEC) ===", "SEC-1 - a"}, doc.PriorityList)
	require.Len(t, doc.Tasks, 1)
}

func TestParseEntry(t *testing.T) {
	id, title, ok := ParseEntry("SEC-001 - Escape - all input")
	assert.True(t, ok)
	assert.Equal(t, "SEC-001", id)
	assert.Equal(t, "Escape - all input", title)

	_, _, ok = ParseEntry("=== Security (SEC) ===")
	assert.False(t, ok)

	_, _, ok = ParseEntry("=== Docs - misc (DOC) ===")
	assert.False(t, ok)

	id, title, ok = ParseEntry("Task 1 - Set up repo")
	assert.True(t, ok)
	assert.Equal(t, "Task 1", id)
	assert.Equal(t, "Set up repo", title)

	_, _, ok = ParseEntry(" - nothing")
	assert.False(t, ok)
}

// TestSerialize_Idempotent checks serializing the same clusters twice gives identical output
// and every task appears exactly once
func TestSerialize_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`(SEC|UI|API|ZZ|Q)-[0-9]{1,3}`), n, n, rapid.ID[string]).Draw(t, "ids")

		var clusters []cluster.Cluster
		for len(ids) > 0 {
			k := rapid.IntRange(1, len(ids)).Draw(t, "k")
			c := cluster.Cluster{}
			for _, id := range ids[:k] {
				c.Tasks = append(c.Tasks, backlog.Task{ID: id, Title: "task " + id})
			}
			clusters = append(clusters, c)
			ids = ids[k:]
		}

		s := NewSerializer()
		first, second := s.Serialize(clusters), s.Serialize(clusters)
		if len(first) != len(second) {
			t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("line %d differs: %q vs %q", i, first[i], second[i])
			}
		}

		entries := 0
		for _, line := range first {
			if _, _, ok := ParseEntry(line); ok {
				entries++
			}
		}
		if entries != n {
			t.Fatalf("got %d entries for %d tasks", entries, n)
		}
	})
}
