package domain

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genTaskID generates ids shaped like backlog ids: PREFIX-NNN with optional suffixes
func genTaskID() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Z]{1,6}(-[0-9]{1,4}){0,2}`)
}

// TestTaskID_PrefixIsLeadingSegment checks Prefix against a split on the first hyphen
func TestTaskID_PrefixIsLeadingSegment(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := genTaskID().Draw(t, "id")

		id, err := NewTaskID(raw)
		if err != nil {
			t.Fatalf("generated id %q should be valid: %v", raw, err)
		}

		want := strings.SplitN(raw, "-", 2)[0]
		if id.Prefix() != want {
			t.Fatalf("Prefix(%q) = %q, want %q", raw, id.Prefix(), want)
		}
		if !strings.HasPrefix(raw, id.Prefix()) {
			t.Fatalf("Prefix(%q) = %q is not a prefix of the id", raw, id.Prefix())
		}
	})
}

// TestPhase_OrderIsTotal checks IsBefore is a strict total order over valid phases
func TestPhase_OrderIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SampledFrom(Phases()).Draw(t, "a")
		b := rapid.SampledFrom(Phases()).Draw(t, "b")

		if a.IsBefore(a) {
			t.Fatalf("%s.IsBefore(itself) should be false", a)
		}
		if a != b && a.IsBefore(b) == b.IsBefore(a) {
			t.Fatalf("exactly one of %s, %s should come first", a, b)
		}
	})
}

// TestPhase_InvalidFail checks arbitrary strings outside the phase set are rejected
func TestPhase_InvalidFail(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-z]{1,12}`).Filter(func(s string) bool {
			return s != "foundational" && s != "other"
		}).Draw(t, "phase")

		if _, err := NewPhase(s); err == nil {
			t.Fatalf("phase %q should fail validation", s)
		}
	})
}
