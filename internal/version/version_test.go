package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	defer func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	}()

	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2026-01-01T12:00:00Z"

	info := GetInfo()

	if info.Version != "1.0.0" {
		t.Errorf("GetInfo().Version = %v, want 1.0.0", info.Version)
	}
	if info.Commit != "abc123def456" {
		t.Errorf("GetInfo().Commit = %v, want abc123def456", info.Commit)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GetInfo().GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("GetInfo().Platform = %v, want %v", info.Platform, want)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		contains []string
		excludes []string
	}{
		{
			name: "long commit is shortened",
			info: Info{Version: "1.2.3", Commit: "abcdef1234567890", Date: "2026-02-01", GoVersion: "go1.25", Platform: "linux/amd64"},
			contains: []string{
				"taskweave 1.2.3",
				"(abcdef12)",
				"built 2026-02-01",
				"with go1.25",
				"for linux/amd64",
			},
			excludes: []string{"abcdef1234567890"},
		},
		{
			name:     "short commit kept",
			info:     Info{Version: "dev", Commit: "abc", Date: "unknown", GoVersion: "go1.25", Platform: "darwin/arm64"},
			contains: []string{"taskweave dev", "(abc)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.info.String()
			for _, want := range tt.contains {
				if !strings.Contains(s, want) {
					t.Errorf("String() = %q, missing %q", s, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(s, unwanted) {
					t.Errorf("String() = %q, should not contain %q", s, unwanted)
				}
			}
		})
	}
}

func TestShort(t *testing.T) {
	if got := (Info{Version: "2.0.0"}).Short(); got != "2.0.0" {
		t.Errorf("Short() = %q, want 2.0.0", got)
	}
}
