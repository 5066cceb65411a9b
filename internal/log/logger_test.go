package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

func jsonLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{
		Level:  level,
		Format: FormatJSON,
		Output: NewOutput(buf),
	})
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestPresetConfigs(t *testing.T) {
	tests := []struct {
		name    string
		newFunc func() *Logger
		want    func(Config) bool
	}{
		{"Default", Default, func(c Config) bool {
			return c.Level == LevelInfo && c.Format == FormatText && c.ServiceName == "taskweave"
		}},
		{"Development", Development, func(c Config) bool {
			return c.Level == LevelDebug && c.AddSource
		}},
		{"Production", Production, func(c Config) bool {
			return c.Level == LevelInfo && c.Format == FormatJSON && !c.AddSource
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := tt.newFunc()
			if !tt.want(logger.Config()) {
				t.Errorf("unexpected config: %+v", logger.Config())
			}
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected no output below warn, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected output for warn message")
	}
}

func TestServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = FormatJSON
	cfg.Output = NewOutput(&buf)
	cfg.ServiceVersion = "1.2.3"

	New(cfg).Info("hello")

	entry := decode(t, &buf)
	if entry["service"] != "taskweave" {
		t.Errorf("service = %v, want taskweave", entry["service"])
	}
	if entry["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", entry["version"])
	}
}

func TestTextFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: NewOutput(&buf)})

	logger.Info("clusters built", "count", 4)

	out := buf.String()
	for _, want := range []string{"clusters built", "count=4", "INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestWithRunAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, LevelInfo).WithRun("run-1").WithGroup("order")

	logger.Info("cycle broken", "from", 2)

	entry := decode(t, &buf)
	if entry["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", entry["run_id"])
	}
	group, ok := entry["order"].(map[string]interface{})
	if !ok || group["from"] != float64(2) {
		t.Errorf("expected grouped attribute, got %v", entry)
	}
}

func TestWithErrorCoded(t *testing.T) {
	var buf bytes.Buffer
	err := errors.NewLockBusyError("backlog.json")

	jsonLogger(&buf, LevelInfo).WithError(err).Warn("skipping run")

	entry := decode(t, &buf)
	if entry["error_code"] != "LOCK-001" {
		t.Errorf("error_code = %v, want LOCK-001", entry["error_code"])
	}
	if _, ok := entry["suggestions"]; !ok {
		t.Error("expected suggestions field")
	}
}

func TestWithErrorNil(t *testing.T) {
	logger := Discard()
	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestLogError(t *testing.T) {
	t.Run("coded error with cause", func(t *testing.T) {
		var buf bytes.Buffer
		err := errors.NewDocWriteError("backlog.json", fmt.Errorf("permission denied"))

		jsonLogger(&buf, LevelInfo).LogError(err)

		entry := decode(t, &buf)
		if entry["error_code"] != "DOC-003" {
			t.Errorf("error_code = %v, want DOC-003", entry["error_code"])
		}
		if entry["cause"] != "permission denied" {
			t.Errorf("cause = %v, want permission denied", entry["cause"])
		}
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		jsonLogger(&buf, LevelInfo).LogError(fmt.Errorf("boom"))

		entry := decode(t, &buf)
		if entry["error_message"] != "boom" {
			t.Errorf("error_message = %v, want boom", entry["error_message"])
		}
	})

	t.Run("nil error", func(t *testing.T) {
		var buf bytes.Buffer
		jsonLogger(&buf, LevelInfo).LogError(nil)
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %s", buf.String())
		}
	})
}
