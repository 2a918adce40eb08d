package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	simerrors "github.com/YuminosukeSato/simulix/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	logger.Debug("hidden")
	logger.Info("visible", IterationKey, 3)
	logger.Warn("careful", MethodKey, "geometric")
	logger.Error("failed", "error", fmt.Errorf("boom"))

	if strings.Contains(buffer.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	for _, msg := range []string{"visible", "careful", "failed"} {
		if !logger.ContainsMessage(msg) {
			t.Errorf("expected %q in output", msg)
		}
	}
	if !logger.ContainsField(IterationKey, 3.0) {
		t.Error("iteration field missing")
	}
	if !logger.ContainsField("error", "boom") {
		t.Error("error field should be stringified")
	}
	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should not be enabled")
	}
}

func TestTestLoggerWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	child := logger.With(ComponentKey, "cluster", ClustersKey, 3)
	child.Info("step", OperationKey, OperationStep)

	entries, err := logger.GetLogEntries()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	want := map[string]interface{}{
		ComponentKey: "cluster",
		ClustersKey:  3.0,
		OperationKey: OperationStep,
		"level":      "INFO",
	}
	for k, v := range want {
		if entries[0][k] != v {
			t.Errorf("%s = %v, want %v", k, entries[0][k], v)
		}
	}
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	logger := p.GetLoggerWithName("anneal")
	logger.Debug("not emitted")
	logger.Info("annealing step", TemperatureKey, 12.5, IterationKey, 40)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["logger"] != "anneal" || rec["message"] != "annealing step" {
		t.Errorf("unexpected record %v", rec)
	}
	if rec[TemperatureKey] != 12.5 {
		t.Errorf("temperature = %v", rec[TemperatureKey])
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	p.SetLevel(LevelDebug)
	if !p.GetLogger().Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be enabled after SetLevel")
	}
}

func TestWarningsRouteToProvider(t *testing.T) {
	var buf bytes.Buffer
	SetProvider(NewZerologProvider(&buf, LevelWarn))
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelWarn))

	simerrors.Warn(simerrors.NewModelFitWarning(12, "weights too large", 2500))

	out := buf.String()
	if !strings.Contains(out, "ModelFitWarning") {
		t.Errorf("expected structured warning object, got %q", out)
	}
	if !strings.Contains(out, `"degree":12`) {
		t.Errorf("expected degree field, got %q", out)
	}
}

func TestTestProviderReceivesWarnings(t *testing.T) {
	p, logger := NewTestLoggerProvider(LevelDebug)
	SetProvider(p)
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelWarn))

	GetLoggerWithName("bootstrap").Info("resampled", ResamplesKey, 200)
	simerrors.Warn(simerrors.NewConvergenceWarning("EM", 50, ""))

	if !logger.ContainsField("logger", "bootstrap") {
		t.Error("named logger field missing")
	}
	if !logger.ContainsMessage("EM failed to converge after 50 iterations") {
		t.Error("warning not routed to test provider")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	if err := SetupLogger("info", &buf); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelWarn))

	GetLogger().Info("configured")
	if !strings.Contains(buf.String(), "configured") {
		t.Error("provider should write to the configured writer")
	}
	if err := SetupLogger("loud", &buf); err == nil {
		t.Error("expected error for invalid level")
	}
}
