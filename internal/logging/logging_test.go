package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"auto", FormatAuto},
		{"", FormatAuto},
		{"yaml", FormatAuto},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.expected {
			t.Errorf("ParseFormat(%q): expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug {
		t.Error("expected debug level")
	}
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Error("expected warn level")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Error("expected info fallback")
	}
}

func TestInitWriterAutoUsesJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, FormatAuto)

	Component("segment").Info("windows aggregated", "windows", 8)

	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Fatalf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"component":"segment"`) {
		t.Errorf("missing component attribute: %s", out)
	}
	if !strings.Contains(out, `"windows":8`) {
		t.Errorf("missing windows attribute: %s", out)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, FormatText)

	runID := NewRunID()
	if _, err := uuid.Parse(runID); err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}

	ctx := ContextWithRunID(context.Background(), runID)
	ctx = ContextWithIdentity(ctx, "abc")

	got, ok := RunIDFromContext(ctx)
	if !ok || got != runID {
		t.Errorf("expected run id %s, got %s", runID, got)
	}

	ComponentContext(ctx, "pipeline").Info("run started")

	out := buf.String()
	if !strings.Contains(out, "run_id="+runID) {
		t.Errorf("missing run_id: %s", out)
	}
	if !strings.Contains(out, "identity=abc") {
		t.Errorf("missing identity: %s", out)
	}
	if !strings.Contains(out, "component=pipeline") {
		t.Errorf("missing component: %s", out)
	}
}
