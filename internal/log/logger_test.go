package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentLedger, Output: &buf})
	l.InfoContext(context.Background(), "Transaction created", FieldID, "t1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentLedger || rec[FieldID] != "t1" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithComponent(ComponentHTTP).WithError(errors.New("boom")).WithRequestID("").WithHTTPResponse(404, 12)
	if f[FieldError] != "boom" || f[FieldSuccess] != false {
		t.Fatalf("unexpected fields %v", f)
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Fatal("empty request id should be omitted")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatal("ToSlice() should flatten every pair")
	}
}

func TestContextCarriesLogger(t *testing.T) {
	l := New(Config{Component: "test", Output: &bytes.Buffer{}})
	if got := FromContext(WithContext(context.Background(), l)); got != l {
		t.Fatal("expected logger from context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}
