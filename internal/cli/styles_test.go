package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestKeyValuesAlignsValues(t *testing.T) {
	out := KeyValues([2]string{"Income", "1"}, [2]string{"Net balance", "2"})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), out)
	}
	if strings.Index(lines[0], "1") != strings.Index(lines[1], "2") {
		t.Errorf("values not aligned:\n%s", out)
	}
}

func TestScoreStyle(t *testing.T) {
	if ScoreStyle(85).GetForeground() != SuccessStyle.GetForeground() {
		t.Error("85 should use the success colour")
	}
	if ScoreStyle(60).GetForeground() != WarningStyle.GetForeground() {
		t.Error("60 should use the warning colour")
	}
	if ScoreStyle(10).GetForeground() != ErrorStyle.GetForeground() {
		t.Error("10 should use the error colour")
	}
}

func TestNewProgressWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf, 2, "Importing")
	_ = bar.Add(2)
	if !strings.Contains(buf.String(), "2/2") {
		t.Errorf("progress output = %q", buf.String())
	}
}
