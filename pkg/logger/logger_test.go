package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestInitText(t *testing.T) {
	defer Discard()
	var buf bytes.Buffer
	if err := Init(Config{Level: LevelWarn, Format: "text", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	Info("hidden")
	Warn("shown", "node", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "node=3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestInitJSON(t *testing.T) {
	defer Discard()
	var buf bytes.Buffer
	if err := Init(Config{Level: LevelDebug, Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	With("block", 2).Debug("assign", "symbol", "t0")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "assign" || rec["symbol"] != "t0" || rec["block"] != float64(2) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestInitRejectsFormat(t *testing.T) {
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDiscardByDefault(t *testing.T) {
	Discard()
	// must not panic or write anywhere
	LogPhase("lower")
	LogPhaseComplete("lower", "nodes", 4)
	Error("ignored")
}
