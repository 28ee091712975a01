package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Level: "debug", JSON: true, Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Debug().Str("moves", "34").Msg("advisor replied")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if entry["message"] != "advisor replied" || entry["moves"] != "34" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["caller"]; !ok {
		t.Error("caller missing")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Level: "warn", JSON: true, Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	log.Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged: %q", buf.String())
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	if _, err := NewLogger(Options{Level: "loud"}); err == nil {
		t.Error("NewLogger accepted an unknown level")
	}
}

func TestShortCaller(t *testing.T) {
	got := shortCaller(0, "/src/internal/game/turn.go", 42)
	if !strings.HasPrefix(got, "turn.go:42") || len(got) != 24 {
		t.Errorf("shortCaller = %q", got)
	}
}
