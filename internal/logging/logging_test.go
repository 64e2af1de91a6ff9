package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "patientboard.log")
	l, closeFn, err := Setup(Config{Path: path})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	l.Info().Str("request_id", "r1").Msg("post")
	l.Debug().Msg("hidden")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected init + post lines, got %d: %q", len(lines), string(b))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["message"] != "post" || rec["request_id"] != "r1" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Fatalf("expected a timestamp: %v", rec)
	}
}

func TestSetup_EmptyPathDiscards(t *testing.T) {
	l, closeFn, err := Setup(Config{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	l.Info().Msg("nowhere")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
