package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf})

	logger.Debug("hello", Tool("cursor"))

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "tool=cursor") {
		t.Errorf("expected tool attribute in output, got %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Output: &buf, JSON: true})

	logger.Info("sync complete", Count(3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "sync complete" {
		t.Errorf("expected msg 'sync complete', got %v", entry["msg"])
	}
	if entry[KeyCount] != float64(3) {
		t.Errorf("expected count 3, got %v", entry[KeyCount])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Output: &buf})

	logger.Info("not shown")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message should pass at warn level")
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watch.log")

	logger := New(Options{
		Level: LevelInfo,
		File:  FileOptions{Path: path},
	})
	logger.Info("background sync started")

	// lumberjack creates the file lazily on first write
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if !strings.Contains(string(data), "background sync started") {
		t.Errorf("expected log line in file, got %q", data)
	}
}

func TestErrNilAttr(t *testing.T) {
	attr := Err(nil)
	if !attr.Equal(slog.Attr{}) {
		t.Errorf("Err(nil) should return empty attr, got %v", attr)
	}
}
