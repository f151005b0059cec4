package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/ctxsync/internal/logging"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

// runCapture executes the CLI and returns captured stdout.
func runCapture(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := Run(context.Background(), args)

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("failed to close pipe reader: %v", err)
	}

	return buf.String(), runErr
}

// newProjectRoot creates a small analyzable project directory.
func newProjectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/demo\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return root
}

func TestConfigureLogging(t *testing.T) {
	tests := map[string]struct {
		args      []string
		wantDebug bool
	}{
		"no flags defaults to warn level": {
			args:      []string{"ctxsync", "version"},
			wantDebug: false,
		},
		"verbose flag enables info level": {
			args:      []string{"ctxsync", "--verbose", "version"},
			wantDebug: false,
		},
		"debug flag enables debug level": {
			args:      []string{"ctxsync", "--debug", "version"},
			wantDebug: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			logging.SetDefault(logging.New(logging.DefaultOptions()))

			if _, err := runCapture(t, tt.args...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			enabled := slog.Default().Enabled(context.Background(), slog.LevelDebug)
			if enabled != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", enabled, tt.wantDebug)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCapture(t, "ctxsync", "version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "ctxsync version") {
		t.Errorf("output = %q, want version banner", out)
	}
}

func TestStatusCommandFreshProject(t *testing.T) {
	root := newProjectRoot(t)

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "status")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "Last sync: never") {
		t.Errorf("output = %q, want never-synced marker", out)
	}
	if !strings.Contains(out, "not generated") {
		t.Errorf("output = %q, want not-generated tools", out)
	}
	if !strings.Contains(out, "in sync") {
		t.Errorf("output = %q, want in-sync summary", out)
	}
}

func TestStatusCommandJSON(t *testing.T) {
	root := newProjectRoot(t)

	out, err := runCapture(t, "ctxsync", "--root", root, "status", "--json")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, `"in_sync": true`) {
		t.Errorf("output = %q, want in_sync true", out)
	}
}

func TestRegenerateCommand(t *testing.T) {
	root := newProjectRoot(t)

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "regenerate")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "regenerated 4 tool context(s)") {
		t.Errorf("output = %q, want regeneration summary", out)
	}

	for _, f := range []string{"CLAUDE.md", "AGENTS.md"} {
		if _, err := os.Stat(filepath.Join(root, f)); err != nil {
			t.Errorf("expected %s to exist: %v", f, err)
		}
	}
}

func TestStatusDetectsDriftAfterEdit(t *testing.T) {
	root := newProjectRoot(t)

	if _, err := runCapture(t, "ctxsync", "--root", root, "regenerate"); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("hand edited"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "status")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "modified since last sync") {
		t.Errorf("output = %q, want drift marker", out)
	}
}

func TestResolveCommandRegenerateAll(t *testing.T) {
	root := newProjectRoot(t)

	if _, err := runCapture(t, "ctxsync", "--root", root, "regenerate"); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("hand edited"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "resolve", "--strategy", "regenerate_all")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "resolved with regenerate_all") {
		t.Errorf("output = %q, want resolution summary", out)
	}
}

func TestResolveCommandSourceWinsGuard(t *testing.T) {
	root := newProjectRoot(t)

	if _, err := runCapture(t, "ctxsync", "--root", root, "regenerate"); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("hand edited"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "resolve", "--strategy", "source_wins")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "requires a preferred tool") {
		t.Errorf("output = %q, want source_wins guard message", out)
	}
}

func TestResolveCommandInvalidStrategy(t *testing.T) {
	root := newProjectRoot(t)

	if _, err := runCapture(t, "ctxsync", "--root", root, "resolve", "--strategy", "nope"); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestHistoryCommand(t *testing.T) {
	root := newProjectRoot(t)

	out, err := runCapture(t, "ctxsync", "--root", root, "history")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "No sync history recorded") {
		t.Errorf("output = %q, want empty-history message", out)
	}

	if _, err := runCapture(t, "ctxsync", "--root", root, "regenerate"); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}

	out, err = runCapture(t, "ctxsync", "--no-color", "--root", root, "history")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "codebase") || !strings.Contains(out, "regenerate_all") {
		t.Errorf("output = %q, want recorded regeneration entry", out)
	}
}

func TestBackupsListEmpty(t *testing.T) {
	root := newProjectRoot(t)

	out, err := runCapture(t, "ctxsync", "--root", root, "backups", "list")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "No snapshots found") {
		t.Errorf("output = %q, want empty-snapshots message", out)
	}
}

func TestBackupsRestoreRoundTrip(t *testing.T) {
	root := newProjectRoot(t)

	if _, err := runCapture(t, "ctxsync", "--root", root, "regenerate"); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("precious edit"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Regenerating overwrites the edit but snapshots it first.
	if _, err := runCapture(t, "ctxsync", "--root", root, "regenerate"); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "backups", "list")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "Snapshots") {
		t.Fatalf("output = %q, want a snapshot listing", out)
	}

	// First field of the first entry line is the snapshot ID.
	var id string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.HasPrefix(fields[0], "20") {
			id = fields[0]
			break
		}
	}
	if id == "" {
		t.Fatalf("no snapshot ID found in output %q", out)
	}

	if _, err := runCapture(t, "ctxsync", "--root", root, "backups", "restore", id); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "CLAUDE.md"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "precious edit" {
		t.Errorf("CLAUDE.md = %q, want the restored edit", data)
	}
}

func TestBackupsRestoreRequiresID(t *testing.T) {
	root := newProjectRoot(t)
	if _, err := runCapture(t, "ctxsync", "--root", root, "backups", "restore"); err == nil {
		t.Error("expected error when no snapshot ID is given")
	}
}

func TestConfigCommand(t *testing.T) {
	root := newProjectRoot(t)

	out, err := runCapture(t, "ctxsync", "--no-color", "--root", root, "config")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "default_strategy: source_wins") {
		t.Errorf("output = %q, want default strategy", out)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	root := newProjectRoot(t)

	if _, err := runCapture(t, "ctxsync", "--root", root, "config", "--init"); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := runCapture(t, "ctxsync", "--root", root, "config", "--init"); err == nil {
		t.Error("expected second init to refuse overwriting")
	}
}
