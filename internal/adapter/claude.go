package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
)

const claudeTarget = "CLAUDE.md"

// Claude generates the Claude Code context file.
type Claude struct{}

// NewClaude creates the Claude Code adapter.
func NewClaude() *Claude {
	return &Claude{}
}

func (a *Claude) Name() model.Tool {
	return model.ClaudeCode
}

func (a *Claude) DisplayName() string {
	return "Claude Code"
}

func (a *Claude) Targets() []string {
	return []string{claudeTarget}
}

// Generate writes CLAUDE.md at the project root.
func (a *Claude) Generate(p *analyzer.Project, _ *config.Config, root string) (*Result, error) {
	content, err := render(claudeTemplate, p)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(root, claudeTarget)
	// #nosec G306 - context files should be readable
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", claudeTarget, err)
	}

	return &Result{Files: []string{claudeTarget}}, nil
}
