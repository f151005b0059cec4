package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
)

const copilotTarget = ".github/copilot-instructions.md"

// Copilot generates the GitHub Copilot instructions file.
type Copilot struct{}

// NewCopilot creates the Copilot adapter.
func NewCopilot() *Copilot {
	return &Copilot{}
}

func (a *Copilot) Name() model.Tool {
	return model.Copilot
}

func (a *Copilot) DisplayName() string {
	return "GitHub Copilot"
}

func (a *Copilot) Targets() []string {
	return []string{copilotTarget}
}

// Generate writes .github/copilot-instructions.md under the project root.
func (a *Copilot) Generate(p *analyzer.Project, _ *config.Config, root string) (*Result, error) {
	content, err := render(copilotTemplate, p)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(root, filepath.FromSlash(copilotTarget))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create .github: %w", err)
	}
	// #nosec G306 - context files should be readable
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", copilotTarget, err)
	}

	return &Result{Files: []string{copilotTarget}}, nil
}
