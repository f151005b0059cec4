package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
)

const (
	cursorRulesDir = ".cursor/rules"
	cursorRuleFile = "project-context.mdc"
)

// Cursor generates Cursor's project rules. Its target is a directory, which
// exercises the directory-shaped hashing path.
type Cursor struct{}

// NewCursor creates the Cursor adapter.
func NewCursor() *Cursor {
	return &Cursor{}
}

func (a *Cursor) Name() model.Tool {
	return model.Cursor
}

func (a *Cursor) DisplayName() string {
	return "Cursor"
}

func (a *Cursor) Targets() []string {
	return []string{cursorRulesDir}
}

// Generate writes .cursor/rules/project-context.mdc under the project root.
func (a *Cursor) Generate(p *analyzer.Project, _ *config.Config, root string) (*Result, error) {
	content, err := render(cursorTemplate, p)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, filepath.FromSlash(cursorRulesDir))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", cursorRulesDir, err)
	}

	rel := cursorRulesDir + "/" + cursorRuleFile
	// #nosec G306 - context files should be readable
	if err := os.WriteFile(filepath.Join(dir, cursorRuleFile), []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	return &Result{Files: []string{rel}}, nil
}
