package adapter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
)

const (
	codexAgentsTarget = "AGENTS.md"
	codexConfigTarget = ".codex/config.toml"
)

// Codex generates AGENTS.md and keeps the instructions pointer in
// .codex/config.toml current. User-managed keys in an existing config are
// preserved through the round-trip.
type Codex struct{}

// NewCodex creates the Codex adapter.
func NewCodex() *Codex {
	return &Codex{}
}

func (a *Codex) Name() model.Tool {
	return model.Codex
}

func (a *Codex) DisplayName() string {
	return "OpenAI Codex"
}

func (a *Codex) Targets() []string {
	return []string{codexAgentsTarget, codexConfigTarget}
}

// Generate writes AGENTS.md and updates .codex/config.toml.
func (a *Codex) Generate(p *analyzer.Project, _ *config.Config, root string) (*Result, error) {
	content, err := render(codexTemplate, p)
	if err != nil {
		return nil, err
	}

	agentsPath := filepath.Join(root, codexAgentsTarget)
	// #nosec G306 - context files should be readable
	if err := os.WriteFile(agentsPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", codexAgentsTarget, err)
	}

	if err := a.updateConfig(p, root); err != nil {
		return nil, err
	}

	return &Result{Files: []string{codexAgentsTarget, codexConfigTarget}}, nil
}

// updateConfig round-trips .codex/config.toml, pointing its instructions at
// the generated AGENTS.md while keeping all other keys intact.
func (a *Codex) updateConfig(p *analyzer.Project, root string) error {
	path := filepath.Join(root, filepath.FromSlash(codexConfigTarget))

	cfg := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil { // #nosec G304 - fixed target path
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", codexConfigTarget, err)
		}
	}
	cfg["instructions"] = fmt.Sprintf("Project context for %s is maintained in AGENTS.md.", p.Name)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create .codex: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode %s: %w", codexConfigTarget, err)
	}

	// #nosec G306 - context files should be readable
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", codexConfigTarget, err)
	}
	return nil
}
