// Package adapter defines the per-tool context generators and their static
// registry. Each supported AI coding assistant owns a fixed set of on-disk
// targets; adapters render those targets from a shared project analysis.
package adapter

import (
	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
)

// Result describes the files an adapter produced.
type Result struct {
	// Files lists the written paths, relative to the project root.
	Files []string
}

// ContextAdapter generates one tool's context files from a shared analysis.
type ContextAdapter interface {
	// Name returns the tool this adapter serves.
	Name() model.Tool

	// DisplayName returns the human-facing tool name.
	DisplayName() string

	// Targets returns the tool's on-disk targets relative to the project
	// root. Targets are fixed at compile time, not discovered at runtime.
	Targets() []string

	// Generate renders the tool's context files under root.
	Generate(p *analyzer.Project, cfg *config.Config, root string) (*Result, error)
}

// Registry holds the fixed tool→adapter mapping, registered once and
// resolved by name.
type Registry struct {
	adapters []ContextAdapter
	byName   map[model.Tool]ContextAdapter
}

// NewRegistry creates a registry from the given adapters, preserving order.
func NewRegistry(adapters ...ContextAdapter) *Registry {
	r := &Registry{
		adapters: adapters,
		byName:   make(map[model.Tool]ContextAdapter, len(adapters)),
	}
	for _, a := range adapters {
		r.byName[a.Name()] = a
	}
	return r
}

// DefaultRegistry returns the registry of all supported tools.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewClaude(),
		NewCursor(),
		NewCodex(),
		NewCopilot(),
	)
}

// Get resolves an adapter by tool name.
func (r *Registry) Get(tool model.Tool) (ContextAdapter, bool) {
	a, ok := r.byName[tool]
	return a, ok
}

// All returns the registered adapters in registration order.
func (r *Registry) All() []ContextAdapter {
	return r.adapters
}

// Tools returns the registered tool names in registration order.
func (r *Registry) Tools() []model.Tool {
	tools := make([]model.Tool, 0, len(r.adapters))
	for _, a := range r.adapters {
		tools = append(tools, a.Name())
	}
	return tools
}

// Targets returns the target paths for a tool, or nil if unregistered.
func (r *Registry) Targets(tool model.Tool) []string {
	if a, ok := r.byName[tool]; ok {
		return a.Targets()
	}
	return nil
}
