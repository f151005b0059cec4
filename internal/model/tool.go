// Package model defines the core types shared across ctxsync packages.
package model

import (
	"fmt"
	"strings"
)

// Tool represents a supported AI coding assistant, each owning its own
// on-disk context file(s).
type Tool string

const (
	ClaudeCode Tool = "claude-code"
	Cursor     Tool = "cursor"
	Codex      Tool = "codex"
	Copilot    Tool = "copilot"
)

// SourceCodebase is the pseudo-source recorded in sync history when content
// is regenerated for every tool directly from the codebase rather than
// propagated from one tool.
const SourceCodebase = "codebase"

// IsValid returns true if the tool is recognized.
func (t Tool) IsValid() bool {
	switch t {
	case ClaudeCode, Cursor, Codex, Copilot:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tool.
func (t Tool) String() string {
	return string(t)
}

// AllTools returns all supported tools in registration order.
func AllTools() []Tool {
	return []Tool{ClaudeCode, Cursor, Codex, Copilot}
}

// ParseTool converts a user-provided string into a Tool.
// Accepts common aliases (e.g. "claude", "claudecode").
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude", "claudecode", "claude-code":
		return ClaudeCode, nil
	case "cursor":
		return Cursor, nil
	case "codex":
		return Codex, nil
	case "copilot", "github-copilot":
		return Copilot, nil
	default:
		return "", fmt.Errorf("unknown tool %q (supported: claude-code, cursor, codex, copilot)", s)
	}
}
