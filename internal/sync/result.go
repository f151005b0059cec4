package sync

import (
	"time"

	"github.com/klauern/ctxsync/internal/model"
)

// PropagatedTool records one tool whose context was regenerated.
type PropagatedTool struct {
	Tool  model.Tool `json:"tool"`
	Files []string   `json:"files"`
}

// PropagationError records one tool whose generator failed.
type PropagationError struct {
	Tool    model.Tool `json:"tool"`
	Message string     `json:"message"`
}

// PropagationResult is the outcome of one propagation or full regeneration
// attempt. Generator failures are collected here per tool; they never abort
// the remaining tools.
type PropagationResult struct {
	// Source is the originating tool name, or "codebase" for full
	// regeneration.
	Source    string    `json:"source"`
	Strategy  Strategy  `json:"strategy"`
	Timestamp time.Time `json:"timestamp"`

	// Propagated lists tools regenerated successfully. It never includes
	// the source tool.
	Propagated []PropagatedTool `json:"propagated"`

	// Skipped lists tools excluded from the fan-out (the source).
	Skipped []model.Tool `json:"skipped"`

	// Errors lists per-tool generator failures.
	Errors []PropagationError `json:"errors"`
}

// Success returns true when every attempted generator succeeded. Side
// effects from tools that already succeeded persist regardless.
func (r *PropagationResult) Success() bool {
	return len(r.Errors) == 0
}

// ToolStatus describes one tool within a sync status report.
type ToolStatus struct {
	// Exists is true when at least one of the tool's targets is on disk.
	Exists bool `json:"exists"`
	// HasChanges is true when the tool's content drifted from stored state.
	HasChanges bool `json:"has_changes"`
	// Hash is the tool's current combined content hash.
	Hash string `json:"hash"`
	// PreviousHash is the stored hash, empty when the tool was never synced.
	PreviousHash string `json:"previous_hash"`
}

// Status is a point-in-time sync report. Producing it never writes state.
type Status struct {
	InSync   bool                      `json:"in_sync"`
	LastSync *time.Time                `json:"last_sync"`
	Tools    map[model.Tool]ToolStatus `json:"tools"`
	Changed  []ChangeRecord            `json:"changed_tools,omitempty"`
}

// Resolution is the outcome of a conflict-resolution request.
type Resolution struct {
	// Resolved is true when a propagation was carried out (or no conflict
	// existed in the first place).
	Resolved bool `json:"resolved"`
	// Strategy is the strategy that was applied.
	Strategy Strategy `json:"strategy"`
	// Source is the tool chosen as the source of truth, when one was.
	Source string `json:"source,omitempty"`
	// Reason explains why nothing was resolved, when Resolved is false.
	Reason string `json:"reason,omitempty"`
	// Status carries the current sync status for unresolved conflicts so
	// an external UI can drive resolution.
	Status *Status `json:"status,omitempty"`
	// Result is the propagation outcome, when one ran.
	Result *PropagationResult `json:"result,omitempty"`
}
