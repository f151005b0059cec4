package sync

import (
	"path/filepath"

	"github.com/klauern/ctxsync/internal/adapter"
	"github.com/klauern/ctxsync/internal/hash"
	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/model"
	"github.com/klauern/ctxsync/internal/state"
)

// ChangeRecord reports one tool whose content drifted from the stored hash.
type ChangeRecord struct {
	Tool         model.Tool `json:"tool"`
	PreviousHash string     `json:"previous_hash"`
	CurrentHash  string     `json:"current_hash"`
}

// ChangeSet is the outcome of comparing fresh hashes against stored state.
type ChangeSet struct {
	// Changed lists tools whose stored hash existed and now differs. A
	// tool's first-ever observation is never a change.
	Changed []ChangeRecord

	// CurrentHashes has one entry per registered tool, including tools
	// whose targets do not exist (empty hash), so state stays structurally
	// complete after every check.
	CurrentHashes map[model.Tool]string
}

// HasChanged reports whether the given tool appears in Changed.
func (cs *ChangeSet) HasChanged(tool model.Tool) bool {
	for _, c := range cs.Changed {
		if c.Tool == tool {
			return true
		}
	}
	return false
}

// ToolHash computes the combined hash of one tool's targets under root.
// Target order is fixed by the registry, so the combined value is stable.
// When none of the targets exist the result is the empty string, the same
// absent marker a single missing target produces.
func ToolHash(root string, targets []string) (string, error) {
	hashes := make([]string, 0, len(targets))
	any := false
	for _, target := range targets {
		h, err := hash.Target(filepath.Join(root, filepath.FromSlash(target)))
		if err != nil {
			return "", err
		}
		if h != "" {
			any = true
		}
		hashes = append(hashes, h)
	}
	if !any {
		return "", nil
	}
	return hash.Combine(hashes), nil
}

// DetectChanges compares each registered tool's current combined hash
// against the stored state.
func DetectChanges(root string, reg *adapter.Registry, st *state.SyncState) (*ChangeSet, error) {
	cs := &ChangeSet{
		CurrentHashes: make(map[model.Tool]string, len(reg.All())),
	}

	for _, a := range reg.All() {
		tool := a.Name()
		current, err := ToolHash(root, a.Targets())
		if err != nil {
			return nil, err
		}
		cs.CurrentHashes[tool] = current

		// Only a previously stored hash can drift. The map entry check
		// distinguishes "never seen" from "seen with empty hash".
		if previous, seen := st.ToolHashes[tool]; seen && previous != current {
			cs.Changed = append(cs.Changed, ChangeRecord{
				Tool:         tool,
				PreviousHash: previous,
				CurrentHash:  current,
			})
		}
	}

	if len(cs.Changed) > 0 {
		logging.Debug("content drift detected",
			logging.Operation("detect_changes"),
			logging.Count(len(cs.Changed)),
		)
	}

	return cs, nil
}
