// Package state persists the cross-tool sync state as a single JSON
// document inside the project's managed context directory.
//
// The state file is the only shared mutable resource in the system. There is
// no file locking: concurrent external writers can clobber each other's
// history. That is a documented limitation, not a solved problem.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/model"
)

const (
	// Version identifies the on-disk state schema.
	Version = "1.0"

	// ContextDir is the managed context directory relative to the project root.
	ContextDir = ".ai-context"

	stateFileName = "sync-state.json"
)

// HistoryEntry records one completed propagation or full regeneration pass.
// History is append-only; entries are never mutated or deduplicated.
type HistoryEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	Source          string    `json:"source"` // a tool name, or "codebase"
	Strategy        string    `json:"strategy"`
	PropagatedCount int       `json:"propagated_count"`
	ErrorCount      int       `json:"error_count"`
}

// ConflictNote records an unresolved conflict surfaced to the user.
type ConflictNote struct {
	Tool       model.Tool `json:"tool"`
	DetectedAt time.Time  `json:"detected_at"`
	Note       string     `json:"note,omitempty"`
}

// SyncState is the persisted record of each tool's last known content hash.
type SyncState struct {
	Version string `json:"version"`

	// LastSync is nil until the first successful propagation or full
	// regeneration completes.
	LastSync *time.Time `json:"last_sync"`

	// ToolHashes maps each tool to the combined hash of its targets as of
	// the last committed sync.
	ToolHashes map[model.Tool]string `json:"tool_hashes"`

	Conflicts []ConflictNote `json:"conflicts"`

	SyncHistory []HistoryEntry `json:"sync_history"`
}

// NewSyncState returns a fresh empty state.
func NewSyncState() *SyncState {
	return &SyncState{
		Version:     Version,
		ToolHashes:  make(map[model.Tool]string),
		Conflicts:   []ConflictNote{},
		SyncHistory: []HistoryEntry{},
	}
}

// AppendHistory appends one history entry.
func (s *SyncState) AppendHistory(entry HistoryEntry) {
	s.SyncHistory = append(s.SyncHistory, entry)
}

// FilePath returns the state file location for a project root.
func FilePath(root string) string {
	return filepath.Join(root, ContextDir, stateFileName)
}

// Store reads and writes SyncState documents.
type Store struct{}

// NewStore creates a state store.
func NewStore() *Store {
	return &Store{}
}

// Init returns the existing parsed state if the file exists and parses;
// otherwise it writes and returns a fresh empty state. Corrupt JSON is never
// fatal: the file degrades to a fresh state.
func (st *Store) Init(root string) (*SyncState, error) {
	if s := st.Load(root); s != nil {
		return s, nil
	}

	if _, err := os.Stat(FilePath(root)); err == nil {
		logging.Warn("sync state file is corrupt, starting fresh",
			logging.Path(FilePath(root)),
		)
	}

	s := NewSyncState()
	if err := st.Save(root, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Load returns nil if the state file is absent or fails to parse. Callers
// that need a usable state unconditionally should use Init.
func (st *Store) Load(root string) *SyncState {
	data, err := os.ReadFile(FilePath(root)) // #nosec G304 - fixed path under the project root
	if err != nil {
		return nil
	}

	s := NewSyncState()
	if err := json.Unmarshal(data, s); err != nil {
		return nil
	}
	if s.ToolHashes == nil {
		s.ToolHashes = make(map[model.Tool]string)
	}
	return s
}

// Save overwrites the full state document.
func (st *Store) Save(root string, s *SyncState) error {
	path := FilePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// #nosec G306 - state file should be readable by user tooling
	return os.WriteFile(path, data, 0o644)
}
