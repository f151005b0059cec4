// Package backup snapshots existing tool context files before a propagation
// overwrites them. Snapshots live inside the managed context directory and
// are the undo mechanism for an unwanted regeneration.
package backup

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/logging"
)

const (
	dirName      = "backups"
	manifestName = "manifest.json"

	// DirPerm is the permission for snapshot directories (rwxr-x---).
	DirPerm = 0o750
	// FilePerm is the permission for snapshot files (rw-r-----).
	FilePerm = 0o640

	// DefaultKeep is the number of snapshots retained by Prune when the
	// configured keep count is zero.
	DefaultKeep = 10
)

// Snapshot describes one pre-propagation backup.
type Snapshot struct {
	// ID is the snapshot directory name, ordered by creation time.
	ID string `json:"id"`
	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`
	// Reason records what was about to overwrite the files.
	Reason string `json:"reason,omitempty"`
	// Files lists the captured paths, relative to the project root.
	Files []string `json:"files"`
}

// Dir returns the snapshot directory for a project root.
func Dir(root string) string {
	return filepath.Join(root, config.ContextDir, dirName)
}

// Create snapshots every existing file reachable from the given root-relative
// target paths. Directory targets are captured recursively. It returns nil
// when none of the targets exist yet, without creating a snapshot directory.
func Create(root, reason string, targets []string) (*Snapshot, error) {
	files, err := expandTargets(root, targets)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	snap := &Snapshot{
		// Nanosecond precision keeps IDs unique and lexicographically ordered
		// even for back-to-back propagations.
		ID:        time.Now().UTC().Format("20060102-150405.000000000"),
		CreatedAt: time.Now().UTC(),
		Reason:    reason,
		Files:     files,
	}

	snapDir := filepath.Join(Dir(root), snap.ID)
	for _, rel := range files {
		src := filepath.Join(root, filepath.FromSlash(rel))
		dst := filepath.Join(snapDir, filepath.FromSlash(rel))
		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("failed to snapshot %q: %w", rel, err)
		}
	}

	if err := writeManifest(snapDir, snap); err != nil {
		return nil, err
	}

	logging.Debug("snapshot created",
		logging.Operation("backup"),
		logging.Path(snapDir),
		logging.Count(len(files)),
	)
	return snap, nil
}

// List returns all snapshots for a project root, newest first.
func List(root string) ([]Snapshot, error) {
	entries, err := os.ReadDir(Dir(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snaps []Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		snap, err := readManifest(filepath.Join(Dir(root), entry.Name()))
		if err != nil {
			logging.Warn("skipping snapshot with unreadable manifest",
				logging.Path(entry.Name()),
				logging.Err(err),
			)
			continue
		}
		snaps = append(snaps, *snap)
	}

	// IDs are timestamps, so lexicographic descending is newest first.
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID > snaps[j].ID })
	return snaps, nil
}

// Restore copies every file of the identified snapshot back into the project
// root, overwriting current content.
func Restore(root, id string) (*Snapshot, error) {
	snapDir := filepath.Join(Dir(root), id)
	snap, err := readManifest(snapDir)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q not found: %w", id, err)
	}

	for _, rel := range snap.Files {
		src := filepath.Join(snapDir, filepath.FromSlash(rel))
		dst := filepath.Join(root, filepath.FromSlash(rel))
		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("failed to restore %q: %w", rel, err)
		}
	}

	logging.Info("snapshot restored",
		logging.Operation("backup"),
		logging.Path(snapDir),
		logging.Count(len(snap.Files)),
	)
	return snap, nil
}

// Prune deletes the oldest snapshots beyond keep and returns the removed IDs.
// A keep of zero falls back to DefaultKeep.
func Prune(root string, keep int) ([]string, error) {
	if keep <= 0 {
		keep = DefaultKeep
	}

	snaps, err := List(root)
	if err != nil {
		return nil, err
	}
	if len(snaps) <= keep {
		return nil, nil
	}

	var removed []string
	for _, snap := range snaps[keep:] {
		if err := os.RemoveAll(filepath.Join(Dir(root), snap.ID)); err != nil {
			return removed, err
		}
		removed = append(removed, snap.ID)
	}
	return removed, nil
}

// expandTargets resolves target paths to the existing files beneath them,
// returned as root-relative slash paths.
func expandTargets(root string, targets []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, target := range targets {
		abs := filepath.Join(root, filepath.FromSlash(target))
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		if !info.IsDir() {
			if rel := relPath(root, abs); !seen[rel] {
				seen[rel] = true
				files = append(files, rel)
			}
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if rel := relPath(root, path); !seen[rel] {
				seen[rel] = true
				files = append(files, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 - paths derive from registered targets
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), DirPerm); err != nil {
		return err
	}
	return os.WriteFile(dst, data, FilePerm)
}

func writeManifest(snapDir string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(snapDir, manifestName), data, FilePerm)
}

func readManifest(snapDir string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(snapDir, manifestName)) // #nosec G304 - fixed name under the snapshot dir
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
