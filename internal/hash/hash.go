// Package hash computes deterministic content hashes for sync targets.
// A target may be a single file or a directory tree; both produce a single
// hex digest so downstream change detection is target-shape-agnostic.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Separator joins per-target hashes into one combined tool hash.
// Target order must stay stable so the combined value is comparable
// across runs.
const Separator = ":"

// File hashes the raw bytes of a single file. A missing file yields an
// empty hash and no error; absence is a normal state, not a failure.
func File(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - paths come from the static tool registry
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Directory hashes an entire directory tree. Files are enumerated
// recursively and folded into one digest in sorted relative-path order, so
// the result is independent of OS listing order but changes when any file's
// bytes change or when files are added, removed, or renamed.
// A missing directory yields an empty hash and no error.
func Directory(path string) (string, error) {
	var files []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to walk %s: %w", path, err)
	}
	sort.Strings(files)

	h := sha256.New()
	for _, f := range files {
		rel, err := filepath.Rel(path, f)
		if err != nil {
			rel = f
		}
		// The relative path participates in the digest so renames are
		// detected even when bytes are unchanged.
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})

		data, err := os.ReadFile(f) // #nosec G304 - enumerated under the watched target
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", f, err)
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Target hashes a file or directory target, dispatching on its on-disk
// shape. A missing target yields an empty hash and no error.
func Target(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Directory(path)
	}
	return File(path)
}

// Combine joins per-target hashes into one comparable tool hash.
func Combine(hashes []string) string {
	return strings.Join(hashes, Separator)
}
