// Package analyzer performs a lightweight heuristic scan of a codebase.
// The resulting Project is the shared input for every tool's context
// generator; a failed analysis aborts a propagation before any generator
// runs.
package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/logging"
)

// Project is the result of analyzing a codebase.
type Project struct {
	// Root is the analyzed project root.
	Root string
	// Name is the project name (config override or root directory name).
	Name string
	// Description comes from configuration when set.
	Description string
	// Languages lists detected languages with file counts, largest first.
	Languages []LanguageStat
	// Frameworks lists detected build/runtime ecosystems.
	Frameworks []string
	// Entrypoints lists likely program entrypoints, relative to root.
	Entrypoints []string
	// Directories lists the top-level directories, sorted.
	Directories []string
	// FileCount is the number of files visited.
	FileCount int
	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time
}

// LanguageStat counts files for one detected language.
type LanguageStat struct {
	Name  string
	Files int
}

// extLanguages maps file extensions to language names.
var extLanguages = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".rs":    "Rust",
	".rb":    "Ruby",
	".java":  "Java",
	".kt":    "Kotlin",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".sh":    "Shell",
	".sql":   "SQL",
}

// markerFrameworks maps marker files at the project root to ecosystems.
var markerFrameworks = map[string]string{
	"go.mod":           "Go modules",
	"package.json":     "Node.js",
	"pyproject.toml":   "Python (pyproject)",
	"requirements.txt": "Python (pip)",
	"Cargo.toml":       "Rust (cargo)",
	"pom.xml":          "Java (maven)",
	"build.gradle":     "Java (gradle)",
	"Gemfile":          "Ruby (bundler)",
	"Dockerfile":       "Docker",
	"Makefile":         "Make",
}

// entrypointNames are file names treated as likely program entrypoints.
var entrypointNames = map[string]bool{
	"main.go":  true,
	"main.py":  true,
	"app.py":   true,
	"index.js": true,
	"index.ts": true,
	"main.rs":  true,
}

// Analyze scans the project tree under root and returns its summary.
func Analyze(root string, cfg *config.Config) (*Project, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	excluded := make(map[string]bool)
	maxFiles := 0
	if cfg != nil {
		for _, name := range cfg.Analyzer.Exclude {
			excluded[name] = true
		}
		maxFiles = cfg.Analyzer.MaxFiles
	}

	p := &Project{
		Root:       root,
		Name:       filepath.Base(root),
		AnalyzedAt: time.Now().UTC(),
	}
	if cfg != nil {
		if cfg.Project.Name != "" {
			p.Name = cfg.Project.Name
		}
		p.Description = cfg.Project.Description
	}

	langCounts := make(map[string]int)
	frameworks := make(map[string]bool)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !strings.Contains(rel, string(filepath.Separator)) {
				p.Directories = append(p.Directories, d.Name())
			}
			return nil
		}

		p.FileCount++
		if maxFiles > 0 && p.FileCount > maxFiles {
			return filepath.SkipAll
		}

		if lang, ok := extLanguages[strings.ToLower(filepath.Ext(d.Name()))]; ok {
			langCounts[lang]++
		}
		if fw, ok := markerFrameworks[d.Name()]; ok && rel == d.Name() {
			frameworks[fw] = true
		}
		if entrypointNames[d.Name()] {
			p.Entrypoints = append(p.Entrypoints, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analysis walk failed: %w", err)
	}

	for lang, n := range langCounts {
		p.Languages = append(p.Languages, LanguageStat{Name: lang, Files: n})
	}
	sort.Slice(p.Languages, func(i, j int) bool {
		if p.Languages[i].Files != p.Languages[j].Files {
			return p.Languages[i].Files > p.Languages[j].Files
		}
		return p.Languages[i].Name < p.Languages[j].Name
	})

	for fw := range frameworks {
		p.Frameworks = append(p.Frameworks, fw)
	}
	sort.Strings(p.Frameworks)
	sort.Strings(p.Directories)
	sort.Strings(p.Entrypoints)

	logging.Debug("project analyzed",
		logging.Path(root),
		logging.Count(p.FileCount),
	)

	return p, nil
}

// PrimaryLanguage returns the most common detected language, or empty.
func (p *Project) PrimaryLanguage() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0].Name
}
