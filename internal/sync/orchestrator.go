package sync

import (
	"fmt"
	"time"

	"github.com/klauern/ctxsync/internal/adapter"
	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/backup"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/model"
	"github.com/klauern/ctxsync/internal/state"
)

// AnalyzeFunc re-analyzes the project. Analysis is a shared precondition for
// every tool's regeneration: an error here is fatal to the whole propagation
// and no generator runs.
type AnalyzeFunc func(root string, cfg *config.Config) (*analyzer.Project, error)

// Orchestrator re-runs analysis, fans regeneration out across tool
// adapters, and commits sync state exactly once per attempt.
type Orchestrator struct {
	registry *adapter.Registry
	store    *state.Store
	analyze  AnalyzeFunc

	// OnAdapterDone, when set, is called after each generator attempt.
	// Used by the CLI for progress reporting.
	OnAdapterDone func(tool model.Tool, err error)
}

// NewOrchestrator creates an orchestrator. A nil analyze falls back to the
// built-in analyzer.
func NewOrchestrator(reg *adapter.Registry, store *state.Store, analyze AnalyzeFunc) *Orchestrator {
	if analyze == nil {
		analyze = analyzer.Analyze
	}
	return &Orchestrator{
		registry: reg,
		store:    store,
		analyze:  analyze,
	}
}

// Registry returns the orchestrator's tool registry.
func (o *Orchestrator) Registry() *adapter.Registry {
	return o.registry
}

// CheckSyncStatus loads (or initializes) state, detects drift, and reports
// per-tool status. It is a pure read: nothing beyond first-run state
// initialization is persisted.
func (o *Orchestrator) CheckSyncStatus(root string) (*Status, error) {
	st, err := o.store.Init(root)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sync state: %w", err)
	}

	cs, err := DetectChanges(root, o.registry, st)
	if err != nil {
		return nil, fmt.Errorf("change detection failed: %w", err)
	}

	status := &Status{
		InSync:   len(cs.Changed) == 0,
		LastSync: st.LastSync,
		Tools:    make(map[model.Tool]ToolStatus, len(o.registry.All())),
		Changed:  cs.Changed,
	}

	for tool, current := range cs.CurrentHashes {
		status.Tools[tool] = ToolStatus{
			Exists:       current != "",
			HasChanges:   cs.HasChanged(tool),
			Hash:         current,
			PreviousHash: st.ToolHashes[tool],
		}
	}

	return status, nil
}

// PropagateChange regenerates every registered tool's context except the
// source's, treating the source tool's content as the truth that the
// analysis-driven regeneration reconciles the others with.
//
// Generator failures are recorded per tool and do not stop the remaining
// tools. State is committed exactly once, after all generators have been
// attempted; a crash mid-fan-out leaves the previously committed state
// untouched.
func (o *Orchestrator) PropagateChange(source model.Tool, root string, cfg *config.Config, strategy Strategy) (*PropagationResult, error) {
	if _, ok := o.registry.Get(source); !ok {
		return nil, fmt.Errorf("unknown source tool %q", source)
	}
	return o.run(root, cfg, source.String(), source, strategy)
}

// SyncAllFromCodebase regenerates every registered tool's context directly
// from the codebase, with no source exclusion. Used by the regenerate_all
// strategy and for bootstrap.
func (o *Orchestrator) SyncAllFromCodebase(root string, cfg *config.Config) (*PropagationResult, error) {
	return o.run(root, cfg, model.SourceCodebase, "", StrategyRegenerateAll)
}

// snapshotTargets backs up the targets about to be overwritten. A backup
// failure aborts the attempt: no generator has run, so nothing is lost.
func (o *Orchestrator) snapshotTargets(root string, cfg *config.Config, sourceLabel string, exclude model.Tool, strategy Strategy) error {
	if cfg != nil && cfg.Sync.SkipBackup {
		return nil
	}

	var targets []string
	for _, a := range o.registry.All() {
		if exclude != "" && a.Name() == exclude {
			continue
		}
		targets = append(targets, a.Targets()...)
	}

	snap, err := backup.Create(root, fmt.Sprintf("before %s from %s", strategy, sourceLabel), targets)
	if err != nil {
		return fmt.Errorf("pre-propagation backup failed: %w", err)
	}
	if snap == nil {
		return nil
	}

	keep := 0
	if cfg != nil {
		keep = cfg.Sync.BackupKeep
	}
	if _, err := backup.Prune(root, keep); err != nil {
		logging.Warn("failed to prune old snapshots", logging.Err(err))
	}
	return nil
}

// run is the shared fan-out. exclude is empty for full regeneration.
func (o *Orchestrator) run(root string, cfg *config.Config, sourceLabel string, exclude model.Tool, strategy Strategy) (*PropagationResult, error) {
	st, err := o.store.Init(root)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sync state: %w", err)
	}

	logging.Info("starting propagation",
		logging.Operation("propagate"),
		logging.Strategy(strategy.String()),
		logging.Tool(sourceLabel),
	)

	analysis, err := o.analyze(root, cfg)
	if err != nil {
		// No generator has run yet; the attempt aborts with no commit.
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if err := o.snapshotTargets(root, cfg, sourceLabel, exclude, strategy); err != nil {
		return nil, err
	}

	result := &PropagationResult{
		Source:    sourceLabel,
		Strategy:  strategy,
		Timestamp: time.Now().UTC(),
	}

	// Sequential fan-out keeps error and file reporting order deterministic
	// and avoids interleaved writes to shared output directories.
	for _, a := range o.registry.All() {
		tool := a.Name()
		if exclude != "" && tool == exclude {
			result.Skipped = append(result.Skipped, tool)
			continue
		}

		genResult, genErr := a.Generate(analysis, cfg, root)
		if o.OnAdapterDone != nil {
			o.OnAdapterDone(tool, genErr)
		}
		if genErr != nil {
			logging.Warn("generator failed",
				logging.Tool(tool.String()),
				logging.Err(genErr),
			)
			result.Errors = append(result.Errors, PropagationError{
				Tool:    tool,
				Message: genErr.Error(),
			})
			continue
		}
		result.Propagated = append(result.Propagated, PropagatedTool{
			Tool:  tool,
			Files: genResult.Files,
		})
	}

	// Single commit after all generators were attempted.
	cs, err := DetectChanges(root, o.registry, st)
	if err != nil {
		return result, fmt.Errorf("failed to recompute hashes: %w", err)
	}
	st.ToolHashes = cs.CurrentHashes
	now := result.Timestamp
	st.LastSync = &now
	st.AppendHistory(state.HistoryEntry{
		Timestamp:       now,
		Source:          sourceLabel,
		Strategy:        strategy.String(),
		PropagatedCount: len(result.Propagated),
		ErrorCount:      len(result.Errors),
	})
	if err := o.store.Save(root, st); err != nil {
		return result, fmt.Errorf("failed to persist sync state: %w", err)
	}

	logging.Info("propagation complete",
		logging.Operation("propagate"),
		logging.Count(len(result.Propagated)),
		logging.Strategy(strategy.String()),
	)

	return result, nil
}
