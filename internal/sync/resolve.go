package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/model"
)

// ResolveConflict maps a resolution strategy onto a chosen source of truth
// and carries the resolution out. When the project is already in sync it
// returns a resolved no-op.
func (o *Orchestrator) ResolveConflict(root string, cfg *config.Config, strategy Strategy, preferred model.Tool) (*Resolution, error) {
	status, err := o.CheckSyncStatus(root)
	if err != nil {
		return nil, err
	}
	if status.InSync {
		return &Resolution{
			Resolved: true,
			Strategy: strategy,
			Reason:   "already in sync",
			Status:   status,
		}, nil
	}

	logging.Info("resolving conflict",
		logging.Operation("resolve"),
		logging.Strategy(strategy.String()),
		logging.Count(len(status.Changed)),
	)

	switch strategy {
	case StrategySourceWins:
		if preferred == "" {
			// Guard: without a preferred tool there is nothing to win.
			return &Resolution{
				Resolved: false,
				Strategy: strategy,
				Reason:   "source_wins requires a preferred tool",
				Status:   status,
			}, nil
		}
		result, err := o.PropagateChange(preferred, root, cfg, strategy)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Resolved: true,
			Strategy: strategy,
			Source:   preferred.String(),
			Result:   result,
		}, nil

	case StrategyRegenerateAll:
		result, err := o.SyncAllFromCodebase(root, cfg)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Resolved: true,
			Strategy: strategy,
			Source:   model.SourceCodebase,
			Result:   result,
		}, nil

	case StrategyNewest:
		source, ok := o.newestTool(root)
		if !ok {
			return &Resolution{
				Resolved: false,
				Strategy: strategy,
				Reason:   "no tool has an existing file target to compare",
				Status:   status,
			}, nil
		}
		result, err := o.PropagateChange(source, root, cfg, strategy)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Resolved: true,
			Strategy: strategy,
			Source:   source.String(),
			Result:   result,
		}, nil

	case StrategyManual:
		// Manual conflicts are never auto-resolved; the status payload lets
		// an external UI drive resolution.
		return &Resolution{
			Resolved: false,
			Strategy: strategy,
			Reason:   "manual resolution requested",
			Status:   status,
		}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// newestTool selects the tool whose most recent non-directory target
// modification time is latest. Ties on identical timestamps break to the
// lexicographically smaller tool name so the choice is deterministic.
func (o *Orchestrator) newestTool(root string) (model.Tool, bool) {
	var (
		best     model.Tool
		bestTime time.Time
		found    bool
	)

	for _, a := range o.registry.All() {
		tool := a.Name()
		for _, target := range a.Targets() {
			info, err := os.Stat(filepath.Join(root, filepath.FromSlash(target)))
			if err != nil || info.IsDir() {
				continue
			}
			mod := info.ModTime()
			switch {
			case !found, mod.After(bestTime):
				best, bestTime, found = tool, mod, true
			case mod.Equal(bestTime) && tool < best:
				best = tool
			}
		}
	}

	return best, found
}
