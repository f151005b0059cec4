// Package sync implements cross-tool context synchronization: change
// detection against persisted state, conflict resolution, and the
// orchestrated regeneration fan-out.
package sync

import "fmt"

// Strategy defines how a detected conflict between tool contexts is resolved.
type Strategy string

const (
	// StrategySourceWins propagates one preferred tool's content to all others.
	StrategySourceWins Strategy = "source_wins"

	// StrategyRegenerateAll regenerates every tool's context from the codebase.
	StrategyRegenerateAll Strategy = "regenerate_all"

	// StrategyNewest treats the most recently modified tool as the source.
	StrategyNewest Strategy = "newest"

	// StrategyManual reports the conflict for external resolution and never
	// mutates state.
	StrategyManual Strategy = "manual"
)

// IsValid returns true if the strategy is recognized.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategySourceWins, StrategyRegenerateAll, StrategyNewest, StrategyManual:
		return true
	default:
		return false
	}
}

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategySourceWins:
		return "Propagate the preferred tool's content to all other tools"
	case StrategyRegenerateAll:
		return "Regenerate every tool's context from the codebase"
	case StrategyNewest:
		return "Use the most recently modified tool as the source"
	case StrategyManual:
		return "Report the conflict and leave resolution to the user"
	default:
		return "Unknown strategy"
	}
}

// AllStrategies returns all supported strategies.
func AllStrategies() []Strategy {
	return []Strategy{StrategySourceWins, StrategyRegenerateAll, StrategyNewest, StrategyManual}
}

// ParseStrategy converts a user-provided string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("unknown strategy %q (supported: source_wins, regenerate_all, newest, manual)", s)
	}
	return strategy, nil
}
