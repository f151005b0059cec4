package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauern/ctxsync/internal/adapter"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/model"
	ctxsync "github.com/klauern/ctxsync/internal/sync"
)

// Propagator runs one propagation with the given tool as source of truth.
// *sync.Orchestrator satisfies it; tests substitute stubs.
type Propagator interface {
	PropagateChange(source model.Tool, root string, cfg *config.Config, strategy ctxsync.Strategy) (*ctxsync.PropagationResult, error)
}

// DefaultDebounceWindow is used when no debounce window is configured.
const DefaultDebounceWindow = 2 * time.Second

// Service wires watcher events to debounced, mutually exclusive propagation
// runs. All mutable coordination state (the in-flight guard and the per-tool
// debounce timers) is owned by the service value, so independent services do
// not interfere.
type Service struct {
	root       string
	cfg        *config.Config
	registry   *adapter.Registry
	propagator Propagator
	debounce   time.Duration

	// OnSyncStart is called when a debounced sync begins for a tool.
	OnSyncStart func(tool model.Tool)
	// OnSyncComplete is called with the propagation outcome.
	OnSyncComplete func(tool model.Tool, result *ctxsync.PropagationResult)
	// OnError receives analysis failures and per-tool generator failures.
	// Errors are surfaced here, never thrown across the service boundary.
	OnError func(tool model.Tool, errs []error)

	watcher *TargetWatcher

	mu      sync.Mutex
	running bool
	syncing bool
	timers  map[model.Tool]*time.Timer

	// owners maps each watched absolute path to its tool, longest prefix
	// winning on lookup.
	owners map[string]model.Tool
}

// NewService creates a background sync service for one project root.
func NewService(root string, cfg *config.Config, reg *adapter.Registry, p Propagator) *Service {
	return &Service{
		root:       root,
		cfg:        cfg,
		registry:   reg,
		propagator: p,
		debounce:   debounceWindow(cfg),
		timers:     make(map[model.Tool]*time.Timer),
		owners:     make(map[string]model.Tool),
	}
}

func debounceWindow(cfg *config.Config) time.Duration {
	if cfg != nil && cfg.Sync.DebounceWindow > 0 {
		return cfg.Sync.DebounceWindow
	}
	return DefaultDebounceWindow
}

func pollInterval(cfg *config.Config) time.Duration {
	if cfg != nil && cfg.Sync.PollInterval > 0 {
		return cfg.Sync.PollInterval
	}
	return DefaultPollInterval
}

// Start begins watching every registered tool's targets. Idempotent no-op
// if already running.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	var targets []string
	for _, a := range s.registry.All() {
		for _, target := range a.Targets() {
			abs := filepath.Join(s.root, filepath.FromSlash(target))
			targets = append(targets, abs)
			s.owners[abs] = a.Name()
		}
	}
	s.watcher = NewTargetWatcher(targets, pollInterval(s.cfg), s.handleEvent)
	// The watcher must be running before the lock is released: a Stop that
	// interleaved here would find a watcher it cannot stop yet and leak its
	// polling goroutine.
	s.watcher.Start()
	s.mu.Unlock()

	logging.Info("background sync started",
		logging.Operation("background_sync"),
		logging.Path(s.root),
		logging.Count(len(targets)),
	)
}

// Stop stops the watcher and clears all pending debounce timers. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	watcher := s.watcher
	for tool, timer := range s.timers {
		timer.Stop()
		delete(s.timers, tool)
	}
	s.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}

	logging.Info("background sync stopped", logging.Operation("background_sync"))
}

// handleEvent maps a watcher event to its owning tool and debounces.
func (s *Service) handleEvent(ev Event) {
	if ev.Type == EventDeleted {
		// Deliberately never triggers a sync: silently regenerating from a
		// deletion could destroy information without human awareness.
		logging.Warn("watched target deleted, not syncing",
			logging.Path(ev.Path),
		)
		return
	}

	tool, ok := s.ownerOf(ev.Path)
	if !ok {
		logging.Debug("event for unmapped path ignored", logging.Path(ev.Path))
		return
	}

	logging.Debug("target event",
		logging.Tool(tool.String()),
		logging.Path(ev.Path),
		logging.Operation(string(ev.Type)),
	)

	s.scheduleSync(tool)
}

// ownerOf resolves a path to its owning tool via the longest matching
// configured target prefix.
func (s *Service) ownerOf(path string) (model.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best    string
		owner   model.Tool
		matched bool
	)
	for target, tool := range s.owners {
		if path == target || strings.HasPrefix(path, target+string(filepath.Separator)) {
			if len(target) > len(best) {
				best, owner, matched = target, tool, true
			}
		}
	}
	return owner, matched
}

// scheduleSync resets the tool's debounce timer. Each tool owns one pending
// timer: a new event reschedules it rather than queuing a second sync.
func (s *Service) scheduleSync(tool model.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	if timer, ok := s.timers[tool]; ok {
		timer.Stop()
	}
	s.timers[tool] = time.AfterFunc(s.debounce, func() {
		s.runSync(tool)
	})
}

// runSync executes one propagation with the changed tool as source. If a
// sync is already in flight the request is dropped; the next watcher poll
// rediscovers the still-pending change.
func (s *Service) runSync(tool model.Tool) {
	s.mu.Lock()
	delete(s.timers, tool)
	if !s.running {
		s.mu.Unlock()
		return
	}
	if s.syncing {
		s.mu.Unlock()
		logging.Debug("sync already in flight, dropping",
			logging.Tool(tool.String()),
		)
		return
	}
	s.syncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	if s.OnSyncStart != nil {
		s.OnSyncStart(tool)
	}

	result, err := s.propagator.PropagateChange(tool, s.root, s.cfg, ctxsync.StrategySourceWins)
	if err != nil {
		logging.Error("background sync failed",
			logging.Tool(tool.String()),
			logging.Err(err),
		)
		if s.OnError != nil {
			s.OnError(tool, []error{err})
		}
		return
	}

	if len(result.Errors) > 0 && s.OnError != nil {
		errs := make([]error, 0, len(result.Errors))
		for _, e := range result.Errors {
			errs = append(errs, &GeneratorError{Tool: e.Tool, Message: e.Message})
		}
		s.OnError(tool, errs)
	}

	if s.OnSyncComplete != nil {
		s.OnSyncComplete(tool, result)
	}
}

// GeneratorError reports one tool's generator failure during a background
// sync.
type GeneratorError struct {
	Tool    model.Tool
	Message string
}

func (e *GeneratorError) Error() string {
	return string(e.Tool) + ": " + e.Message
}
