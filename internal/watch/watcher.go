// Package watch provides polling-based target watching and the background
// service that turns file events into debounced, mutually exclusive sync
// runs. Change detection is periodic re-hashing only; no OS notification
// APIs are used (portability over latency).
package watch

import (
	"sync"
	"time"

	"github.com/klauern/ctxsync/internal/hash"
	"github.com/klauern/ctxsync/internal/logging"
)

// EventType describes a target transition observed between polls.
type EventType string

const (
	// EventCreated indicates the target newly exists.
	EventCreated EventType = "created"
	// EventChanged indicates the target's content hash differs from the last poll.
	EventChanged EventType = "changed"
	// EventDeleted indicates the target existed and is now absent.
	EventDeleted EventType = "deleted"
)

// Event is one observed target transition.
type Event struct {
	Type EventType
	// Path is the watched target path.
	Path string
	// Hash is the target's current content hash; empty for deletions.
	Hash string
	// Time is when the transition was observed.
	Time time.Time
}

// Handler receives watcher events. Handlers run on the watcher's polling
// goroutine and should return quickly.
type Handler func(Event)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = time.Second

// TargetWatcher polls a fixed set of file or directory targets and emits
// created/changed/deleted events, one per target per detected transition.
type TargetWatcher struct {
	targets  []string
	interval time.Duration
	handler  Handler

	mu      sync.Mutex
	known   map[string]string // target path -> last known hash ("" = absent)
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewTargetWatcher creates a watcher over the given target paths.
// An interval of zero falls back to DefaultPollInterval.
func NewTargetWatcher(targets []string, interval time.Duration, handler Handler) *TargetWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &TargetWatcher{
		targets:  targets,
		interval: interval,
		handler:  handler,
		known:    make(map[string]string, len(targets)),
	}
}

// Start begins polling. It snapshots current hashes first so pre-existing
// content does not produce spurious created events. Idempotent.
func (w *TargetWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	for _, target := range w.targets {
		h, err := hash.Target(target)
		if err != nil {
			logging.Warn("failed to hash watch target",
				logging.Path(target),
				logging.Err(err),
			)
			h = ""
		}
		w.known[target] = h
	}

	go w.loop(w.stop, w.done)

	logging.Debug("target watcher started",
		logging.Operation("watch"),
		logging.Count(len(w.targets)),
	)
}

// Stop cancels the polling loop and waits for it to exit. Idempotent.
func (w *TargetWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stop, done := w.stop, w.done
	w.mu.Unlock()

	close(stop)
	<-done

	logging.Debug("target watcher stopped", logging.Operation("watch"))
}

func (w *TargetWatcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll re-hashes every target and emits one event per detected transition.
func (w *TargetWatcher) poll() {
	now := time.Now()
	for _, target := range w.targets {
		current, err := hash.Target(target)
		if err != nil {
			logging.Warn("failed to hash watch target",
				logging.Path(target),
				logging.Err(err),
			)
			continue
		}

		w.mu.Lock()
		previous := w.known[target]
		w.known[target] = current
		w.mu.Unlock()

		var evType EventType
		switch {
		case previous == "" && current != "":
			evType = EventCreated
		case previous != "" && current == "":
			evType = EventDeleted
		case previous != current:
			evType = EventChanged
		default:
			continue
		}

		if w.handler != nil {
			w.handler(Event{Type: evType, Path: target, Hash: current, Time: now})
		}
	}
}
