package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauern/ctxsync/internal/adapter"
	"github.com/klauern/ctxsync/internal/analyzer"
	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
	ctxsync "github.com/klauern/ctxsync/internal/sync"
)

const (
	toolAlpha model.Tool = "alpha"
	toolBeta  model.Tool = "beta"
)

// watchAdapter is a minimal adapter with fixed targets; Generate is never
// exercised by the service tests.
type watchAdapter struct {
	tool    model.Tool
	targets []string
}

func (a *watchAdapter) Name() model.Tool    { return a.tool }
func (a *watchAdapter) DisplayName() string { return string(a.tool) }
func (a *watchAdapter) Targets() []string   { return a.targets }

func (a *watchAdapter) Generate(_ *analyzer.Project, _ *config.Config, _ string) (*adapter.Result, error) {
	return &adapter.Result{}, nil
}

// stubPropagator counts propagation calls and can block to simulate a long
// running sync.
type stubPropagator struct {
	mu      sync.Mutex
	sources []model.Tool
	result  *ctxsync.PropagationResult
	err     error

	// release, when set, blocks each call until it is closed.
	release chan struct{}
}

func (p *stubPropagator) PropagateChange(source model.Tool, _ string, _ *config.Config, _ ctxsync.Strategy) (*ctxsync.PropagationResult, error) {
	p.mu.Lock()
	p.sources = append(p.sources, source)
	release := p.release
	p.mu.Unlock()

	if release != nil {
		<-release
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &ctxsync.PropagationResult{Source: string(source)}, nil
}

func (p *stubPropagator) calls() []model.Tool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Tool, len(p.sources))
	copy(out, p.sources)
	return out
}

func testConfig(debounce time.Duration) *config.Config {
	cfg := config.Default()
	cfg.Sync.DebounceWindow = debounce
	cfg.Sync.PollInterval = time.Hour // keep the real watcher quiet
	return cfg
}

func newTestService(t *testing.T, debounce time.Duration, p Propagator) *Service {
	t.Helper()
	reg := adapter.NewRegistry(
		&watchAdapter{tool: toolAlpha, targets: []string{"alpha.md"}},
		&watchAdapter{tool: toolBeta, targets: []string{"beta.md"}},
	)
	s := NewService(t.TempDir(), testConfig(debounce), reg, p)
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func TestServiceDebounceCollapsesBursts(t *testing.T) {
	p := &stubPropagator{}
	s := newTestService(t, 200*time.Millisecond, p)

	target := filepath.Join(s.root, "alpha.md")

	// Three rapid edits inside one debounce window collapse to one sync.
	for i := 0; i < 3; i++ {
		s.handleEvent(Event{Type: EventChanged, Path: target, Time: time.Now()})
		time.Sleep(50 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(p.calls()) >= 1 }) {
		t.Fatal("expected a debounced sync to run")
	}
	// Give a stray second timer time to fire if one was queued.
	time.Sleep(300 * time.Millisecond)

	calls := p.calls()
	if len(calls) != 1 {
		t.Fatalf("burst of 3 events ran %d syncs, want 1", len(calls))
	}
	if calls[0] != toolAlpha {
		t.Errorf("sync source = %s, want alpha", calls[0])
	}
}

func TestServiceEventAfterWindowSchedulesAgain(t *testing.T) {
	p := &stubPropagator{}
	s := newTestService(t, 50*time.Millisecond, p)

	target := filepath.Join(s.root, "alpha.md")

	s.handleEvent(Event{Type: EventChanged, Path: target, Time: time.Now()})
	if !waitFor(t, time.Second, func() bool { return len(p.calls()) == 1 }) {
		t.Fatal("first sync never ran")
	}

	s.handleEvent(Event{Type: EventChanged, Path: target, Time: time.Now()})
	if !waitFor(t, time.Second, func() bool { return len(p.calls()) == 2 }) {
		t.Fatal("second sync never ran")
	}
}

func TestServiceDeletedEventNeverSyncs(t *testing.T) {
	p := &stubPropagator{}
	s := newTestService(t, 20*time.Millisecond, p)

	target := filepath.Join(s.root, "alpha.md")
	s.handleEvent(Event{Type: EventDeleted, Path: target, Time: time.Now()})

	time.Sleep(100 * time.Millisecond)
	if n := len(p.calls()); n != 0 {
		t.Fatalf("deleted event triggered %d syncs, want 0", n)
	}
}

func TestServiceIgnoresUnmappedPaths(t *testing.T) {
	p := &stubPropagator{}
	s := newTestService(t, 20*time.Millisecond, p)

	s.handleEvent(Event{Type: EventChanged, Path: filepath.Join(s.root, "README.md"), Time: time.Now()})

	time.Sleep(100 * time.Millisecond)
	if n := len(p.calls()); n != 0 {
		t.Fatalf("unmapped path triggered %d syncs, want 0", n)
	}
}

func TestServiceOwnerOfLongestPrefix(t *testing.T) {
	p := &stubPropagator{}
	reg := adapter.NewRegistry(
		&watchAdapter{tool: toolAlpha, targets: []string{".cursor"}},
		&watchAdapter{tool: toolBeta, targets: []string{".cursor/rules"}},
	)
	s := NewService(t.TempDir(), testConfig(20*time.Millisecond), reg, p)
	s.Start()
	defer s.Stop()

	tool, ok := s.ownerOf(filepath.Join(s.root, ".cursor", "rules", "project.mdc"))
	if !ok {
		t.Fatal("expected an owner")
	}
	if tool != toolBeta {
		t.Errorf("owner = %s, want beta via longest prefix", tool)
	}

	tool, ok = s.ownerOf(filepath.Join(s.root, ".cursor", "settings.json"))
	if !ok || tool != toolAlpha {
		t.Errorf("owner = %s ok=%v, want alpha", tool, ok)
	}
}

func TestServiceDropsSyncWhileInFlight(t *testing.T) {
	p := &stubPropagator{release: make(chan struct{})}
	s := newTestService(t, 20*time.Millisecond, p)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runSync(toolAlpha)
	}()

	if !waitFor(t, time.Second, func() bool { return len(p.calls()) == 1 }) {
		t.Fatal("first sync never started")
	}

	// A second run while the first is in flight is dropped, not queued.
	s.runSync(toolBeta)

	close(p.release)
	wg.Wait()

	if calls := p.calls(); len(calls) != 1 {
		t.Fatalf("expected the in-flight guard to drop the second sync, got %d calls", len(calls))
	}
}

func TestServiceCallbacks(t *testing.T) {
	p := &stubPropagator{result: &ctxsync.PropagationResult{
		Source: "alpha",
		Errors: []ctxsync.PropagationError{{Tool: toolBeta, Message: "render failed"}},
	}}
	s := newTestService(t, 20*time.Millisecond, p)

	var (
		mu       sync.Mutex
		started  []model.Tool
		finished []model.Tool
		errs     []error
	)
	s.OnSyncStart = func(tool model.Tool) {
		mu.Lock()
		started = append(started, tool)
		mu.Unlock()
	}
	s.OnSyncComplete = func(tool model.Tool, _ *ctxsync.PropagationResult) {
		mu.Lock()
		finished = append(finished, tool)
		mu.Unlock()
	}
	s.OnError = func(_ model.Tool, e []error) {
		mu.Lock()
		errs = append(errs, e...)
		mu.Unlock()
	}

	s.runSync(toolAlpha)

	mu.Lock()
	defer mu.Unlock()
	if len(started) != 1 || started[0] != toolAlpha {
		t.Errorf("OnSyncStart calls = %v", started)
	}
	if len(finished) != 1 || finished[0] != toolAlpha {
		t.Errorf("OnSyncComplete calls = %v", finished)
	}
	if len(errs) != 1 {
		t.Fatalf("OnError received %d errors, want 1", len(errs))
	}
	var genErr *GeneratorError
	if ge, ok := errs[0].(*GeneratorError); ok {
		genErr = ge
	} else {
		t.Fatalf("error type = %T, want *GeneratorError", errs[0])
	}
	if genErr.Tool != toolBeta || genErr.Message != "render failed" {
		t.Errorf("generator error = %+v", genErr)
	}
}

func TestServiceStartStopIdempotent(t *testing.T) {
	p := &stubPropagator{}
	reg := adapter.NewRegistry(&watchAdapter{tool: toolAlpha, targets: []string{"alpha.md"}})
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "alpha.md"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	s := NewService(root, testConfig(20*time.Millisecond), reg, p)
	s.Start()
	s.Start() // no-op
	s.Stop()
	s.Stop() // no-op
}

func TestServiceStopConcurrentWithStartLeavesNoWatcher(t *testing.T) {
	p := &stubPropagator{}
	reg := adapter.NewRegistry(&watchAdapter{tool: toolAlpha, targets: []string{"alpha.md"}})

	// However Start and Stop interleave, a final Stop must leave the
	// watcher's polling goroutine shut down.
	for i := 0; i < 50; i++ {
		s := NewService(t.TempDir(), testConfig(20*time.Millisecond), reg, p)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Start()
		}()
		go func() {
			defer wg.Done()
			s.Stop()
		}()
		wg.Wait()
		s.Stop()

		s.mu.Lock()
		w := s.watcher
		s.mu.Unlock()
		if w == nil {
			continue
		}
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			t.Fatalf("iteration %d: watcher still polling after Stop", i)
		}
	}
}

func TestServiceStopCancelsPendingTimers(t *testing.T) {
	p := &stubPropagator{}
	s := newTestService(t, 100*time.Millisecond, p)

	s.handleEvent(Event{Type: EventChanged, Path: filepath.Join(s.root, "alpha.md"), Time: time.Now()})
	s.Stop()

	time.Sleep(250 * time.Millisecond)
	if n := len(p.calls()); n != 0 {
		t.Fatalf("stopped service ran %d syncs, want 0", n)
	}
}
