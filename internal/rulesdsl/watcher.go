package rulesdsl

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/codewithboateng/oversight/internal/rules"
)

// Watcher reloads checkpoint packs into a registry when they change on
// disk. A pack that fails to load leaves the previous checkpoints in place.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	reg      *rules.Registry
	packs    map[string]bool // cleaned pack paths
	pending  map[string]time.Time
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	// OnReload, if set, is called after every reload attempt.
	OnReload func(path string, n int, err error)
}

func NewWatcher(reg *rules.Registry, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		reg:      reg,
		packs:    map[string]bool{},
		pending:  map[string]time.Time{},
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, p := range paths {
		w.packs[filepath.Clean(p)] = true
	}
	return w, nil
}

// Start watches the directories holding the packs. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Editors often replace files by rename, so watch the parent directory.
	dirs := map[string]bool{}
	for p := range w.packs {
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			_ = w.watcher.Close()
			close(w.doneCh)
			return err
		}
		zap.L().Debug("watching checkpoint packs", zap.String("dir", d))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		zap.L().Warn("closing pack watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("pack watcher error", zap.Error(err))
		case <-tick.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	p := filepath.Clean(ev.Name)
	if !w.packs[p] {
		return
	}
	w.mu.Lock()
	w.pending[p] = time.Now()
	w.mu.Unlock()
}

// flush reloads packs whose last event is older than the debounce window.
func (w *Watcher) flush() {
	now := time.Now()
	var due []string
	w.mu.Lock()
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			due = append(due, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()

	for _, p := range due {
		n, err := LoadAndRegister(p, w.reg)
		if err != nil {
			zap.L().Warn("checkpoint pack reload failed", zap.String("pack", p), zap.Error(err))
		} else {
			zap.L().Info("checkpoint pack reloaded", zap.String("pack", p), zap.Int("checkpoints", n))
		}
		if w.OnReload != nil {
			w.OnReload(p, n, err)
		}
	}
}

// Watch loads the pack at path into reg and keeps it current until ctx is
// done or the returned watcher is stopped.
func Watch(ctx context.Context, path string, reg *rules.Registry) (*Watcher, error) {
	if _, err := LoadAndRegister(path, reg); err != nil {
		return nil, err
	}
	w, err := NewWatcher(reg, path)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
