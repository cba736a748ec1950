// Package scheduler provides interval-based reload watching for the
// dataset store. The watcher polls the source file's modification time and
// triggers a reload when it changes, so a replaced CSV shows up on the
// dashboard without a restart.
package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/internal/logger"
)

// DefaultInterval is the default polling interval.
const DefaultInterval = 30 * time.Second

// Common errors
var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("reload watcher already started")
)

// Watcher polls a dataset store's source file and reloads it on change.
// Reload failures are retried with backoff and never take down the
// process; the store keeps serving the previous table.
type Watcher struct {
	store    *dataset.Store
	interval time.Duration
	retry    errhandling.RetryConfig

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	lastMod  time.Time
	lastSize int64
}

// NewWatcher creates a watcher over the store with the given polling
// interval. A non-positive interval falls back to DefaultInterval.
func NewWatcher(store *dataset.Store, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		store:    store,
		interval: interval,
		retry:    errhandling.DefaultRetryConfig(),
	}
}

// Start begins watching. The returned error is immediate only; reload
// errors during watching are logged and retried.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return ErrAlreadyStarted
	}

	if info, err := os.Stat(w.store.Path()); err == nil {
		w.lastMod = info.ModTime()
		w.lastSize = info.Size()
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx)
	return nil
}

// Stop halts watching and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check stats the source file and reloads when it changed. A stat failure
// is transient (the file may be mid-replace) and is skipped silently until
// the next tick.
func (w *Watcher) check(ctx context.Context) {
	info, err := os.Stat(w.store.Path())
	if err != nil {
		logger.Debug("reload watcher stat failed; will retry next tick",
			"path", w.store.Path(),
			"error", err.Error(),
		)
		return
	}
	if info.ModTime().Equal(w.lastMod) && info.Size() == w.lastSize {
		return
	}

	logger.Info("dataset file changed; reloading",
		"path", w.store.Path(),
	)

	err = w.retry.Do(ctx, func() error {
		return w.store.Reload(ctx)
	})
	if err != nil {
		logger.Error("dataset reload failed; keeping previous table",
			"path", w.store.Path(),
			"error", err.Error(),
		)
		return
	}

	w.lastMod = info.ModTime()
	w.lastSize = info.Size()
}
