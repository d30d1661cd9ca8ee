// FILE: nofus/watch.go
package nofus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultMaxWatchers = 100 // Prevent resource exhaustion

// Notices sent on Watch channels besides changed key names.
const (
	NoticeFileDeleted        = "file_deleted"
	NoticePermissionsChanged = "permissions_changed"
	NoticeReloadTimeout      = "reload_timeout"
	NoticeReloadError        = "reload_error:"
)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// Debounce duration to coalesce bursts of writes into one reload
	Debounce time.Duration

	// MaxWatchers limits concurrent watch channels
	MaxWatchers int

	// ReloadTimeout for file reload operations
	ReloadTimeout time.Duration

	// VerifyPermissions refuses to reload after group or world permission bits change
	VerifyPermissions bool
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:          DefaultDebounce,
		MaxWatchers:       DefaultMaxWatchers,
		ReloadTimeout:     DefaultReloadTimeout,
		VerifyPermissions: true,
	}
}

// watcher reloads a ConfigFile when its backing file changes on disk.
type watcher struct {
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	opts             WatchOptions
	filePath         string
	fsw              *fsnotify.Watcher
	logger           *slog.Logger
	lastMode         os.FileMode
	watching         atomic.Bool
	reloadInProgress atomic.Bool
	watchers         map[int64]chan string // subscriber channels
	watcherID        atomic.Int64
	debounceTimer    *time.Timer
	done             chan struct{}
}

// AutoUpdate reloads the file whenever it changes on disk.
func (c *ConfigFile) AutoUpdate() error {
	return c.AutoUpdateWithOptions(DefaultWatchOptions())
}

// AutoUpdateWithOptions is AutoUpdate with custom options. The parent
// directory is watched so editors that replace the file by rename are seen.
func (c *ConfigFile) AutoUpdateWithOptions(opts WatchOptions) error {
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.path == "" {
		return ErrNoFileGiven
	}
	filePath := filepath.Clean(c.path)

	if c.watcher != nil {
		if c.watcher.filePath == filePath {
			return nil
		}
		c.watcher.stop()
		c.watcher = nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(filePath)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch '%s': %w", filePath, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		filePath: filePath,
		fsw:      fsw,
		logger:   c.logger,
		watchers: make(map[int64]chan string),
		done:     make(chan struct{}),
	}
	if info, err := os.Stat(filePath); err == nil {
		w.lastMode = info.Mode()
	}

	w.watching.Store(true)
	c.watcher = w
	go w.watchLoop(c)

	c.logger.Debug("Watching config file", "path", filePath, "debounce", opts.Debounce)
	return nil
}

// StopAutoUpdate stops automatic reloading and closes every Watch channel.
func (c *ConfigFile) StopAutoUpdate() {
	c.mutex.Lock()
	w := c.watcher
	c.watcher = nil
	c.mutex.Unlock()

	if w != nil {
		w.stop()
	}
}

// Watch returns a channel that receives the names of keys changed by a
// reload, plus the Notice strings. Auto update is started if needed. With no
// backing file, or past MaxWatchers, the channel is already closed.
func (c *ConfigFile) Watch() <-chan string {
	return c.WatchWithOptions(DefaultWatchOptions())
}

// WatchWithOptions is Watch with custom options for a newly started watcher.
func (c *ConfigFile) WatchWithOptions(opts WatchOptions) <-chan string {
	c.mutex.RLock()
	w := c.watcher
	c.mutex.RUnlock()

	if w == nil {
		if err := c.AutoUpdateWithOptions(opts); err != nil {
			c.logger.Warn("Cannot watch config file", "path", c.Path(), "error", err)
			return closedChannel()
		}
		c.mutex.RLock()
		w = c.watcher
		c.mutex.RUnlock()
		if w == nil {
			return closedChannel()
		}
	}
	return w.subscribe()
}

// IsWatching returns true if auto-update is enabled
func (c *ConfigFile) IsWatching() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.watcher != nil && c.watcher.watching.Load()
}

// WatcherCount returns the number of active watch channels
func (c *ConfigFile) WatcherCount() int {
	c.mutex.RLock()
	w := c.watcher
	c.mutex.RUnlock()

	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.watchers)
}

// snapshot copies the current values under the read lock.
func (c *ConfigFile) snapshot() map[string][]Value {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store.snapshot()
}

func closedChannel() <-chan string {
	ch := make(chan string)
	close(ch)
	return ch
}

// watchLoop is the main file watching loop
func (w *watcher) watchLoop(c *ConfigFile) {
	defer close(w.done)
	defer w.watching.Store(false)

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(c, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "path", w.filePath, "error", err)
		}
	}
}

// handleEvent filters directory events down to the watched file.
func (w *watcher) handleEvent(c *ConfigFile, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.filePath {
		return
	}

	info, err := os.Stat(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			w.logger.Warn("Config file removed", "path", w.filePath)
			w.notifyWatchers(NoticeFileDeleted)
		}
		return
	}

	if w.opts.VerifyPermissions && w.lastMode != 0 && info.Mode() != w.lastMode {
		if (info.Mode() & 0077) != (w.lastMode & 0077) {
			w.logger.Warn("Config file permissions changed, not reloading",
				"path", w.filePath, "old", w.lastMode, "new", info.Mode())
			w.notifyWatchers(NoticePermissionsChanged)
			return
		}
	}
	w.lastMode = info.Mode()

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		w.performReload(c)
	})
	w.mu.Unlock()
}

// performReload reloads the file and reports every key whose values changed.
func (w *watcher) performReload(c *ConfigFile) {
	if !w.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.reloadInProgress.Store(false)

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.ReloadTimeout)
	defer cancel()

	oldValues := c.snapshot()

	done := make(chan error, 1)
	go func() {
		done <- c.reload()
	}()

	select {
	case err := <-done:
		if err != nil {
			w.logger.Warn("Config reload failed", "path", w.filePath, "error", err)
			w.notifyWatchers(NoticeReloadError + err.Error())
			return
		}

		newValues := c.snapshot()
		changed := 0
		for key, newVal := range newValues {
			if oldVal, existed := oldValues[key]; !existed || !slices.Equal(oldVal, newVal) {
				w.notifyWatchers(key)
				changed++
			}
		}
		for key := range oldValues {
			if _, exists := newValues[key]; !exists {
				w.notifyWatchers(key)
				changed++
			}
		}
		w.logger.Info("Config file reloaded", "path", w.filePath, "changed", changed)

	case <-ctx.Done():
		w.notifyWatchers(NoticeReloadTimeout)
	}
}

// subscribe creates a new watcher channel
func (w *watcher) subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil || len(w.watchers) >= w.opts.MaxWatchers {
		return closedChannel()
	}

	ch := make(chan string, subscriberBuffer)
	id := w.watcherID.Add(1)
	w.watchers[id] = ch

	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.watchers, id)
		close(ch)
		w.mu.Unlock()
	}()

	return ch
}

// notifyWatchers sends a notice to every subscriber without blocking; a full
// channel misses the notice.
func (w *watcher) notifyWatchers(notice string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.watchers {
		select {
		case ch <- notice:
		default:
		}
	}
}

// stop terminates the watcher
func (w *watcher) stop() {
	w.cancel()
	w.fsw.Close()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()

	select {
	case <-w.done:
	case <-time.After(ShutdownTimeout):
	}
}
