package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MetamodelReloadCallback is invoked with the raw bytes of the metamodel
// file whenever it changes on disk. The caller is responsible for parsing
// and, if the new metamodel would invalidate existing history, rejecting
// the reload. The watcher ignores the returned error and keeps watching.
type MetamodelReloadCallback func(data []byte) error

// MetamodelWatcherConfig configures a MetamodelWatcher.
type MetamodelWatcherConfig struct {
	// FilePath is the metamodel YAML/JSON file to watch.
	FilePath string

	// DebounceMillis coalesces bursts of filesystem events (editors often
	// emit several writes per save) into a single reload. Default: 300ms.
	DebounceMillis int
}

// MetamodelWatcher watches a metamodel file for changes and triggers a
// reload callback with debouncing, mirroring the teacher's integration
// config watcher. Reporting an invalid reload is left to the callback;
// the watcher itself never crashes on a bad reload.
type MetamodelWatcher struct {
	cfg      MetamodelWatcherConfig
	callback MetamodelReloadCallback

	mu      sync.Mutex
	timer   *time.Timer
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewMetamodelWatcher creates a watcher for the given file. It does not
// start watching until Start is called.
func NewMetamodelWatcher(cfg MetamodelWatcherConfig, callback MetamodelReloadCallback) (*MetamodelWatcher, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("FilePath must not be empty")
	}
	if callback == nil {
		return nil, fmt.Errorf("callback must not be nil")
	}
	if cfg.DebounceMillis == 0 {
		cfg.DebounceMillis = 300
	}
	return &MetamodelWatcher{
		cfg:      cfg,
		callback: callback,
		stopped:  make(chan struct{}),
	}, nil
}

// Start begins watching the file. It blocks internally via a background
// goroutine; callers should call Stop to release resources.
func (w *MetamodelWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := watcher.Add(w.cfg.FilePath); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", w.cfg.FilePath, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.watcher = watcher
	w.cancel = cancel

	go w.loop(watchCtx)
	return nil
}

func (w *MetamodelWatcher) loop(ctx context.Context) {
	defer close(w.stopped)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.scheduleReload()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *MetamodelWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.cfg.DebounceMillis)*time.Millisecond, func() {
		data, err := readFile(w.cfg.FilePath)
		if err != nil {
			return
		}
		_ = w.callback(data)
	})
}

// Stop releases the watcher's resources. It satisfies
// lifecycle.Component alongside Start and Name.
func (w *MetamodelWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
		<-w.stopped
	}
	return nil
}

// Name identifies the watcher for lifecycle registration and logging.
func (w *MetamodelWatcher) Name() string { return "metamodel-watcher" }
