package csvconvert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// Config holds configuration for a Converter.
type Config struct {
	DataDir string
	Sources Sources
	Logger  *slog.Logger
}

// Converter turns dataset source files into row sets. Parsed files are cached
// until Invalidate is called for them, usually by Watch.
type Converter struct {
	dataDir string
	sources Sources
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string][]core.Row
}

// New creates a Converter.
func New(cfg Config) *Converter {
	if cfg.Sources == nil {
		cfg.Sources = DefaultSources()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{
		dataDir: cfg.DataDir,
		sources: cfg.Sources,
		logger:  cfg.Logger,
		cache:   make(map[string][]core.Row),
	}
}

// DataDir returns the directory source files are resolved against.
func (c *Converter) DataDir() string {
	return c.dataDir
}

// Path returns the absolute-or-relative file path backing id.
func (c *Converter) Path(id core.DatasetID) (string, error) {
	src, err := c.sources.Lookup(id)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(src.File) {
		return src.File, nil
	}
	return filepath.Join(c.dataDir, src.File), nil
}

// Load returns the rows of dataset id. It satisfies viewer.Loader, so the
// terminal viewer can read sources without going through HTTP.
func (c *Converter) Load(_ context.Context, id core.DatasetID) ([]core.Row, error) {
	src, err := c.sources.Lookup(id)
	if err != nil {
		return nil, err
	}
	path, err := c.Path(id)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	rows, ok := c.cache[path]
	c.mu.RUnlock()
	if ok {
		return rows, nil
	}

	c.logger.Debug("loading dataset from", "dataset", id, "path", path)
	table, err := ReadTable(path, src.Separator)
	if err != nil {
		return nil, err
	}
	if table.Skipped > 0 {
		c.logger.Warn("skipped malformed CSV lines", "path", path, "count", table.Skipped)
	}
	rows = table.Rows()

	c.mu.Lock()
	c.cache[path] = rows
	c.mu.Unlock()

	return rows, nil
}

// Invalidate drops the cached rows for path.
func (c *Converter) Invalidate(path string) {
	c.mu.Lock()
	delete(c.cache, filepath.Clean(path))
	c.mu.Unlock()
}

// Cached reports whether path currently has cached rows.
func (c *Converter) Cached(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cache[filepath.Clean(path)]
	return ok
}

// Watch evicts cache entries whose source file changes, until ctx is done.
func (c *Converter) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(c.dataDir); err != nil {
		c.logger.Error("failed to watch data directory", "dir", c.dataDir, "error", err)
		// Don't fail - serve without cache invalidation
		<-ctx.Done()
		return nil
	}

	timers := map[string]*time.Timer{}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".csv" {
				continue
			}

			name := filepath.Clean(event.Name)
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(100*time.Millisecond, func() {
				c.logger.Debug("source changed, evicting cache", "file", name)
				c.Invalidate(name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher error", "error", err)
		}
	}
}
