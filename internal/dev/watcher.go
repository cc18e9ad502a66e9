package dev

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// WatcherConfig configures the template watcher.
type WatcherConfig struct {
	// Root is the template directory.
	Root string

	// Extension selects template files, including the leading dot.
	Extension string

	// Ignore patterns to skip, matched against base names (globs).
	Ignore []string

	// Interval is the delay between scans.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls a template directory for changes.
type Watcher struct {
	config   WatcherConfig
	onChange func(names []string)

	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	mtimes      map[string]time.Time
}

// NewWatcher creates a new template watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 500 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{
		config: config,
		mtimes: make(map[string]time.Time),
	}
}

// OnChange sets the callback for changed templates. Names are sorted and
// use the template naming of source.Dir.
func (w *Watcher) OnChange(fn func(names []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start scans until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.Scan()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			if names := w.Scan(); len(names) > 0 {
				w.mu.Lock()
				callback := w.onChange
				w.mu.Unlock()
				if callback != nil {
					callback(names)
				}
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Scan compares the directory with the previous scan and returns the
// names of added, modified and removed templates. The first scan only
// records the current state.
func (w *Watcher) Scan() []string {
	seen := make(map[string]time.Time)
	filepath.WalkDir(w.config.Root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.shouldIgnore(entry.Name()) && p != w.config.Root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !strings.HasSuffix(p, w.config.Extension) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		seen[p] = info.ModTime()
		return nil
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	first := !w.initialized
	w.initialized = true
	var names []string
	for p, mod := range seen {
		if last, ok := w.mtimes[p]; (!ok && !first) || (ok && mod.After(last)) {
			names = append(names, w.name(p))
		}
	}
	for p := range w.mtimes {
		if _, ok := seen[p]; !ok {
			names = append(names, w.name(p))
		}
	}
	w.mtimes = seen

	sort.Strings(names)
	return names
}

// name converts a file path to a template name.
func (w *Watcher) name(p string) string {
	rel, err := filepath.Rel(w.config.Root, p)
	if err != nil {
		rel = p
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), w.config.Extension)
}

// shouldIgnore checks a base name against the ignore patterns.
func (w *Watcher) shouldIgnore(name string) bool {
	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
