package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/assetparser/engine/core"
)

// DefaultQuietPeriod is how long the watcher waits after the last file event
// before converting again, so that editors saving in bursts trigger one run.
const DefaultQuietPeriod = 250 * time.Millisecond

// Watcher re-runs the incremental directory conversion whenever a file below
// the root is created or written. Runs are serialized on a single goroutine.
type Watcher struct {
	manager     *Manager
	root        string
	quietPeriod time.Duration
	fsnotify    *fsnotify.Watcher
	outputDir   string

	// OnReport, when set, receives the report of every run.
	OnReport func(*Report, error)
}

func NewWatcher(m *Manager, root string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		manager:     m,
		root:        filepath.Clean(root),
		outputDir:   m.outputDir,
		quietPeriod: DefaultQuietPeriod,
		fsnotify:    fsWatch,
	}, nil
}

func (w *Watcher) SetQuietPeriod(d time.Duration) {
	w.quietPeriod = d
}

// Run converts once, then keeps converting on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsnotify.Close()

	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	w.convert()

	timer := time.NewTimer(w.quietPeriod)
	timer.Stop()
	pending := false

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if w.ignored(e.Name) {
				continue
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() && e.Op&fsnotify.Create != 0 {
				if err := w.watchRecursive(e.Name); err != nil {
					core.LogWarn("could not watch %q: %s", e.Name, err)
				}
			}
			// Can't stat a deleted directory, so just try to remove it from the watch list
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				_ = w.fsnotify.Remove(e.Name)
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending = true
				timer.Reset(w.quietPeriod)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			core.LogError("[ERROR] %s", err)

		case <-timer.C:
			if pending {
				pending = false
				w.convert()
			}

		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

func (w *Watcher) convert() {
	report, err := w.manager.ParseDirectory(w.root)
	if err != nil {
		core.LogError("[ERROR] %s", err)
	}
	if report != nil && report.OutputDir != "" {
		w.outputDir = report.OutputDir
	}
	if w.OnReport != nil {
		w.OnReport(report, err)
	}
}

// ignored filters out events caused by our own writes: temp files and the
// output tree when it lives below the root.
func (w *Watcher) ignored(name string) bool {
	base := filepath.Base(name)
	if filepath.Ext(base) == ".tmp" && len(base) > 0 && base[0] == '.' {
		return true
	}
	if w.outputDir == "" {
		return false
	}
	out, err := filepath.Abs(w.outputDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(out, abs)
	return err == nil && rel != ".." && !startsWithParent(rel)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// watchRecursive adds path and every directory below it to the watch list.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}
