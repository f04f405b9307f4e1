package codebase

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileWatcher polls the codebase root for added, modified and removed
// .odin files and keeps the codebase in sync.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(path string, f *File)
}

// NewFileWatcher returns a watcher calling onChange, if non-nil, with
// each rescanned file. Removed files are reported with a nil File.
func NewFileWatcher(c *Codebase, interval time.Duration, onChange func(string, *File)) *FileWatcher {
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
		onChange:     onChange,
	}
}

func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan checks the root once and returns the paths that changed, sorted.
func (w *FileWatcher) Scan() []string {
	var changed []string
	currentFiles := make(map[string]bool)

	filepath.Walk(w.codebase.RootDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.codebase.RootDir() && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != Ext {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			f, err := w.codebase.ScanFile(path)
			if err != nil {
				log.Warningf("watch %s: %s", path, err)
				return nil
			}
			changed = append(changed, path)
			w.notify(path, f)
		}
		return nil
	})

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			changed = append(changed, path)
			w.notify(path, nil)
		}
	}

	sort.Strings(changed)
	return changed
}

func (w *FileWatcher) notify(path string, f *File) {
	if w.onChange != nil {
		w.onChange(path, f)
	}
}
