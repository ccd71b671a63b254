package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"image-annotator/internal/logging"
)

// DefaultDebounce is how long a file must stay quiet after a write before
// the change is reported. Image editors often save in several steps.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher watches the background image on disk and reports when it has
// been rewritten, so the window can offer to reload it.
//
// The parent directory is watched rather than the file itself: many programs
// save by writing a temporary file and renaming it over the original, which
// would drop a watch on the old inode.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	modTime  time.Time
	debounce time.Duration
	timer    *time.Timer
	onChange func(path string) // Called from a background goroutine
	done     chan struct{}
}

// NewFileWatcher starts an idle watcher. Call Watch to pick a file.
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw := &FileWatcher{
		watcher:  w,
		debounce: debounce,
		done:     make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

// OnChange sets the callback invoked when the watched file changes. The
// callback runs on a background goroutine.
func (fw *FileWatcher) OnChange(callback func(path string)) {
	fw.mu.Lock()
	fw.onChange = callback
	fw.mu.Unlock()
}

// Watch replaces the watched file with path.
func (fw *FileWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	fw.Unwatch()

	dir := filepath.Dir(abs)
	if err := fw.watcher.Add(dir); err != nil {
		return err
	}

	fw.mu.Lock()
	fw.path = abs
	fw.dir = dir
	fw.modTime = info.ModTime()
	fw.mu.Unlock()

	logging.Logger().Debug("watching image file", "path", abs)
	return nil
}

// Unwatch stops reporting changes. Pending notifications are dropped.
func (fw *FileWatcher) Unwatch() {
	fw.mu.Lock()
	dir := fw.dir
	fw.path, fw.dir = "", ""
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	fw.mu.Unlock()

	if dir != "" {
		// The directory may already be gone.
		_ = fw.watcher.Remove(dir)
	}
}

// Path returns the watched file, or "" when idle.
func (fw *FileWatcher) Path() string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.path
}

// Close stops the watcher goroutine.
func (fw *FileWatcher) Close() error {
	fw.Unwatch()
	select {
	case <-fw.done:
		return nil
	default:
		close(fw.done)
	}
	return fw.watcher.Close()
}

func (fw *FileWatcher) loop() {
	for {
		select {
		case <-fw.done:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fw.touched(ev.Name)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				logging.Logger().Warn("file watcher error", "error", err)
			}
		}
	}
}

// touched restarts the quiet period for the watched file.
func (fw *FileWatcher) touched(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.path == "" || filepath.Clean(name) != fw.path {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	path := fw.path
	fw.timer = time.AfterFunc(fw.debounce, func() { fw.settle(path) })
}

// settle reports the change if the file still exists and its modification
// time moved since the last report.
func (fw *FileWatcher) settle(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	fw.mu.Lock()
	if fw.path != path || !info.ModTime().After(fw.modTime) {
		fw.mu.Unlock()
		return
	}
	fw.modTime = info.ModTime()
	callback := fw.onChange
	fw.mu.Unlock()

	logging.Logger().Info("image file changed on disk", "path", path)
	if callback != nil {
		callback(path)
	}
}
