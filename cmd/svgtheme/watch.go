package main

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches input files for changes by watching their directories.
type Watcher struct {
	watcher *fsnotify.Watcher
	dirs    map[string]bool
	paths   map[string]bool

	mu     sync.Mutex
	ignore map[string]int
}

// NewWatcher returns a new Watcher.
func NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: watcher,
		dirs:    map[string]bool{},
		paths:   map[string]bool{},
		ignore:  map[string]int{},
	}, nil
}

// Close closes the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// AddPath adds a new file path to watch.
func (w *Watcher) AddPath(filename string) error {
	info, err := os.Lstat(filename)
	if err != nil {
		return err
	} else if !info.Mode().IsRegular() {
		return nil
	}
	w.paths[filepath.Clean(filename)] = true

	dir := filepath.Dir(filename)
	if w.dirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// IgnoreNext makes the watcher skip the next change of filename, so that
// rewriting a watched file in place does not retrigger itself.
func (w *Watcher) IgnoreNext(filename string) {
	if filename == "" {
		return
	}
	w.mu.Lock()
	w.ignore[filepath.Clean(filename)]++
	w.mu.Unlock()
}

func (w *Watcher) skip(filename string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if 0 < w.ignore[filename] {
		w.ignore[filename]--
		return true
	}
	return false
}

// Run watches for file changes.
func (w *Watcher) Run() chan string {
	files := make(chan string, 10)
	go func() {
		changetimes := map[string]time.Time{}
		for w.watcher.Events != nil && w.watcher.Errors != nil {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					w.watcher.Events = nil
					break
				}
				name := filepath.Clean(event.Name)
				if !w.paths[name] {
					break
				}
				if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
					break
				}
				if w.skip(name) {
					changetimes[name] = time.Now() // debounce trailing events of our own write
					break
				}
				if t, ok := changetimes[name]; !ok || 100*time.Millisecond < time.Since(t) {
					time.Sleep(100 * time.Millisecond) // wait to make sure write is finished
					files <- name
					changetimes[name] = time.Now()
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					w.watcher.Errors = nil
					break
				}
				Error.Println(err)
			}
		}
		close(files)
	}()
	return files
}
