package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher is a Dir loader that watches every file it
// loads. Changes to any of them are reported on Changed.
// Directories are watched rather than files so that
// editors replacing a file by rename are still noticed.
type Watcher struct {
	dir     Dir
	watcher *fsnotify.Watcher
	changed chan string
	errs    chan error
	done    chan struct{}

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool

	closeOnce sync.Once
}

// NewWatcher starts an fsnotify watcher. Call Close to
// release it.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	wa := &Watcher{
		watcher: fw,
		changed: make(chan string, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}

	go wa.loop()

	return wa, nil
}

// Load reads the file like Dir and starts watching it. A
// missing file is watched too, so creating it later is
// reported on Changed.
func (wa *Watcher) Load(ctx context.Context, name, baseDir string) (File, error) {
	fi, err := wa.dir.Load(ctx, name, baseDir)
	if err != nil {
		var ne *NotFoundError
		if errors.As(err, &ne) {
			if werr := wa.watch(ne.Path); werr != nil {
				return File{}, errors.Join(err, werr)
			}
		}

		return File{}, err
	}

	if err := wa.watch(fi.Path); err != nil {
		return File{}, err
	}

	return fi, nil
}

// Add watches a file that is not loaded through wa, such
// as a context file feeding the render.
func (wa *Watcher) Add(path string) error {
	return wa.watch(path)
}

// Changed delivers the path of a watched file after it was
// written, created or renamed. Bursts are coalesced: at
// most one notification is pending at a time.
func (wa *Watcher) Changed() <-chan string {
	return wa.changed
}

// Errors delivers watcher failures.
func (wa *Watcher) Errors() <-chan error {
	return wa.errs
}

// Watched reports whether path is currently watched.
func (wa *Watcher) Watched(path string) bool {
	return wa.isWatched(path)
}

// Close stops the watcher.
func (wa *Watcher) Close() error {
	var err error

	wa.closeOnce.Do(func() {
		close(wa.done)
		err = wa.watcher.Close()
	})

	return err
}

func (wa *Watcher) watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	dir := filepath.Dir(abs)

	wa.mu.Lock()
	defer wa.mu.Unlock()

	if !wa.dirs[dir] {
		if err := wa.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}

		wa.dirs[dir] = true
	}

	wa.files[abs] = true

	return nil
}

func (wa *Watcher) loop() {
	const interesting = fsnotify.Write | fsnotify.Create | fsnotify.Rename

	for {
		select {
		case <-wa.done:
			return
		case event, ok := <-wa.watcher.Events:
			if !ok {
				return
			}

			if event.Op&interesting == 0 || !wa.isWatched(event.Name) {
				continue
			}

			select {
			case wa.changed <- event.Name:
			default:
			}
		case err, ok := <-wa.watcher.Errors:
			if !ok {
				return
			}

			select {
			case wa.errs <- err:
			default:
			}
		}
	}
}

func (wa *Watcher) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}

	wa.mu.Lock()
	defer wa.mu.Unlock()

	return wa.files[abs]
}
