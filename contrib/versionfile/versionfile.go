// Package versionfile provides an asset version read from a file, such as
// the build hash written by a frontend build step.
//
// The file is watched for changes, so a deployment that rewrites the file
// bumps the version without restarting the server.
package versionfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.inout.gg/foundations/debug"

	"go.segfaultmedaddy.com/inertia-adapter"
)

var _ inertia.VersionProvider = (*Watcher)(nil)

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia/versionfile")

// ErrClosed is returned by Version after the watcher is closed.
var ErrClosed = errors.New("inertia: version file watcher is closed")

type state struct {
	err     error
	version string
}

// Watcher serves the trimmed content of a file as the asset version.
type Watcher struct {
	state   atomic.Pointer[state]
	watcher *fsnotify.Watcher
	done    chan struct{}
	path    string
	wg      sync.WaitGroup
	once    sync.Once
}

// New reads the version from path and starts watching it.
//
// The parent directory is watched rather than the file itself, so that
// editors and build tools replacing the file atomically are picked up.
func New(path string) (*Watcher, error) {
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to create file watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("inertia: failed to watch %s: %w", path, err)
	}

	//nolint:exhaustruct
	vw := &Watcher{
		watcher: w,
		done:    make(chan struct{}),
		path:    path,
	}

	vw.reload()

	if s := vw.state.Load(); s.err != nil {
		_ = w.Close()
		return nil, s.err
	}

	vw.wg.Add(1)

	go vw.watch()

	return vw, nil
}

// Version returns the current version, or the error of the last read
// if the file could not be read.
func (w *Watcher) Version(context.Context) (string, error) {
	select {
	case <-w.done:
		return "", ErrClosed
	default:
	}

	s := w.state.Load()

	return s.version, s.err
}

// Close stops watching the file.
func (w *Watcher) Close() error {
	var err error

	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})

	if err != nil {
		return fmt.Errorf("inertia: failed to close file watcher: %w", err)
	}

	return nil
}

func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(ev.Name) != w.path {
				continue
			}

			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				d("Version file %s changed: %s", w.path, ev.Op)
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			d("Version file watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	b, err := os.ReadFile(w.path)
	if err != nil {
		w.state.Store(&state{err: fmt.Errorf("inertia: failed to read version file: %w", err), version: ""})
		return
	}

	w.state.Store(&state{err: nil, version: strings.TrimSpace(string(b))})
}
