package fshost

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"go.jacobcolvin.com/pathplease/settings"
)

// Directories never watched.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
}

// Reloader is a settings source backed by a file.
type Reloader interface {
	Path() string
	Reload() error
}

// Watcher raises [Host] events for file-system changes.
//
// Created files raise the active-editor event, written files raise the save
// event and writes to the settings file reload it and raise the
// configuration event. Events are posted to a [Dispatcher].
//
// Create instances with [NewWatcher].
type Watcher struct {
	fs       *fsnotify.Watcher
	host     *Host
	disp     *Dispatcher
	settings Reloader
	log      *slog.Logger
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithSettingsFile reloads r and raises the configuration event whenever
// its file changes.
func WithSettingsFile(r Reloader) WatcherOption {
	return func(w *Watcher) {
		w.settings = r
	}
}

// WithWatcherLogger sets the logger for watcher diagnostics.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// NewWatcher creates a [Watcher] raising events on h through d.
func NewWatcher(h *Host, d *Dispatcher, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:   fw,
		host: h,
		disp: d,
		log:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.settings != nil {
		dir := filepath.Dir(w.settings.Path())

		err = os.MkdirAll(dir, 0o755)
		if err == nil {
			err = fw.Add(dir)
		}

		if err != nil {
			return nil, errors.Join(fmt.Errorf("watch settings: %w", err), fw.Close())
		}
	}

	return w, nil
}

// AddTree watches root and every directory below it, except version control
// and dependency directories.
func (w *Watcher) AddTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}

		return w.fs.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	w.log.Debug("watching", slog.String("root", root))

	return nil
}

// Run posts events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			w.handle(ctx, ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}

			w.log.Warn("watch error", slog.Any("err", err))
		}
	}
}

// handle posts the task for ev. Posting only fails once ctx is done, which
// Run notices on its next iteration.
func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if w.isSettings(ev.Name) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}

		_ = w.disp.Post(ctx, func(ctx context.Context) {
			err := w.settings.Reload()
			if err != nil {
				w.log.Error("reload settings", slog.Any("err", err))

				return
			}

			w.host.ChangeConfiguration(ctx, settings.Section)
		})

		return
	}

	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}

		if info.IsDir() {
			if !skipDirs[info.Name()] {
				err = w.AddTree(ev.Name)
				if err != nil {
					w.log.Warn("watch directory", slog.Any("err", err))
				}
			}

			return
		}

		w.post(ctx, ev.Name, w.host.Open)

	case ev.Has(fsnotify.Write):
		w.post(ctx, ev.Name, w.host.Save)
	}
}

func (w *Watcher) post(ctx context.Context, path string, fn func(context.Context, string) error) {
	_ = w.disp.Post(ctx, func(ctx context.Context) {
		err := fn(ctx, path)
		if err != nil {
			w.log.Debug("skip event", slog.String("path", path), slog.Any("err", err))
		}
	})
}

func (w *Watcher) isSettings(name string) bool {
	if w.settings == nil {
		return false
	}

	a, errA := filepath.Abs(name)
	b, errB := filepath.Abs(w.settings.Path())

	return errA == nil && errB == nil && a == b
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}
