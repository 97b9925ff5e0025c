// Package fsnotify reloads locale string tables when their files change on
// disk.
package fsnotify

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fwojciec/kai"
	"github.com/fwojciec/kai/toml"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// LocaleWatcher watches a locale directory and emits an I18nUpdate for the
// active locale whenever one of its files changes.
type LocaleWatcher struct {
	dir      string
	locale   string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// Option configures a LocaleWatcher.
type Option func(*LocaleWatcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *LocaleWatcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *LocaleWatcher) {
		w.logger = l
	}
}

// NewLocaleWatcher watches dir and its subdirectories for changes to the
// files of locale.
func NewLocaleWatcher(dir, locale string, opts ...Option) (*LocaleWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &LocaleWatcher{
		dir:      dir,
		locale:   locale,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	err = filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

// Close stops watching.
func (w *LocaleWatcher) Close() error {
	return w.watcher.Close()
}

// Load reads the active locale and returns the update that applies it.
func (w *LocaleWatcher) Load() (kai.I18nUpdate, error) {
	locales, err := toml.LoadLocales(w.dir)
	if err != nil {
		return kai.I18nUpdate{}, err
	}
	l, ok := locales[w.locale]
	if !ok {
		return kai.I18nUpdate{}, fmt.Errorf("locale %q not found in %s: %w", w.locale, w.dir, os.ErrNotExist)
	}
	return kai.I18nUpdate{Strings: l}, nil
}

// Run sends the active locale to out, then again after every change,
// until ctx is done or the watcher is closed. A file that fails to parse
// is logged and the previous strings stay in effect.
func (w *LocaleWatcher) Run(ctx context.Context, out chan<- kai.Update) error {
	w.reload(ctx, out)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDir(event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("locale file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("locale watcher error", "error", err)

		case <-timer.C:
			w.reload(ctx, out)
		}
	}
}

func (w *LocaleWatcher) reload(ctx context.Context, out chan<- kai.Update) {
	u, err := w.Load()
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, os.ErrNotExist) {
			level = slog.LevelDebug
		}
		w.logger.Log(ctx, level, "locale not reloaded", "locale", w.locale, "error", err)
		return
	}
	if len(u.Strings) == 0 {
		// A file being rewritten is briefly empty.
		w.logger.Debug("locale empty, not reloaded", "locale", w.locale)
		return
	}
	select {
	case out <- u:
		w.logger.Info("locale loaded", "locale", w.locale, "keys", len(u.Strings))
	case <-ctx.Done():
	}
}

// relevant reports whether event touches a file of the active locale.
func (w *LocaleWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return toml.MatchLocale(rel) && toml.LocaleName(rel) == w.locale
}

func (w *LocaleWatcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("watch locale directory", "dir", path, "error", err)
	}
}
