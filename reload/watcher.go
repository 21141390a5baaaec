package reload

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Kind classifies a change burst.
type Kind int

const (
	// KindFull means at least one non-stylesheet file changed; pages
	// should reload completely.
	KindFull Kind = iota
	// KindStyle means every changed file was a stylesheet; pages can
	// swap CSS in place.
	KindStyle
)

func (k Kind) String() string {
	if k == KindStyle {
		return "style"
	}
	return "full"
}

// styleExts are the extensions that qualify a burst as style-only.
var styleExts = map[string]bool{
	".css": true,
}

// Watcher monitors the configured roots recursively and invokes its
// callback once per debounced burst of changes. Directories created
// while watching are picked up automatically.
type Watcher struct {
	fsw      *fsnotify.Watcher
	ignore   []string
	debounce time.Duration
	callback func(Kind)
	logger   *zap.Logger
	done     chan struct{}
	stopped  chan struct{}
}

// NewWatcher starts watching the roots in cfg. The callback runs on the
// watcher's own goroutine.
func NewWatcher(cfg *Config, logger *zap.Logger, callback func(Kind)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		ignore:   cfg.Ignore,
		debounce: cfg.Debounce,
		callback: callback,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, root := range cfg.Roots {
		if err := w.addTree(root); err != nil {
			// One bad root should not take down the whole watch.
			logger.Warn("skipping unwatchable root", zap.String("root", root), zap.Error(err))
		}
	}
	go w.loop()
	return w, nil
}

// addTree registers root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// ignored reports whether any path segment matches an ignore pattern,
// by glob or by prefix.
func (w *Watcher) ignored(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == "" {
			continue
		}
		for _, pat := range w.ignore {
			if ok, _ := path.Match(pat, seg); ok {
				return true
			}
			if strings.HasPrefix(seg, pat) {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) loop() {
	defer close(w.stopped)

	var timer *time.Timer
	var fire <-chan time.Time
	styleOnly := true
	pending := 0

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("watching new directory failed",
							zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			if ev.Op.Has(fsnotify.Chmod) && ev.Op&^fsnotify.Chmod == 0 {
				continue
			}
			pending++
			if !styleExts[strings.ToLower(filepath.Ext(ev.Name))] {
				styleOnly = false
			}
			w.logger.Debug("change observed",
				zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			kind := KindFull
			if styleOnly {
				kind = KindStyle
			}
			w.logger.Info("change burst settled",
				zap.Int("events", pending), zap.Stringer("kind", kind))
			if w.callback != nil {
				w.callback(kind)
			}
			timer = nil
			fire = nil
			styleOnly = true
			pending = 0
		}
	}
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fsw.Close()
	<-w.stopped
	return err
}
