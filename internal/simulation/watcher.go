package simulation

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/meridian/internal/document"
)

// ErrNoSource is returned by Watch when the Simulation was not loaded from a file.
var ErrNoSource = errors.New("simulation has no source file to watch")

// debounce is how long a file must be quiet before a change is reported.
const debounce = 100 * time.Millisecond

// Watcher reports debounced changes to document files in a set of
// directories. Any json, toml or yaml file in a watched directory counts.
type Watcher struct {
	Changes <-chan string // Changed file paths

	changes chan string
	quit    chan struct{}
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for dirs. Call Start to begin watching.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	ch := make(chan string, 16)
	return &Watcher{
		Changes: ch,
		changes: ch,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Add watches another directory. Adding a watched directory is a no-op.
func (w *Watcher) Add(dir string) error {
	return w.watcher.Add(dir)
}

// Start begins delivering changes.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the watcher and the Changes channel. Changes nobody received
// are dropped.
func (w *Watcher) Stop() {
	close(w.quit)
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.quit:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isDocumentFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case now := <-ticker.C:
			for file, t := range pending {
				if now.Sub(t) < debounce {
					continue
				}
				select {
				case w.changes <- file:
					delete(pending, file)
				case <-w.quit:
					return
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func isDocumentFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	_, err := document.FormatOf(name)
	return err == nil
}

// PassFunc receives the outcome of each pass triggered by Watch.
type PassFunc func(file string, err error)

// Watch reloads the source document and runs Reset whenever a document file
// in the directory of the source or of any included file changes, until ctx
// is done. Load and resolution errors are reported through onPass and do
// not stop watching.
func (s *Simulation) Watch(ctx context.Context, onPass PassFunc) error {
	if s.source == "" {
		return ErrNoSource
	}
	_, files, _ := document.LoadFileIncludes(s.source)
	w, err := NewWatcher(watchDirs(s.source, files)...)
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case file, ok := <-w.Changes:
			if !ok {
				return nil
			}
			s.log.Debug().Str("file", file).Msg("document changed")
			files, err := s.reload()
			for _, dir := range watchDirs(s.source, files) {
				if addErr := w.Add(dir); addErr != nil {
					s.log.Warn().Err(addErr).Str("dir", dir).Msg("cannot watch include directory")
				}
			}
			if onPass != nil {
				onPass(file, err)
			}
		}
	}
}

// watchDirs lists the distinct directories holding source and files.
func watchDirs(source string, files []string) []string {
	seen := map[string]bool{}
	var dirs []string
	if abs, err := filepath.Abs(source); err == nil {
		source = abs
	}
	for _, f := range append([]string{source}, files...) {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (s *Simulation) reload() ([]string, error) {
	doc, files, err := document.LoadFileIncludes(s.source)
	if err != nil {
		s.SetDocument(document.Null())
		return files, err
	}
	s.SetDocument(doc)
	return files, s.Reset()
}
