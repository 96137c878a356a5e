// Package watch keeps the page index in sync with edits made to the
// content directory outside the wiki, e.g. through an editor or git.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/markup"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// debounce coalesces the event bursts editors produce into one rebuild.
const debounce = 200 * time.Millisecond

// Watcher rebuilds the index whenever page files change on disk.
type Watcher struct {
	store *wiki.Store
	repo  *index.Repository
	fsw   *fsnotify.Watcher
}

// New starts watching the store's content directory and all its
// subdirectories.
func New(store *wiki.Store, repo *index.Repository) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{store: store, repo: repo, fsw: fsw}
	if err := w.addRecursive(store.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.hidden(event.Name) {
					if err := w.addRecursive(event.Name); err != nil {
						log.Printf("watcher: %v", err)
					}
				}
			}
			if w.interesting(event) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		case <-timer.C:
			w.reindex(ctx)
		}
	}
}

// interesting filters out events that cannot change the index, most
// importantly anything under dot directories, where the index database
// itself lives.
func (w *Watcher) interesting(event fsnotify.Event) bool {
	if w.hidden(event.Name) {
		return false
	}
	if _, ok := markup.FormatForPath(event.Name); ok {
		return true
	}
	// a removed or renamed directory takes its pages with it
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return true
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

func (w *Watcher) hidden(name string) bool {
	rel, err := filepath.Rel(w.store.Root(), name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) reindex(ctx context.Context) {
	pages, err := w.store.Index()
	if err != nil {
		log.Printf("reindex failed: %v", err)
		return
	}
	current := wiki.FilterOldVersions(pages)
	if err := w.repo.Rebuild(ctx, current); err != nil {
		log.Printf("reindex failed: %v", err)
		return
	}
	log.Printf("reindexed %d pages", len(current))
}
