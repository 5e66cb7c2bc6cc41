package manager

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch refreshes on every .jsonl creation or write below the log root,
// cache-first (the remote-call rule still applies). New project
// directories are added to the watch as they appear. Blocks until the
// context is cancelled; the error is only ever a watcher setup failure.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	addTree := func(root string) {
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err == nil && info.IsDir() {
				if werr := w.Add(path); werr != nil {
					log.Printf("[manager] watch %s: %v", path, werr)
				}
			}
			return nil
		})
	}
	addTree(m.scanner.Root())

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addTree(event.Name)
					continue
				}
			}
			if strings.HasSuffix(event.Name, ".jsonl") {
				m.Refresh(ctx)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[manager] watcher error: %v", err)
		}
	}
}
