package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher watches one exported document file for external writes
// and re-imports it into the engine. Editors write files in bursts
// (truncate, write, rename), so events are debounced before reloading.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	stopCh  chan struct{}
}

// WatchFile starts watching an exported JSON document at path. Every
// settled external write is imported into the engine, replacing its
// state. Replaces any previous watch.
func (s *GridService) WatchFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: renames replace the inode.
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return err
	}

	s.StopWatching()
	fw := &fileWatcher{watcher: w, path: absPath, stopCh: make(chan struct{})}
	s.mu.Lock()
	s.watcher = fw
	s.mu.Unlock()

	go s.watchLoop(ctx, fw)
	return nil
}

// StopWatching stops the document file watcher, if any.
func (s *GridService) StopWatching() {
	s.mu.Lock()
	fw := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if fw != nil {
		close(fw.stopCh)
		fw.watcher.Close()
	}
}

func (s *GridService) watchLoop(ctx context.Context, fw *fileWatcher) {
	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != fw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerCh = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			s.reloadFromFile(ctx, fw.path)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		case <-fw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *GridService) reloadFromFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("watcher: read %s: %v", path, err)
		return
	}
	if err := s.engine.ImportJSON(ctx, data); err != nil {
		log.Printf("watcher: import %s: %v", path, err)
		return
	}
	s.emitter.Emit(ctx, "document:reloaded", map[string]string{"path": path})
}
