package songbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// songsWatcher watches the songs root, its locale folders and the index
// file, and reports changes through callbacks.
type songsWatcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	root      string
	indexPath string
	onSong    func(rel string)
	onIndex   func()
	log       Logger
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
}

func newSongsWatcher(root, indexPath string, log Logger, onSong func(string), onIndex func()) (*songsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &songsWatcher{
		watcher:   w,
		root:      filepath.Clean(root),
		indexPath: filepath.Clean(indexPath),
		onSong:    onSong,
		onIndex:   onIndex,
		log:       log,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start adds the watched directories and runs the event loop in a goroutine.
func (sw *songsWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	sw.running = true
	sw.mu.Unlock()

	if err := sw.watcher.Add(sw.root); err != nil {
		return fmt.Errorf("watching %s: %w", sw.root, err)
	}
	entries, err := os.ReadDir(sw.root)
	if err != nil {
		return fmt.Errorf("listing %s: %w", sw.root, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			sw.add(filepath.Join(sw.root, e.Name()))
		}
	}
	if dir := filepath.Dir(sw.indexPath); dir != sw.root {
		sw.add(dir)
	}

	go sw.run(ctx)
	return nil
}

func (sw *songsWatcher) add(dir string) {
	if err := sw.watcher.Add(dir); err != nil {
		sw.log.Warnf("Watcher: cannot watch %s: %v", dir, err)
		return
	}
	sw.log.Debugf("Watcher: watching %s", dir)
}

// Stop stops the event loop and waits for it to exit.
func (sw *songsWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh

	if err := sw.watcher.Close(); err != nil {
		sw.log.Errorf("Watcher: error closing: %v", err)
	}
}

func (sw *songsWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Errorf("Watcher error: %v", err)
		}
	}
}

func (sw *songsWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Clean(event.Name)
	if name == sw.indexPath {
		sw.log.Infof("Watcher: index changed")
		sw.onIndex()
		return
	}

	// New locale folders are picked up as they appear.
	if event.Has(fsnotify.Create) && filepath.Dir(name) == sw.root {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			sw.add(name)
			return
		}
	}

	if !strings.HasSuffix(name, ".txt") {
		return
	}
	rel, err := filepath.Rel(sw.root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	sw.log.Debugf("Watcher: %s %s", event.Op, rel)
	sw.onSong(filepath.ToSlash(rel))
}

func (s *songbookService) startWatcher() error {
	w, err := newSongsWatcher(s.config.SongsDir, s.indexPath(), s.log, s.invalidate, func() {
		if err := s.reloadIndex(); err != nil {
			s.log.Errorf("Failed to reload song index: %v", err)
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		w.watcher.Close()
		return err
	}
	s.watcher = w
	s.cancel = cancel
	return nil
}
