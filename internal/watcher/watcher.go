// Package watcher reports edits to the sigtrack config file, debounced.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/pubsub"
)

// EventKind classifies watcher events.
type EventKind int

const (
	ConfigChanged EventKind = iota
	WatchError
)

// Event is published on the watcher's broker.
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

// Config holds watcher options.
type Config struct {
	Path        string
	DebounceDur time.Duration
}

// DefaultConfig watches path with a 300ms debounce.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		DebounceDur: 300 * time.Millisecond,
	}
}

// Watcher monitors one file. It watches the parent directory so that
// editors and atomic renames that replace the file are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	broker    *pubsub.Broker[Event]
	done      chan struct{}
	stopOnce  sync.Once
}

// New creates a watcher. Call Start to begin delivering events.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(cfg.Path),
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[Event](),
		done:      make(chan struct{}),
	}, nil
}

// Broker delivers ConfigChanged and WatchError events.
func (w *Watcher) Broker() *pubsub.Broker[Event] {
	return w.broker
}

// Start adds the parent directory and launches the event loop.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "watching config", "path", w.path)
	go w.loop()
	return nil
}

// Stop ends the loop and closes the broker. Safe to call twice.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.broker.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			log.Info(log.CatWatcher, "config changed", "path", w.path)
			w.broker.Publish(pubsub.UpdatedEvent, Event{Kind: ConfigChanged, Path: w.path})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)
			w.broker.Publish(pubsub.UpdatedEvent, Event{Kind: WatchError, Path: w.path, Err: err})

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
