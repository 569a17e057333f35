// Package watchers reports the message files other programs add to or
// remove from a store.
package watchers

import (
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/worker/types"
	"github.com/fsnotify/fsnotify"
)

type fsWatcher struct {
	w  *fsnotify.Watcher
	ch chan *types.FSEvent
}

func New() (types.FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher := &fsWatcher{
		w:  w,
		ch: make(chan *types.FSEvent, 16),
	}
	go watcher.watch()
	return watcher, nil
}

func (w *fsWatcher) watch() {
	defer log.PanicHandler()
	defer close(w.ch)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			// we only care about files being created, removed or renamed
			var op types.FSOperation
			switch {
			case ev.Has(fsnotify.Create):
				op = types.FSCreate
			case ev.Has(fsnotify.Remove):
				op = types.FSRemove
			case ev.Has(fsnotify.Rename):
				op = types.FSRename
			default:
				continue
			}
			w.ch <- &types.FSEvent{Operation: op, Path: ev.Name}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %v", err)
		}
	}
}

func (w *fsWatcher) Events() <-chan *types.FSEvent {
	return w.ch
}

func (w *fsWatcher) Add(p string) error {
	return w.w.Add(p)
}

func (w *fsWatcher) Remove(p string) error {
	return w.w.Remove(p)
}

func (w *fsWatcher) Close() error {
	return w.w.Close()
}
