package session

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/logging"
)

// Watcher reports external writes to a session's file. The directory is
// watched rather than the file itself so atomic replace-by-rename (the
// pattern editors and this tool both use) is still observed.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	events chan fsnotify.Op
	done   chan struct{}
}

// Watch starts observing the session's file for external changes.
func (s *Session) Watch() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to watch %s", filepath.Dir(s.path))
	}

	w := &Watcher{
		fsw:    fsw,
		path:   s.path,
		events: make(chan fsnotify.Op, 8),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Events delivers one Op per observed change to the watched file.
func (w *Watcher) Events() <-chan fsnotify.Op {
	return w.events
}

// Close stops the watcher and closes the events channel.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	logger := logging.GetLogger("session.watch")
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file changed on disk")
			select {
			case w.events <- event.Op:
			case <-w.done:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("watch error")
		}
	}
}
