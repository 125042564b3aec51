// Package session binds one on-disk match file to a loaded document and its
// entry store. It owns the load/persist lifecycle, the Clean/Dirty state,
// and the atomic write that keeps the original file intact when a save
// fails partway through.
package session

import (
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/ezmatch/ezmatch/pkg/editor"
	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/logging"
	"github.com/ezmatch/ezmatch/pkg/matches"
	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

// State is the file-scoped dirty flag. There is no partial-dirty substate:
// the serializer always writes the whole tree.
type State string

const (
	Clean State = "clean"
	Dirty State = "dirty"
)

// Options tune how a session loads its file.
type Options struct {
	// Mode selects the serialization backend; empty means preserving.
	Mode yamldoc.Mode

	// BenignFields extends the classifier allow-list.
	BenignFields []string
}

// Session is one open match file. Not safe for concurrent use; callers
// dispatching I/O to a background worker must serialize operations
// per session.
type Session struct {
	path string
	opts Options

	doc    *yamldoc.Document
	store  *matches.Store
	editor *editor.Editor

	savedGen uint64
	mtime    time.Time
	size     int64
}

// createTemp is swapped out by tests to simulate write failures.
var createTemp = os.CreateTemp

// Open reads, decodes and parses the file at path and builds its store.
// Files must be valid UTF-8; decode failures are explicit, never silently
// substituted.
func Open(path string, opts Options) (*Session, error) {
	if opts.Mode == "" {
		opts.Mode = yamldoc.ModePreserving
	}

	s := &Session{path: path, opts: opts}
	if err := s.load(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("session")
	logger.Debug().
		Str("path", path).
		Str("mode", string(opts.Mode)).
		Int("entries", s.store.Len()).
		Msg("session opened")
	return s, nil
}

func (s *Session) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileNotFound, "no such file %s", s.path)
		}
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", s.path)
	}
	if !utf8.Valid(raw) {
		return errors.Newf(errors.ErrFileEncoding, "%s is not valid UTF-8", s.path)
	}

	doc, err := yamldoc.LoadWithMode(raw, s.opts.Mode)
	if err != nil {
		return err
	}
	store, err := matches.BuildStore(doc, matches.NewClassifier(s.opts.BenignFields))
	if err != nil {
		return err
	}

	s.doc = doc
	s.store = store
	s.editor = editor.New(doc, store)
	s.savedGen = doc.Generation()
	s.recordStat()
	return nil
}

// Path returns the file this session is bound to.
func (s *Session) Path() string { return s.path }

// Mode reports the active serialization backend so callers can warn when
// the degraded structural mode is in use.
func (s *Session) Mode() yamldoc.Mode { return s.doc.Mode() }

// Editor returns the edit engine for this session's document.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Store returns the current entry store. The returned object graph is
// replaced wholesale on Reload; callers must not hold it across one.
func (s *Session) Store() *matches.Store { return s.store }

// State reports Clean until an edit lands, and again after a persist.
func (s *Session) State() State {
	if s.doc.Generation() != s.savedGen {
		return Dirty
	}
	return Clean
}

// ExternallyModified compares the file on disk against what this session
// last read or wrote. Persist still overwrites external changes
// unconditionally; this exists so callers can warn first.
func (s *Session) ExternallyModified() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(s.mtime) || info.Size() != s.size
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory: a failure partway through leaves the original untouched.
// The original file's permissions are carried over when it exists.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := createTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to close %s", tmpName)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", path)
	}
	return nil
}

// Persist serializes the document and atomically replaces the file.
func (s *Session) Persist() error {
	out, err := s.doc.Serialize()
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(s.path, out); err != nil {
		return err
	}

	s.savedGen = s.doc.Generation()
	s.recordStat()

	logger := logging.GetLogger("session")
	logger.Debug().
		Str("path", s.path).
		Int("bytes", len(out)).
		Msg("session persisted")
	return nil
}

// Reload discards the current tree and store and rebuilds from disk. Any
// unsaved edits are lost; warning first is the caller's job. Entries held
// from before the reload are stale, including their IDs.
func (s *Session) Reload() error {
	return s.load()
}

func (s *Session) recordStat() {
	if info, err := os.Stat(s.path); err == nil {
		s.mtime = info.ModTime()
		s.size = info.Size()
	}
}
