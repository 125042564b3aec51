// Package editor is the only component allowed to mutate a loaded document.
// It keeps the entry store and the underlying node tree in lockstep and
// enforces the protection invariants: triggers stay unique among simple
// entries, complex entries are never touched, and every failed operation
// leaves both structures unchanged.
package editor

import (
	"gopkg.in/yaml.v3"

	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/logging"
	"github.com/ezmatch/ezmatch/pkg/matches"
	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

// Append requests insertion at the end of the match list.
const Append = -1

// Editor applies add/update/delete operations to one document/store pair.
type Editor struct {
	doc   *yamldoc.Document
	store *matches.Store
}

// New binds an editor to a loaded document and its store.
func New(doc *yamldoc.Document, store *matches.Store) *Editor {
	return &Editor{doc: doc, store: store}
}

// List returns a read-only snapshot of the store for display.
func (ed *Editor) List() []*matches.Entry {
	return ed.store.List()
}

// Add appends a new trigger/replace match, or inserts it at position at
// (Append for the end). The trigger must be non-empty and unused by any
// simple entry; on failure nothing is mutated.
func (ed *Editor) Add(trigger, replace string, at int) (*matches.Entry, error) {
	if trigger == "" {
		return nil, errors.New(errors.ErrInvalidInput, "trigger cannot be empty")
	}
	if dup := ed.store.FindTrigger(trigger, ""); dup != nil {
		return nil, errors.Newf(errors.ErrDuplicateTrigger, "trigger %q already exists", trigger).
			WithDetail("trigger", trigger)
	}

	seq, err := ed.doc.EnsureMatches()
	if err != nil {
		return nil, err
	}

	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			yamldoc.ScalarNode(matches.TriggerField), yamldoc.ScalarNode(trigger),
			yamldoc.ScalarNode(matches.ReplaceField), yamldoc.ScalarNode(replace),
		},
	}

	if at < 0 || at > len(seq.Content) {
		at = len(seq.Content)
	}
	seq.Content = append(seq.Content, nil)
	copy(seq.Content[at+1:], seq.Content[at:])
	seq.Content[at] = node

	entry := matches.NewSimpleEntry(node, trigger, replace)
	ed.store.Insert(entry, at)
	ed.doc.MarkMutated()

	logger := logging.GetLogger("editor")
	logger.Debug().
		Str("trigger", trigger).
		Int("position", at).
		Msg("match added")
	return entry, nil
}

// Update rewrites one scalar field of a simple entry in place. The node is
// never replaced, so comments attached to it and to its siblings survive.
// Renaming a trigger onto another simple entry's trigger is rejected.
func (ed *Editor) Update(id, field, value string) (*matches.Entry, error) {
	entry, ok := ed.store.Get(id)
	if !ok {
		return nil, errors.Newf(errors.ErrEntryNotFound, "no entry with id %s", id)
	}
	if entry.IsComplex() {
		return nil, errors.Newf(errors.ErrComplexEntry, "entry %q is protected from editing", entry.Trigger)
	}

	switch field {
	case matches.TriggerField:
		if value == "" {
			return nil, errors.New(errors.ErrInvalidInput, "trigger cannot be empty")
		}
		if dup := ed.store.FindTrigger(value, id); dup != nil {
			return nil, errors.Newf(errors.ErrDuplicateTrigger, "another trigger %q already exists", value).
				WithDetail("trigger", value)
		}
		_, val := yamldoc.Lookup(entry.Node(), matches.TriggerField)
		if val == nil {
			return nil, errors.Newf(errors.ErrInternal, "entry %s has no trigger node", id)
		}
		yamldoc.SetScalar(val, value)
		entry.Trigger = value

	case matches.ReplaceField:
		_, val := yamldoc.Lookup(entry.Node(), matches.ReplaceField)
		if val == nil {
			return nil, errors.Newf(errors.ErrInternal, "entry %s has no replace node", id)
		}
		yamldoc.SetScalar(val, value)
		entry.Replace = value

	default:
		idx := fieldIndex(entry, field)
		if idx < 0 {
			return nil, errors.Newf(errors.ErrInvalidInput, "field %q is not editable on this entry", field)
		}
		_, val := yamldoc.Lookup(entry.Node(), field)
		if val == nil {
			return nil, errors.Newf(errors.ErrInternal, "entry %s has no %q node", id, field)
		}
		yamldoc.SetScalar(val, value)
		entry.Fields[idx].Value = value
	}

	ed.doc.MarkMutated()
	logger := logging.GetLogger("editor")
	logger.Debug().
		Str("field", field).
		Str("trigger", entry.Trigger).
		Msg("match updated")
	return entry, nil
}

// Delete removes an entry from the list and the store. A comment attached
// directly to the removed node is deleted with it; surrounding comments
// stay where they are.
func (ed *Editor) Delete(id string) error {
	entry, ok := ed.store.Get(id)
	if !ok {
		return errors.Newf(errors.ErrEntryNotFound, "no entry with id %s", id)
	}
	if entry.IsComplex() {
		return errors.Newf(errors.ErrComplexEntry, "entry %q is protected from editing", entry.Trigger)
	}

	seq, err := ed.doc.Matches()
	if err != nil {
		return err
	}
	if seq == nil {
		return errors.Newf(errors.ErrInternal, "entry %s has no backing sequence", id)
	}

	idx := -1
	for i, n := range seq.Content {
		if n == entry.Node() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Newf(errors.ErrInternal, "entry %s not found in document tree", id)
	}

	seq.Content = append(seq.Content[:idx], seq.Content[idx+1:]...)
	ed.store.Remove(id)
	ed.doc.MarkMutated()

	logger := logging.GetLogger("editor")
	logger.Debug().
		Str("trigger", entry.Trigger).
		Msg("match deleted")
	return nil
}

func fieldIndex(entry *matches.Entry, field string) int {
	for i, f := range entry.Fields {
		if f.Name == field {
			return i
		}
	}
	return -1
}
