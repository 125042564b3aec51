package matches

import (
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ezmatch/ezmatch/pkg/logging"
	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

// Store is the ordered collection of entries extracted from one document's
// matches sequence. Order is document order at load time; consumers may
// re-sort for display but must address entries by ID.
type Store struct {
	entries []*Entry
	byID    map[string]*Entry
}

// BuildStore walks the document's matches sequence, classifies each element
// and assigns fresh synthetic IDs. It is read-only with respect to the
// document: an absent matches key yields an empty store without creating
// the key.
func BuildStore(doc *yamldoc.Document, classifier *Classifier) (*Store, error) {
	logger := logging.GetLogger("matches")

	store := &Store{byID: make(map[string]*Entry)}

	seq, err := doc.Matches()
	if err != nil {
		return nil, err
	}
	if seq == nil {
		return store, nil
	}

	for _, node := range seq.Content {
		entry := newEntry(node, classifier)
		store.entries = append(store.entries, entry)
		store.byID[entry.ID] = entry
	}

	logger.Debug().
		Int("total", len(store.entries)).
		Int("complex", store.countComplex()).
		Msg("store built")
	return store, nil
}

// newEntry extracts one sequence element into an Entry. Display values are
// captured even for complex entries so they can still be listed.
func newEntry(node *yaml.Node, classifier *Classifier) *Entry {
	entry := &Entry{
		ID:   uuid.NewString(),
		Kind: classifier.Classify(node),
		node: node,
	}

	if node.Kind != yaml.MappingNode {
		return entry
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if !yamldoc.IsScalar(key) || !yamldoc.IsScalar(val) {
			continue
		}
		switch key.Value {
		case TriggerField:
			entry.Trigger = val.Value
		case ReplaceField:
			entry.Replace = val.Value
		default:
			if entry.Kind == Simple {
				entry.Fields = append(entry.Fields, Field{Name: key.Value, Value: val.Value})
			}
		}
	}
	return entry
}

// List returns a read-only snapshot in store order. Callers must not mutate
// the returned entries; edits go through the editor.
func (s *Store) List() []*Entry {
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get resolves a synthetic ID.
func (s *Store) Get(id string) (*Entry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// FindTrigger returns the simple entry using the given trigger, excluding
// excludeID (pass "" to exclude nothing). Complex entries never participate
// in uniqueness checks.
func (s *Store) FindTrigger(trigger, excludeID string) *Entry {
	for _, e := range s.entries {
		if e.Kind == Simple && e.ID != excludeID && e.Trigger == trigger {
			return e
		}
	}
	return nil
}

// IndexOf returns the position of an entry in store order, or -1.
func (s *Store) IndexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Insert places an entry at position at (clamped to the valid range). Only
// the editor may call this; it keeps the store aligned with the tree.
func (s *Store) Insert(e *Entry, at int) {
	if at < 0 || at > len(s.entries) {
		at = len(s.entries)
	}
	s.entries = append(s.entries, nil)
	copy(s.entries[at+1:], s.entries[at:])
	s.entries[at] = e
	s.byID[e.ID] = e
}

// Remove drops an entry by ID, reporting whether it was present. Only the
// editor may call this.
func (s *Store) Remove(id string) bool {
	idx := s.IndexOf(id)
	if idx < 0 {
		return false
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	delete(s.byID, id)
	return true
}

func (s *Store) countComplex() int {
	n := 0
	for _, e := range s.entries {
		if e.Kind == Complex {
			n++
		}
	}
	return n
}
