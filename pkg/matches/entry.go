package matches

import (
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Field is one extra scalar attribute of a simple match, in document order.
type Field struct {
	Name  string
	Value string
}

// Entry is one element of the matches sequence, addressed by a synthetic
// load-scoped ID rather than its position, so sorting or insertion in a
// view never lands an edit on the wrong element.
type Entry struct {
	// ID is generated fresh on every load and never persisted.
	ID string

	// Trigger and Replace mirror the scalar fields of the node. For
	// complex entries they are best-effort display values and may be
	// empty.
	Trigger string
	Replace string

	// Fields holds allow-listed extra scalars of a simple entry.
	Fields []Field

	// Kind is the classification; Complex entries reject mutation.
	Kind Kind

	node *yaml.Node
}

// NewSimpleEntry wraps a freshly created trigger/replace mapping node. Used
// by the editor when a match is added; loaded entries go through BuildStore.
func NewSimpleEntry(node *yaml.Node, trigger, replace string) *Entry {
	return &Entry{
		ID:      uuid.NewString(),
		Trigger: trigger,
		Replace: replace,
		Kind:    Simple,
		node:    node,
	}
}

// IsComplex reports whether the entry is protected from editing.
func (e *Entry) IsComplex() bool {
	return e.Kind == Complex
}

// Node returns the back-reference into the document tree. It is a live
// pointer only for the currently loaded document and is stale after a
// reload.
func (e *Entry) Node() *yaml.Node {
	return e.node
}

// Preview returns the first line of the replacement, with an ellipsis when
// more lines follow. Used by list output and the interactive editor.
func (e *Entry) Preview() string {
	for i := 0; i < len(e.Replace); i++ {
		if e.Replace[i] == '\n' {
			return e.Replace[:i] + "..."
		}
	}
	return e.Replace
}
