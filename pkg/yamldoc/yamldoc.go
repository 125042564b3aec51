// Package yamldoc wraps gopkg.in/yaml.v3 with a document representation
// that survives a load/serialize round trip without disturbing comments,
// key order, or scalar quoting. A document that has not been mutated
// serializes back to its original bytes verbatim; only after a mutation is
// the node tree re-encoded.
package yamldoc

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/ezmatch/ezmatch/pkg/errors"
)

// MatchesKey is the root mapping key holding the match list.
const MatchesKey = "matches"

// Mode identifies the active serialization backend.
type Mode string

const (
	// ModePreserving keeps comments and scalar styles across a round trip.
	ModePreserving Mode = "preserving"

	// ModePlain is the degraded structural mode: key order survives but
	// comments and exact scalar styles are dropped at load time.
	ModePlain Mode = "plain"
)

// Document is an in-memory YAML file. It is owned by a single session and
// must only be mutated through the editor.
type Document struct {
	root    *yaml.Node // document node, nil when the source was empty
	src     []byte
	mode    Mode
	mutated bool
	gen     uint64
}

// Load parses src into a comment-preserving Document.
// Empty input and input without a matches key both load successfully.
func Load(src []byte) (*Document, error) {
	return LoadWithMode(src, ModePreserving)
}

// LoadWithMode parses src with an explicit backend mode.
func LoadWithMode(src []byte, mode Mode) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		// yaml.v3 embeds "line N:" hints in its messages; pass them through.
		return nil, errors.Wrap(err, errors.ErrParse, "invalid YAML document")
	}

	doc := &Document{
		src:  append([]byte(nil), src...),
		mode: mode,
	}
	if root.Kind != 0 {
		doc.root = &root
	}
	if mode == ModePlain && doc.root != nil {
		stripFormatting(doc.root)
	}
	return doc, nil
}

// Mode reports which backend is active so callers can warn about the
// degraded one.
func (d *Document) Mode() Mode {
	return d.mode
}

// Mutated reports whether the document changed since load.
func (d *Document) Mutated() bool {
	return d.mutated
}

// MarkMutated switches the document to re-encode on serialize. The editor
// calls this after every successful in-place change.
func (d *Document) MarkMutated() {
	d.mutated = true
	d.gen++
}

// Generation counts successful mutations since load. Sessions compare
// generations to track their Clean/Dirty state across persists.
func (d *Document) Generation() uint64 {
	return d.gen
}

// Serialize renders the document. Until the first mutation the original
// source bytes are returned unchanged; afterwards the node tree is encoded
// with two-space indent, carrying over the comments and styles yaml.v3
// attaches to each node.
func (d *Document) Serialize() ([]byte, error) {
	if !d.mutated {
		return append([]byte(nil), d.src...), nil
	}
	if d.root == nil {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		_ = enc.Close()
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode document")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to finalize document")
	}
	return buf.Bytes(), nil
}

// Root returns the underlying document node, or nil for an empty file.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Matches returns the sequence node of the root matches key, or nil when
// the key is absent. It never creates the key.
func (d *Document) Matches() (*yaml.Node, error) {
	if d.root == nil || len(d.root.Content) == 0 {
		return nil, nil
	}
	mapping := d.root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, nil
	}
	_, val := Lookup(mapping, MatchesKey)
	if val == nil {
		return nil, nil
	}
	if val.Kind != yaml.SequenceNode {
		return nil, errors.Newf(errors.ErrParse, "%q is not a sequence (line %d)", MatchesKey, val.Line)
	}
	return val, nil
}

// EnsureMatches returns the matches sequence node, creating the document
// root and the key on demand. Creation counts as a mutation.
func (d *Document) EnsureMatches() (*yaml.Node, error) {
	if d.root == nil {
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		d.root = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}
	}
	mapping := d.root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, errors.Newf(errors.ErrInvalidInput, "document root is not a mapping (line %d)", mapping.Line)
	}

	if _, val := Lookup(mapping, MatchesKey); val != nil {
		if val.Kind != yaml.SequenceNode {
			return nil, errors.Newf(errors.ErrParse, "%q is not a sequence (line %d)", MatchesKey, val.Line)
		}
		return val, nil
	}

	key := ScalarNode(MatchesKey)
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	mapping.Content = append(mapping.Content, key, seq)
	d.MarkMutated()
	return seq, nil
}

// stripFormatting removes comments and scalar styles so the plain mode
// behaves like an ordinary structural parser.
func stripFormatting(n *yaml.Node) {
	n.HeadComment = ""
	n.LineComment = ""
	n.FootComment = ""
	n.Style = 0
	for _, c := range n.Content {
		stripFormatting(c)
	}
}
