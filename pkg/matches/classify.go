package matches

import (
	"gopkg.in/yaml.v3"

	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

// Field names recognized on a match element.
const (
	TriggerField = "trigger"
	ReplaceField = "replace"

	// varsField marks templated/dynamic matches. It forces a complex
	// classification even when a user adds it to the benign list.
	varsField = "vars"
)

// Kind classifies a match element as editable or protected.
type Kind string

const (
	// Simple entries carry only scalar trigger/replace fields (plus
	// allow-listed scalar metadata) and are safe to edit in place.
	Simple Kind = "simple"

	// Complex entries have any other shape and are read-only: the editor
	// cannot round-trip their dynamic constructs, so it must not touch them.
	Complex Kind = "complex"
)

// Classifier decides whether a match element is safe for in-place editing.
// The benign allow-list is a configuration surface; it is empty by default
// so only bare trigger/replace pairs count as simple.
type Classifier struct {
	benign map[string]struct{}
}

// NewClassifier builds a classifier that tolerates the given extra scalar
// fields on a simple match.
func NewClassifier(benignFields []string) *Classifier {
	benign := make(map[string]struct{}, len(benignFields))
	for _, f := range benignFields {
		benign[f] = struct{}{}
	}
	return &Classifier{benign: benign}
}

// Classify inspects one element of the matches sequence. Anything it cannot
// positively vouch for is Complex; the failure mode is always toward
// protection, never toward a false "editable".
func (c *Classifier) Classify(node *yaml.Node) Kind {
	if node == nil || node.Kind != yaml.MappingNode {
		return Complex
	}

	var hasTrigger, hasReplace bool
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if !yamldoc.IsScalar(key) {
			return Complex
		}
		switch key.Value {
		case TriggerField:
			if !yamldoc.IsScalar(val) {
				return Complex
			}
			hasTrigger = true
		case ReplaceField:
			if !yamldoc.IsScalar(val) {
				return Complex
			}
			hasReplace = true
		case varsField:
			return Complex
		default:
			if _, ok := c.benign[key.Value]; !ok {
				return Complex
			}
			if !yamldoc.IsScalar(val) {
				return Complex
			}
		}
	}

	if !hasTrigger || !hasReplace {
		return Complex
	}
	return Simple
}
