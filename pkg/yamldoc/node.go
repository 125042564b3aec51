package yamldoc

import "gopkg.in/yaml.v3"

// Lookup scans a mapping node for key and returns the key/value node pair,
// or nils when the key is absent or the node is not a mapping.
func Lookup(mapping *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i], mapping.Content[i+1]
		}
	}
	return nil, nil
}

// ScalarNode builds a plain string scalar node.
func ScalarNode(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if hasNewline(value) {
		n.Style = yaml.LiteralStyle
	}
	return n
}

// SetScalar rewrites a scalar node's value in place, keeping the node (and
// any comments attached to it) alive. The style is adjusted only when the
// existing one cannot carry the new value: multiline values switch to
// literal block style, and a literal/folded style is dropped when the new
// value has no newline.
func SetScalar(n *yaml.Node, value string) {
	n.Value = value
	n.Tag = "!!str"
	if hasNewline(value) {
		if n.Style != yaml.LiteralStyle && n.Style != yaml.FoldedStyle {
			n.Style = yaml.LiteralStyle
		}
	} else if n.Style == yaml.LiteralStyle || n.Style == yaml.FoldedStyle {
		n.Style = 0
	}
}

// IsScalar reports whether the node is a scalar value.
func IsScalar(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode
}

func hasNewline(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return true
		}
	}
	return false
}
