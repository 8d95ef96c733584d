package funnel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node describes one UI fragment: a kind name dispatched against the
// renderer registry, attribute values (literals or binding references), and
// optional children.
type Node struct {
	Kind       string         `json:"kind"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Children   *NodeChildren  `json:"children,omitempty"`
}

// NodeChildren holds either nested nodes or a binding reference to raw data.
// Exactly one of Nodes and Ref is set; a nil *NodeChildren means the node has
// no children at all.
type NodeChildren struct {
	Nodes []Node
	Ref   string
}

// Children returns a NodeChildren wrapping nested nodes.
func Children(nodes ...Node) *NodeChildren {
	return &NodeChildren{Nodes: nodes}
}

// ChildrenRef returns a NodeChildren referencing raw data under a binding key.
func ChildrenRef(ref string) *NodeChildren {
	return &NodeChildren{Ref: ref}
}

// MarshalJSON writes children as a node array, or as a bare string when the
// children are a binding reference.
func (c NodeChildren) MarshalJSON() ([]byte, error) {
	if c.Ref != "" {
		return json.Marshal(c.Ref)
	}
	return json.Marshal(c.Nodes)
}

// UnmarshalJSON accepts either a node array or a binding-reference string.
func (c *NodeChildren) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("node children: empty value")
	}
	switch trimmed[0] {
	case '[':
		return json.Unmarshal(data, &c.Nodes)
	case '"':
		return json.Unmarshal(data, &c.Ref)
	case 'n': // null
		*c = NodeChildren{}
		return nil
	default:
		return fmt.Errorf("node children: expected array or binding reference")
	}
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Attributes = cloneValueMap(n.Attributes)
	if n.Children != nil {
		children := n.Children.Clone()
		out.Children = &children
	}
	return out
}

// Clone returns a deep copy of the children variant.
func (c NodeChildren) Clone() NodeChildren {
	out := NodeChildren{Ref: c.Ref}
	if c.Nodes != nil {
		out.Nodes = make([]Node, len(c.Nodes))
		for i, child := range c.Nodes {
			out.Nodes[i] = child.Clone()
		}
	}
	return out
}

// cloneValue deep-copies JSON-shaped values: maps and slices are copied,
// scalars are returned as-is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneValueMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneValueMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
