package funnel

import (
	"encoding/json"
	"testing"
)

func TestNodeChildrenJSONRoundTrip(t *testing.T) {
	node := Node{
		Kind:       "section",
		Attributes: map[string]any{"variant": "hero"},
		Children: Children(
			Node{Kind: "heading", Attributes: map[string]any{"text": "_headline"}},
			Node{Kind: "links", Children: ChildrenRef("_resources")},
		),
	}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal node: %v", err)
	}

	var decoded Node
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal node: %v", err)
	}

	if decoded.Children == nil {
		t.Fatal("expected children after round trip")
	}
	if len(decoded.Children.Nodes) != 2 {
		t.Fatalf("expected 2 child nodes, got %d", len(decoded.Children.Nodes))
	}
	links := decoded.Children.Nodes[1]
	if links.Children == nil || links.Children.Ref != "_resources" {
		t.Fatalf("expected binding-reference children, got %+v", links.Children)
	}
}

func TestNodeChildrenUnmarshalBindingRef(t *testing.T) {
	var node Node
	if err := json.Unmarshal([]byte(`{"kind":"links","children":"_items"}`), &node); err != nil {
		t.Fatalf("unmarshal node: %v", err)
	}
	if node.Children == nil || node.Children.Ref != "_items" {
		t.Fatalf("expected children ref %q, got %+v", "_items", node.Children)
	}
	if node.Children.Nodes != nil {
		t.Fatal("expected no nested nodes for a binding reference")
	}
}

func TestNodeChildrenUnmarshalAbsent(t *testing.T) {
	var node Node
	if err := json.Unmarshal([]byte(`{"kind":"divider"}`), &node); err != nil {
		t.Fatalf("unmarshal node: %v", err)
	}
	if node.Children != nil {
		t.Fatalf("expected nil children, got %+v", node.Children)
	}
}

func TestNodeChildrenUnmarshalRejectsWrongShape(t *testing.T) {
	var node Node
	if err := json.Unmarshal([]byte(`{"kind":"stack","children":42}`), &node); err == nil {
		t.Fatal("expected error for numeric children")
	}
}

func TestNodeCloneIsolatesNestedValues(t *testing.T) {
	node := Node{
		Kind: "section",
		Attributes: map[string]any{
			"style": map[string]any{"align": "center"},
		},
		Children: Children(
			Node{Kind: "text", Attributes: map[string]any{"text": "_copy"}},
		),
	}

	clone := node.Clone()
	clone.Attributes["style"].(map[string]any)["align"] = "left"
	clone.Children.Nodes[0].Attributes["text"] = "changed"

	if node.Attributes["style"].(map[string]any)["align"] != "center" {
		t.Fatal("clone mutation leaked into original attributes")
	}
	if node.Children.Nodes[0].Attributes["text"] != "_copy" {
		t.Fatal("clone mutation leaked into original children")
	}
}
