package funnel

import (
	"reflect"
	"testing"
)

func TestResolveBindingRef(t *testing.T) {
	data := map[string]any{
		"_headline": "Grow your list",
		"_count":    3,
	}

	if got := Resolve("_headline", data); got != "Grow your list" {
		t.Fatalf("expected bound value, got %v", got)
	}
	if got := Resolve("_count", data); got != 3 {
		t.Fatalf("expected bound numeric value, got %v", got)
	}
}

func TestResolveMissingBindingYieldsNil(t *testing.T) {
	if got := Resolve("_missing", map[string]any{}); got != nil {
		t.Fatalf("expected nil for missing binding, got %v", got)
	}
	if got := Resolve("_missing", nil); got != nil {
		t.Fatalf("expected nil for nil data, got %v", got)
	}
}

func TestResolveLiteralPassthrough(t *testing.T) {
	data := map[string]any{"_x": "bound"}

	if got := Resolve("plain text", data); got != "plain text" {
		t.Fatalf("expected literal passthrough, got %v", got)
	}
	if got := Resolve(42, data); got != 42 {
		t.Fatalf("expected numeric passthrough, got %v", got)
	}
	if got := Resolve(true, data); got != true {
		t.Fatalf("expected boolean passthrough, got %v", got)
	}
}

func TestResolveAll(t *testing.T) {
	attrs := map[string]any{
		"text":  "_headline",
		"level": 2,
		"ghost": "_absent",
	}
	data := map[string]any{"_headline": "Hello"}

	got := ResolveAll(attrs, data)
	want := map[string]any{
		"text":  "Hello",
		"level": 2,
		"ghost": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("resolved attributes mismatch: got %v, want %v", got, want)
	}
	if attrs["text"] != "_headline" {
		t.Fatal("input attributes were modified")
	}
}

func TestIsBindingRef(t *testing.T) {
	if !IsBindingRef("_headline") {
		t.Fatal("expected sentinel-prefixed string to be a binding ref")
	}
	if IsBindingRef("headline") {
		t.Fatal("expected plain string to not be a binding ref")
	}
	if IsBindingRef(12) {
		t.Fatal("expected non-string to not be a binding ref")
	}
}
