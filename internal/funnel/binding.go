package funnel

import "strings"

// BindingPrefix marks a string attribute value as a reference into a page's
// data dictionary, e.g. "_headline".
const BindingPrefix = "_"

// IsBindingRef reports whether value is a binding reference.
func IsBindingRef(value any) bool {
	s, ok := value.(string)
	return ok && strings.HasPrefix(s, BindingPrefix)
}

// Resolve looks a binding reference up in data, keyed by the full sentinel
// string. Missing keys resolve to nil; literals pass through unchanged.
// Missing bindings are expected during template authoring, so Resolve never
// fails.
func Resolve(value any, data map[string]any) any {
	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, BindingPrefix) {
		return value
	}
	if data == nil {
		return nil
	}
	return data[s]
}

// ResolveAll resolves every attribute value in attrs against data. The input
// map is never modified.
func ResolveAll(attrs map[string]any, data map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for key, value := range attrs {
		out[key] = Resolve(value, data)
	}
	return out
}
