package funnel

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PageMap is the insertion-ordered page collection, keyed by page id. The
// collection order is the funnel order; every page's Path is derived from it
// by ReindexPages.
type PageMap = orderedmap.OrderedMap[string, Page]

// NewPages returns an empty ordered page collection.
func NewPages() *PageMap {
	return orderedmap.New[string, Page]()
}

// Page is one funnel step: a template reference plus the data bound into it.
// The page id is the key of the surrounding PageMap and is not serialized
// inside the page body.
type Page struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Template string `json:"template"`
	// Data holds the values bound into the template. Values equal to an
	// event-routing entry name mark this page as that event's owner.
	Data           map[string]any `json:"data,omitempty"`
	Meta           *PageMeta      `json:"meta,omitempty"`
	TrackingEvents []string       `json:"trackingEvents,omitempty"`
	// ShowHeader and ShowFooter default to true when nil.
	ShowHeader *bool `json:"showHeader,omitempty"`
	ShowFooter *bool `json:"showFooter,omitempty"`
}

// PageMeta carries per-page document metadata.
type PageMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := p
	out.Data = cloneValueMap(p.Data)
	if p.Meta != nil {
		meta := *p.Meta
		out.Meta = &meta
	}
	if p.TrackingEvents != nil {
		out.TrackingEvents = append([]string(nil), p.TrackingEvents...)
	}
	if p.ShowHeader != nil {
		v := *p.ShowHeader
		out.ShowHeader = &v
	}
	if p.ShowFooter != nil {
		v := *p.ShowFooter
		out.ShowFooter = &v
	}
	return out
}

// ClonePages returns a deep copy of the collection, preserving order.
func ClonePages(pages *PageMap) *PageMap {
	out := NewPages()
	if pages == nil {
		return out
	}
	for pair := pages.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value.Clone())
	}
	return out
}

// PageKeys returns the page ids in collection order.
func PageKeys(pages *PageMap) []string {
	if pages == nil {
		return nil
	}
	keys := make([]string, 0, pages.Len())
	for pair := pages.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// PageByPath returns the id and page sitting at the given path.
func PageByPath(pages *PageMap, path string) (string, Page, bool) {
	if pages == nil {
		return "", Page{}, false
	}
	for pair := pages.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Path == path {
			return pair.Key, pair.Value, true
		}
	}
	return "", Page{}, false
}
