package funnel

import "strconv"

// ReindexPages returns a new collection where the page in position i carries
// path strconv.Itoa(i+1), leaving every other field untouched. It is a pure
// function of collection order and idempotent; it never mutates its input.
// The returned collection shares page data with the input, so callers that
// need isolation clone first.
func ReindexPages(pages *PageMap) *PageMap {
	out := NewPages()
	if pages == nil {
		return out
	}
	index := 0
	for pair := pages.Oldest(); pair != nil; pair = pair.Next() {
		page := pair.Value
		page.Path = strconv.Itoa(index + 1)
		out.Set(pair.Key, page)
		index++
	}
	return out
}
