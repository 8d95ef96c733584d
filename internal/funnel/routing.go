package funnel

import (
	"strings"

	"github.com/spf13/cast"
)

// RoutingEntry describes what happens when a named event fires. Entries are
// keyed by event name in Graph.EventRouting; a page owns an event by using
// the event name as one of its data values.
type RoutingEntry struct {
	Route *Route `json:"route,omitempty"`
	// AnswerKey names the data-capture field this event stores its answer
	// under.
	AnswerKey string `json:"answerKey,omitempty"`
	// Broadcast maps broadcast-target names to outbound payloads.
	Broadcast map[string]map[string]any `json:"broadcast,omitempty"`
	Scroll    *Scroll                   `json:"scroll,omitempty"`
	Checkout  *Checkout                 `json:"checkout,omitempty"`
}

// Route is a navigation directive: an unconditional target path plus
// optional conditional branches evaluated before it.
type Route struct {
	To         string      `json:"to,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Condition is one conditional branch: when the captured field matches, the
// event routes to Target instead of the route's default.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
	Target   string `json:"target"`
}

// Scroll directs the client to scroll to an anchor instead of, or before,
// navigating.
type Scroll struct {
	Target string `json:"target"`
	Smooth bool   `json:"smooth,omitempty"`
}

// Checkout opens a checkout flow for the named product.
type Checkout struct {
	ProductID string `json:"productId"`
	SuccessTo string `json:"successTo,omitempty"`
}

// BroadcastTarget is an outbound destination routing entries can broadcast
// payloads to.
type BroadcastTarget struct {
	Kind    string `json:"kind"`
	URL     string `json:"url,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`
}

// SplitTest optionally splits funnel entry between page variants.
type SplitTest struct {
	Enabled  bool               `json:"enabled,omitempty"`
	Variants []SplitTestVariant `json:"variants,omitempty"`
}

// SplitTestVariant weights one entry page of a split test.
type SplitTestVariant struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Weight int    `json:"weight"`
}

// Pick selects a variant by weight using roll, which must return a value in
// [0, n). Variants with a non-positive weight are never selected. The second
// return is false when the test is disabled or no weight is in play.
func (st *SplitTest) Pick(roll func(n int) int) (SplitTestVariant, bool) {
	if st == nil || !st.Enabled || roll == nil {
		return SplitTestVariant{}, false
	}
	total := 0
	for _, v := range st.Variants {
		if v.Weight > 0 {
			total += v.Weight
		}
	}
	if total == 0 {
		return SplitTestVariant{}, false
	}
	ticket := roll(total)
	for _, v := range st.Variants {
		if v.Weight <= 0 {
			continue
		}
		if ticket < v.Weight {
			return v, true
		}
		ticket -= v.Weight
	}
	return SplitTestVariant{}, false
}

// Clone returns a deep copy of the routing entry.
func (e RoutingEntry) Clone() RoutingEntry {
	out := e
	if e.Route != nil {
		route := Route{To: e.Route.To}
		if e.Route.Conditions != nil {
			route.Conditions = make([]Condition, len(e.Route.Conditions))
			copy(route.Conditions, e.Route.Conditions)
		}
		out.Route = &route
	}
	if e.Broadcast != nil {
		out.Broadcast = make(map[string]map[string]any, len(e.Broadcast))
		for target, payload := range e.Broadcast {
			out.Broadcast[target] = cloneValueMap(payload)
		}
	}
	if e.Scroll != nil {
		scroll := *e.Scroll
		out.Scroll = &scroll
	}
	if e.Checkout != nil {
		checkout := *e.Checkout
		out.Checkout = &checkout
	}
	return out
}

// CloneRouting returns a deep copy of an event-routing table.
func CloneRouting(routing map[string]RoutingEntry) map[string]RoutingEntry {
	if routing == nil {
		return nil
	}
	out := make(map[string]RoutingEntry, len(routing))
	for name, entry := range routing {
		out[name] = entry.Clone()
	}
	return out
}

// Matches evaluates the condition against captured answers. Unknown
// operators and incomparable values never match.
func (c Condition) Matches(answers map[string]any) bool {
	got, ok := answers[c.Field]
	if !ok {
		return false
	}
	switch strings.ToLower(c.Operator) {
	case "eq", "equals":
		return cast.ToString(got) == cast.ToString(c.Value)
	case "neq", "not_equals":
		return cast.ToString(got) != cast.ToString(c.Value)
	case "contains":
		return strings.Contains(cast.ToString(got), cast.ToString(c.Value))
	case "gt", "gte", "lt", "lte":
		lhs, lerr := cast.ToFloat64E(got)
		rhs, rerr := cast.ToFloat64E(c.Value)
		if lerr != nil || rerr != nil {
			return false
		}
		switch strings.ToLower(c.Operator) {
		case "gt":
			return lhs > rhs
		case "gte":
			return lhs >= rhs
		case "lt":
			return lhs < rhs
		default:
			return lhs <= rhs
		}
	default:
		return false
	}
}

// NextPath resolves the path an event leads to given captured answers:
// the first matching condition wins, then the route's unconditional target.
// An empty return means the event does not navigate.
func (e RoutingEntry) NextPath(answers map[string]any) string {
	if e.Route == nil {
		return ""
	}
	for _, condition := range e.Route.Conditions {
		if condition.Matches(answers) {
			return condition.Target
		}
	}
	return e.Route.To
}
