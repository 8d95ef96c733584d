package funnel

// Graph is one funnel document: the ordered pages plus the shared
// configuration they draw on. A Graph is treated as an immutable value;
// every edit clones it and swaps the session's current graph, which lets
// history keep snapshots by reference.
type Graph struct {
	Pages            *PageMap                   `json:"pages"`
	Templates        map[string]Node            `json:"templates"`
	Theme            Theme                      `json:"theme"`
	Layout           Layout                     `json:"layout"`
	EventRouting     map[string]RoutingEntry    `json:"eventRouting,omitempty"`
	SplitTest        *SplitTest                 `json:"splitTest,omitempty"`
	BroadcastTargets map[string]BroadcastTarget `json:"broadcastTargets,omitempty"`
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Pages:  ClonePages(g.Pages),
		Theme:  g.Theme,
		Layout: g.Layout.Clone(),
	}
	if g.Templates != nil {
		out.Templates = make(map[string]Node, len(g.Templates))
		for name, tpl := range g.Templates {
			out.Templates[name] = tpl.Clone()
		}
	}
	out.EventRouting = CloneRouting(g.EventRouting)
	if g.SplitTest != nil {
		split := SplitTest{Enabled: g.SplitTest.Enabled}
		if g.SplitTest.Variants != nil {
			split.Variants = make([]SplitTestVariant, len(g.SplitTest.Variants))
			copy(split.Variants, g.SplitTest.Variants)
		}
		out.SplitTest = &split
	}
	if g.BroadcastTargets != nil {
		out.BroadcastTargets = make(map[string]BroadcastTarget, len(g.BroadcastTargets))
		for name, target := range g.BroadcastTargets {
			out.BroadcastTargets[name] = target
		}
	}
	return out
}

// Page returns the page stored under id.
func (g *Graph) Page(id string) (Page, bool) {
	if g.Pages == nil {
		return Page{}, false
	}
	return g.Pages.Get(id)
}

// Template returns the named template from the catalogue.
func (g *Graph) Template(name string) (Node, bool) {
	tpl, ok := g.Templates[name]
	return tpl, ok
}

// TemplateInUse reports whether any page or the layout references the named
// template.
func (g *Graph) TemplateInUse(name string) bool {
	if g.Pages != nil {
		for pair := g.Pages.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Template == name {
				return true
			}
		}
	}
	return g.Layout.HeaderTemplate() == name || g.Layout.FooterTemplate() == name
}
