package editor

import (
	"sync"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
	"github.com/funnelsmith/funnelsmith/internal/platform/id"
)

var (
	// ErrPageNotFound indicates an operation referenced an unknown page id.
	ErrPageNotFound = apperrors.New(apperrors.CodePageNotFound, "page not found")
	// ErrPageExists indicates an add collided with an existing page id.
	ErrPageExists = apperrors.New(apperrors.CodePageAlreadyExists, "page id already exists")
	// ErrPageNameEmpty indicates a page without a name.
	ErrPageNameEmpty = apperrors.New(apperrors.CodePageNameEmpty, "page name is required")
	// ErrLastPage indicates an attempt to delete the only remaining page.
	ErrLastPage = apperrors.New(apperrors.CodePageLastRemaining, "cannot delete the last remaining page")
	// ErrInvalidReorder indicates a reorder that is not a permutation of the
	// current page ids.
	ErrInvalidReorder = apperrors.New(apperrors.CodeReorderInvalidPermutation, "reorder must list every page id exactly once")
	// ErrTemplateNotFound indicates an operation referenced an unknown template.
	ErrTemplateNotFound = apperrors.New(apperrors.CodeTemplateNotFound, "template not found")
	// ErrTemplateNameEmpty indicates a template without a name.
	ErrTemplateNameEmpty = apperrors.New(apperrors.CodeTemplateNameEmpty, "template name is required")
	// ErrTemplateInUse indicates a delete of a template some page references.
	ErrTemplateInUse = apperrors.New(apperrors.CodeTemplateInUse, "template is referenced by a page")
	// ErrTemplateReserved indicates a delete of a layout template.
	ErrTemplateReserved = apperrors.New(apperrors.CodeTemplateReserved, "template is reserved for the layout")
	// ErrRoutingEventEmpty indicates a routing patch with an empty event name.
	ErrRoutingEventEmpty = apperrors.New(apperrors.CodeRoutingEventEmpty, "event name is required")
)

// Store owns the funnel graph for one editing session. Every mutation goes
// through its methods: guards run first, then the edit applies to a fresh
// clone, structural edits reindex paths and migrate routes atomically, and
// the pre-edit snapshot lands in the session history. No partial mutation
// ever commits. The zero value is not usable; use NewStore.
type Store struct {
	mu      sync.Mutex
	graph   *funnel.Graph
	history *History
	newID   func() (string, error)
}

// NewStore creates an editing session over graph. A nil graph starts from
// the built-in starter funnel; a nil idGenerator falls back to platform ids.
func NewStore(graph *funnel.Graph, idGenerator func() (string, error)) *Store {
	if graph == nil {
		graph = funnel.DefaultGraph()
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return &Store{
		graph:   graph,
		history: NewHistory(DefaultHistoryCap),
		newID:   idGenerator,
	}
}

// Graph returns the current graph snapshot. Callers must treat it as
// read-only.
func (s *Store) Graph() *funnel.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Validate reports referential-integrity issues for the current graph.
func (s *Store) Validate() []funnel.Issue {
	return funnel.Validate(s.Graph())
}

// SetPage replaces the configuration of an existing page.
func (s *Store) SetPage(pageID string, page funnel.Page) (*funnel.Graph, funnel.MigrationStats, error) {
	return s.mutateStructural(func(g *funnel.Graph) error {
		if _, ok := g.Pages.Get(pageID); !ok {
			return ErrPageNotFound
		}
		if page.Name == "" {
			return ErrPageNameEmpty
		}
		g.Pages.Set(pageID, page.Clone())
		return nil
	})
}

// AddPage appends a page to the funnel. An empty pageID gets a generated id.
// The returned id identifies the new page in the committed graph.
func (s *Store) AddPage(pageID string, page funnel.Page) (string, *funnel.Graph, funnel.MigrationStats, error) {
	if pageID == "" {
		generated, err := s.newID()
		if err != nil {
			return "", nil, funnel.MigrationStats{}, apperrors.Wrap(apperrors.CodeUnknown, "generate page id", err)
		}
		pageID = generated
	}
	g, stats, err := s.mutateStructural(func(g *funnel.Graph) error {
		if _, ok := g.Pages.Get(pageID); ok {
			return ErrPageExists
		}
		if page.Name == "" {
			return ErrPageNameEmpty
		}
		g.Pages.Set(pageID, page.Clone())
		return nil
	})
	if err != nil {
		return "", nil, funnel.MigrationStats{}, err
	}
	return pageID, g, stats, nil
}

// DuplicatePage deep-copies a page, inserts the copy directly after its
// source, and returns the new page's id.
func (s *Store) DuplicatePage(pageID string) (string, *funnel.Graph, funnel.MigrationStats, error) {
	newID, err := s.newID()
	if err != nil {
		return "", nil, funnel.MigrationStats{}, apperrors.Wrap(apperrors.CodeUnknown, "generate page id", err)
	}
	g, stats, err := s.mutateStructural(func(g *funnel.Graph) error {
		source, ok := g.Pages.Get(pageID)
		if !ok {
			return ErrPageNotFound
		}
		duplicate := source.Clone()
		duplicate.Name = source.Name + " copy"
		g.Pages = insertAfter(g.Pages, pageID, newID, duplicate)
		return nil
	})
	if err != nil {
		return "", nil, funnel.MigrationStats{}, err
	}
	return newID, g, stats, nil
}

// ReorderPages rearranges the funnel to match order, which must list every
// current page id exactly once.
func (s *Store) ReorderPages(order []string) (*funnel.Graph, funnel.MigrationStats, error) {
	return s.mutateStructural(func(g *funnel.Graph) error {
		if len(order) != g.Pages.Len() {
			return ErrInvalidReorder
		}
		reordered := funnel.NewPages()
		for _, key := range order {
			page, ok := g.Pages.Get(key)
			if !ok {
				return ErrInvalidReorder
			}
			if _, dup := reordered.Get(key); dup {
				return ErrInvalidReorder
			}
			reordered.Set(key, page)
		}
		g.Pages = reordered
		return nil
	})
}

// DeletePage removes a page. The last remaining page cannot be deleted.
func (s *Store) DeletePage(pageID string) (*funnel.Graph, funnel.MigrationStats, error) {
	return s.mutateStructural(func(g *funnel.Graph) error {
		if _, ok := g.Pages.Get(pageID); !ok {
			return ErrPageNotFound
		}
		if g.Pages.Len() <= 1 {
			return ErrLastPage
		}
		g.Pages.Delete(pageID)
		return nil
	})
}

// SetTemplates merges the given templates into the catalogue.
func (s *Store) SetTemplates(templates map[string]funnel.Node) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		for name, tpl := range templates {
			if name == "" {
				return ErrTemplateNameEmpty
			}
			if g.Templates == nil {
				g.Templates = map[string]funnel.Node{}
			}
			g.Templates[name] = tpl.Clone()
		}
		return nil
	})
}

// DeleteTemplate removes a template from the catalogue. Reserved layout
// templates and templates still referenced by a page are refused.
func (s *Store) DeleteTemplate(name string) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		if _, ok := g.Templates[name]; !ok {
			return ErrTemplateNotFound
		}
		if name == funnel.HeaderTemplateName || name == funnel.FooterTemplateName ||
			name == g.Layout.HeaderTemplate() || name == g.Layout.FooterTemplate() {
			return ErrTemplateReserved
		}
		if g.TemplateInUse(name) {
			return ErrTemplateInUse
		}
		delete(g.Templates, name)
		return nil
	})
}

// SetEventRouting merges a routing patch: non-nil entries are set, nil
// entries are removed.
func (s *Store) SetEventRouting(patch map[string]*funnel.RoutingEntry) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		for event, entry := range patch {
			if event == "" {
				return ErrRoutingEventEmpty
			}
			if entry == nil {
				delete(g.EventRouting, event)
				continue
			}
			if g.EventRouting == nil {
				g.EventRouting = map[string]funnel.RoutingEntry{}
			}
			g.EventRouting[event] = entry.Clone()
		}
		return nil
	})
}

// SetBroadcastTargets merges a broadcast-target patch: non-nil targets are
// set, nil targets are removed.
func (s *Store) SetBroadcastTargets(patch map[string]*funnel.BroadcastTarget) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		for name, target := range patch {
			if target == nil {
				delete(g.BroadcastTargets, name)
				continue
			}
			if g.BroadcastTargets == nil {
				g.BroadcastTargets = map[string]funnel.BroadcastTarget{}
			}
			g.BroadcastTargets[name] = *target
		}
		return nil
	})
}

// SetTheme replaces the funnel theme.
func (s *Store) SetTheme(theme funnel.Theme) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		g.Theme = theme
		return nil
	})
}

// SetLayout replaces the layout configuration.
func (s *Store) SetLayout(layout funnel.Layout) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		g.Layout = layout.Clone()
		return nil
	})
}

// SetSplitTest replaces the split-test configuration; nil clears it.
func (s *Store) SetSplitTest(split *funnel.SplitTest) (*funnel.Graph, error) {
	return s.mutateConfig(func(g *funnel.Graph) error {
		if split == nil {
			g.SplitTest = nil
			return nil
		}
		value := funnel.SplitTest{Enabled: split.Enabled}
		if split.Variants != nil {
			value.Variants = make([]funnel.SplitTestVariant, len(split.Variants))
			copy(value.Variants, split.Variants)
		}
		g.SplitTest = &value
		return nil
	})
}

// ImportDocument replaces the whole graph with a parsed document. The
// replacement is recorded in history, so an import can be undone.
func (s *Store) ImportDocument(data []byte) (*funnel.Graph, error) {
	imported, err := funnel.ImportDocument(data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Push(s.graph)
	s.graph = imported
	return imported, nil
}

// ExportDocument serializes the current graph and returns it together with a
// final validation pass.
func (s *Store) ExportDocument() ([]byte, []funnel.Issue, error) {
	return funnel.ExportDocument(s.Graph())
}

// Undo restores the previous graph snapshot. With empty history it returns
// the current graph unchanged.
func (s *Store) Undo() *funnel.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.history.Undo(s.graph)
	if ok {
		s.graph = g
	}
	return s.graph
}

// Redo re-applies the most recently undone mutation. With nothing to redo it
// returns the current graph unchanged.
func (s *Store) Redo() *funnel.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.history.Redo(s.graph)
	if ok {
		s.graph = g
	}
	return s.graph
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// mutateStructural clones the current graph, applies edit, reindexes paths,
// and migrates routing targets as one atomic step against the pre-edit
// snapshot.
func (s *Store) mutateStructural(edit func(*funnel.Graph) error) (*funnel.Graph, funnel.MigrationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.graph
	next := prev.Clone()
	if err := edit(next); err != nil {
		return nil, funnel.MigrationStats{}, err
	}

	next.Pages = funnel.ReindexPages(next.Pages)
	routing, stats := funnel.MigrateRoutes(prev.Pages, next.Pages, next.EventRouting)
	next.EventRouting = routing

	s.history.Push(prev)
	s.graph = next
	return next, stats, nil
}

// mutateConfig clones the current graph and applies a non-structural edit;
// page order and paths are untouched, so no migration runs.
func (s *Store) mutateConfig(edit func(*funnel.Graph) error) (*funnel.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.graph
	next := prev.Clone()
	if err := edit(next); err != nil {
		return nil, err
	}

	s.history.Push(prev)
	s.graph = next
	return next, nil
}

// insertAfter rebuilds the collection with newKey directly after afterKey.
func insertAfter(pages *funnel.PageMap, afterKey, newKey string, page funnel.Page) *funnel.PageMap {
	out := funnel.NewPages()
	for pair := pages.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
		if pair.Key == afterKey {
			out.Set(newKey, page)
		}
	}
	return out
}
