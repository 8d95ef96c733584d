// Package render turns funnel node trees into HTML fragments.
//
// The walker resolves bindings against page data and dispatches every node
// to a kind renderer looked up in a registry. Unknown kinds and missing
// templates degrade to visible placeholders; a single bad node never blanks
// the page. Fragments are templ components, composed with the templ runtime.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
)

// Context carries the ambient read-only inputs of one render pass. The theme
// is threaded unchanged to every level; it is configuration, not a binding.
type Context struct {
	Theme funnel.Theme
	Data  map[string]any
}

// Children carries a node's composed children: rendered fragments when the
// template nests nodes, or the raw resolved value when it binds children to
// data (a links list consumes records, not fragments).
type Children struct {
	Fragments []templ.Component
	Data      any
}

// Element is one node after binding resolution, as handed to a kind
// renderer.
type Element struct {
	Kind     string
	Attrs    map[string]any
	Children Children
}

// KindRenderer renders one node kind. New visual kinds are added by
// registering an implementation, never by touching the walker.
type KindRenderer interface {
	Render(rctx Context, el Element) templ.Component
}

// Registry maps kind names to their renderers.
type Registry struct {
	kinds map[string]KindRenderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: map[string]KindRenderer{}}
}

// Register adds or replaces the renderer for a kind name.
func (r *Registry) Register(kind string, renderer KindRenderer) {
	r.kinds[kind] = renderer
}

// Lookup returns the renderer registered for a kind name.
func (r *Registry) Lookup(kind string) (KindRenderer, bool) {
	renderer, ok := r.kinds[kind]
	return renderer, ok
}

// Engine walks node trees and composes rendered pages and documents. It
// only ever reads the graph; rendering is safe to invoke repeatedly.
type Engine struct {
	registry *Registry
}

// NewEngine returns an engine dispatching against registry; nil means the
// built-in kind set.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{registry: registry}
}

// RenderNode renders one node tree against a data dictionary and theme.
func (e *Engine) RenderNode(node funnel.Node, data map[string]any, theme funnel.Theme) templ.Component {
	return e.renderNode(Context{Theme: theme, Data: data}, node)
}

// RenderPage renders a page's template bound to its data.
func (e *Engine) RenderPage(g *funnel.Graph, pageID string) templ.Component {
	page, ok := g.Page(pageID)
	if !ok {
		return placeholder("fs-missing-page", fmt.Sprintf("page %q not found", pageID))
	}
	tpl, ok := g.Template(page.Template)
	if !ok {
		return placeholder("fs-missing-template", fmt.Sprintf("template %q not found", page.Template))
	}
	return e.RenderNode(tpl, page.Data, g.Theme)
}

// RenderDocument composes the layout header and footer around a page,
// honoring the page's show flags, inside a wrapper carrying the theme as CSS
// custom properties.
func (e *Engine) RenderDocument(g *funnel.Graph, pageID string) templ.Component {
	page, ok := g.Page(pageID)
	if !ok {
		return placeholder("fs-missing-page", fmt.Sprintf("page %q not found", pageID))
	}

	parts := make([]templ.Component, 0, 3)
	if showFlag(page.ShowHeader) {
		parts = append(parts, e.renderLayoutTemplate(g, g.Layout.HeaderTemplate()))
	}
	parts = append(parts, e.RenderPage(g, pageID))
	if showFlag(page.ShowFooter) {
		parts = append(parts, e.renderLayoutTemplate(g, g.Layout.FooterTemplate()))
	}
	body := templ.Join(parts...)

	style := themeStyle(g.Theme)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="fs-document" style="%s">`, templ.EscapeString(style)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func (e *Engine) renderLayoutTemplate(g *funnel.Graph, name string) templ.Component {
	tpl, ok := g.Template(name)
	if !ok {
		return placeholder("fs-missing-template", fmt.Sprintf("template %q not found", name))
	}
	return e.RenderNode(tpl, g.Layout.Data, g.Theme)
}

func (e *Engine) renderNode(rctx Context, node funnel.Node) templ.Component {
	el := Element{
		Kind:  node.Kind,
		Attrs: funnel.ResolveAll(node.Attributes, rctx.Data),
	}
	if node.Children != nil {
		if node.Children.Ref != "" {
			el.Children.Data = funnel.Resolve(node.Children.Ref, rctx.Data)
		} else {
			el.Children.Fragments = make([]templ.Component, 0, len(node.Children.Nodes))
			for _, child := range node.Children.Nodes {
				el.Children.Fragments = append(el.Children.Fragments, e.renderNode(rctx, child))
			}
		}
	}

	renderer, ok := e.registry.Lookup(node.Kind)
	if !ok {
		return placeholder("fs-unknown-kind", fmt.Sprintf("unknown kind %q", node.Kind))
	}
	return renderer.Render(rctx, el)
}

// placeholder renders the visible degradation marker used for unknown kinds
// and missing templates.
func placeholder(class, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="fs-placeholder %s">%s</div>`, class, templ.EscapeString(text))
		return err
	})
}

// showFlag interprets a page's ShowHeader/ShowFooter pointer: nil means
// shown.
func showFlag(flag *bool) bool {
	return flag == nil || *flag
}

// themeStyle flattens the theme into CSS custom properties consumed by the
// built-in kinds.
func themeStyle(theme funnel.Theme) string {
	var b strings.Builder
	writeProp := func(prop, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s:%s;", prop, value)
		}
	}
	writeProp("--fs-color-primary", theme.Colors.Primary)
	writeProp("--fs-color-secondary", theme.Colors.Secondary)
	writeProp("--fs-color-background", theme.Colors.Background)
	writeProp("--fs-color-text", theme.Colors.Text)
	writeProp("--fs-color-accent", theme.Colors.Accent)
	writeProp("--fs-font-heading", theme.Fonts.Heading)
	writeProp("--fs-font-body", theme.Fonts.Body)
	writeProp("--fs-button-radius", buttonRadius(theme.Buttons.Shape))
	return b.String()
}

func buttonRadius(shape string) string {
	switch shape {
	case "pill":
		return "9999px"
	case "square":
		return "0"
	case "rounded":
		return "8px"
	default:
		return ""
	}
}
