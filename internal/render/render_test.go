package render

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestRenderNodeResolvesBindings(t *testing.T) {
	engine := NewEngine(nil)
	node := funnel.Node{
		Kind:       "heading",
		Attributes: map[string]any{"text": "_title", "level": 2},
	}
	data := map[string]any{"_title": "Hello & welcome"}

	html := renderString(t, engine.RenderNode(node, data, funnel.DefaultTheme()))

	if !strings.Contains(html, "<h2") {
		t.Fatalf("expected h2, got %q", html)
	}
	if !strings.Contains(html, "Hello &amp; welcome") {
		t.Fatalf("expected escaped bound text, got %q", html)
	}
}

func TestRenderNodeLiteralAttributes(t *testing.T) {
	engine := NewEngine(nil)
	node := funnel.Node{Kind: "text", Attributes: map[string]any{"text": "Plain words"}}

	html := renderString(t, engine.RenderNode(node, nil, funnel.Theme{}))

	if html != `<p class="fs-text">Plain words</p>` {
		t.Fatalf("unexpected output %q", html)
	}
}

func TestRenderNodeMissingBindingRendersEmpty(t *testing.T) {
	engine := NewEngine(nil)
	node := funnel.Node{Kind: "heading", Attributes: map[string]any{"text": "_absent"}}

	html := renderString(t, engine.RenderNode(node, map[string]any{}, funnel.Theme{}))

	if strings.Contains(html, "_absent") {
		t.Fatalf("binding name leaked into output: %q", html)
	}
	if !strings.Contains(html, `></h1>`) {
		t.Fatalf("expected empty heading, got %q", html)
	}
}

func TestRenderNodeUnknownKindKeepsSiblings(t *testing.T) {
	engine := NewEngine(nil)
	node := funnel.Node{
		Kind: "section",
		Children: funnel.Children(
			funnel.Node{Kind: "heading", Attributes: map[string]any{"text": "One"}},
			funnel.Node{Kind: "sparkle"},
			funnel.Node{Kind: "text", Attributes: map[string]any{"text": "Two"}},
		),
	}

	html := renderString(t, engine.RenderNode(node, nil, funnel.Theme{}))

	first := strings.Index(html, "One")
	marker := strings.Index(html, "fs-unknown-kind")
	last := strings.Index(html, "Two")
	if first < 0 || marker < 0 || last < 0 {
		t.Fatalf("expected both siblings and a placeholder, got %q", html)
	}
	if !(first < marker && marker < last) {
		t.Fatalf("placeholder out of order in %q", html)
	}
	if !strings.Contains(html, "sparkle") {
		t.Fatalf("placeholder should name the kind, got %q", html)
	}
}

func TestRenderNodeChildrenRefConsumesData(t *testing.T) {
	engine := NewEngine(nil)
	node := funnel.Node{Kind: "links", Children: funnel.ChildrenRef("_resources")}
	data := map[string]any{
		"_resources": []any{
			map[string]any{"label": "Starter checklist", "url": "https://example.com/checklist"},
			map[string]any{"label": "Swipe file", "url": "https://example.com/swipes"},
		},
	}

	html := renderString(t, engine.RenderNode(node, data, funnel.Theme{}))

	if !strings.Contains(html, `<a href="https://example.com/checklist">Starter checklist</a>`) {
		t.Fatalf("expected first link, got %q", html)
	}
	if !strings.Contains(html, "Swipe file") {
		t.Fatalf("expected second link, got %q", html)
	}
}

func TestRenderPageMissingTemplate(t *testing.T) {
	engine := NewEngine(nil)
	g := funnel.DefaultGraph()
	page, _ := g.Pages.Get("landing")
	page.Template = "ghost"
	g.Pages.Set("landing", page)

	html := renderString(t, engine.RenderPage(g, "landing"))

	if !strings.Contains(html, "fs-missing-template") || !strings.Contains(html, "ghost") {
		t.Fatalf("expected missing-template placeholder, got %q", html)
	}
}

func TestRenderPageUnknownPage(t *testing.T) {
	engine := NewEngine(nil)

	html := renderString(t, engine.RenderPage(funnel.DefaultGraph(), "nope"))

	if !strings.Contains(html, "fs-missing-page") {
		t.Fatalf("expected missing-page placeholder, got %q", html)
	}
}

func TestRenderDocumentComposesLayoutAndTheme(t *testing.T) {
	engine := NewEngine(nil)
	g := funnel.DefaultGraph()

	html := renderString(t, engine.RenderDocument(g, "landing"))

	header := strings.Index(html, ">Funnelsmith</h3>")
	headline := strings.Index(html, "Grow your list")
	footer := strings.Index(html, "Made with Funnelsmith")
	if header < 0 || headline < 0 || footer < 0 {
		t.Fatalf("expected header, page and footer, got %q", html)
	}
	if !(header < headline && headline < footer) {
		t.Fatalf("layout out of order in %q", html)
	}
	if !strings.Contains(html, "--fs-color-primary:#4f46e5;") {
		t.Fatalf("expected theme custom properties, got %q", html)
	}
	if !strings.Contains(html, "--fs-button-radius:8px;") {
		t.Fatalf("expected rounded button radius, got %q", html)
	}
}

func TestRenderDocumentHonorsShowFlags(t *testing.T) {
	engine := NewEngine(nil)
	g := funnel.DefaultGraph()
	hide := false
	page, _ := g.Pages.Get("landing")
	page.ShowHeader = &hide
	page.ShowFooter = &hide
	g.Pages.Set("landing", page)

	html := renderString(t, engine.RenderDocument(g, "landing"))

	if strings.Contains(html, ">Funnelsmith</h3>") {
		t.Fatalf("header should be hidden, got %q", html)
	}
	if strings.Contains(html, "Made with Funnelsmith") {
		t.Fatalf("footer should be hidden, got %q", html)
	}
	if !strings.Contains(html, "Grow your list") {
		t.Fatalf("page body should still render, got %q", html)
	}
}

func TestRenderDocumentEscapesBoundText(t *testing.T) {
	engine := NewEngine(nil)
	g := funnel.DefaultGraph()
	page, _ := g.Pages.Get("landing")
	page.Data["_headline"] = `<script>alert(1)</script>`
	g.Pages.Set("landing", page)

	html := renderString(t, engine.RenderDocument(g, "landing"))

	if strings.Contains(html, "<script>") {
		t.Fatalf("bound text must be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped script tag, got %q", html)
	}
}

func TestRegistryOverride(t *testing.T) {
	registry := DefaultRegistry()
	registry.Register("text", headingKind{})
	engine := NewEngine(registry)
	node := funnel.Node{Kind: "text", Attributes: map[string]any{"text": "Loud"}}

	html := renderString(t, engine.RenderNode(node, nil, funnel.Theme{}))

	if !strings.Contains(html, "<h1") {
		t.Fatalf("override not applied, got %q", html)
	}
}
