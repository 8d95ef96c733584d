package funnel

// DefaultTheme returns the starter theme used when a document carries none.
func DefaultTheme() Theme {
	return Theme{
		Colors: ThemeColors{
			Primary:    "#4f46e5",
			Secondary:  "#6b7280",
			Background: "#ffffff",
			Text:       "#111827",
			Accent:     "#f59e0b",
		},
		Fonts: ThemeFonts{
			Heading: "Inter",
			Body:    "Inter",
		},
		Buttons: ThemeButtons{
			Shape: "rounded",
		},
	}
}

// DefaultLayout returns the starter layout bound to the reserved header and
// footer templates.
func DefaultLayout() Layout {
	return Layout{
		Header: HeaderTemplateName,
		Footer: FooterTemplateName,
		Data: map[string]any{
			"_brand_name":  "Funnelsmith",
			"_footer_note": "Made with Funnelsmith",
		},
	}
}

// builtinTemplates returns a fresh copy of the starter template catalogue.
func builtinTemplates() map[string]Node {
	return map[string]Node{
		HeaderTemplateName: {
			Kind:       "section",
			Attributes: map[string]any{"variant": "header"},
			Children: Children(
				Node{Kind: "heading", Attributes: map[string]any{"text": "_brand_name", "level": 3}},
			),
		},
		FooterTemplateName: {
			Kind:       "section",
			Attributes: map[string]any{"variant": "footer"},
			Children: Children(
				Node{Kind: "text", Attributes: map[string]any{"text": "_footer_note"}},
			),
		},
		"optin": {
			Kind: "section",
			Children: Children(
				Node{Kind: "heading", Attributes: map[string]any{"text": "_headline", "level": 1}},
				Node{Kind: "text", Attributes: map[string]any{"text": "_subheadline"}},
				Node{Kind: "input", Attributes: map[string]any{"name": "email", "placeholder": "_email_placeholder"}},
				Node{Kind: "button", Attributes: map[string]any{"label": "_cta_label", "event": "_cta_event"}},
			),
		},
		"sales": {
			Kind: "section",
			Children: Children(
				Node{Kind: "heading", Attributes: map[string]any{"text": "_headline", "level": 1}},
				Node{Kind: "video", Attributes: map[string]any{"url": "_video_url"}},
				Node{Kind: "text", Attributes: map[string]any{"text": "_pitch"}},
				Node{Kind: "button", Attributes: map[string]any{"label": "_cta_label", "event": "_cta_event"}},
			),
		},
		"thankyou": {
			Kind: "section",
			Children: Children(
				Node{Kind: "heading", Attributes: map[string]any{"text": "_headline", "level": 1}},
				Node{Kind: "text", Attributes: map[string]any{"text": "_message"}},
				Node{Kind: "divider"},
				Node{Kind: "links", Children: ChildrenRef("_resources")},
			),
		},
	}
}

// DefaultGraph builds the built-in starter funnel: an opt-in page, an offer
// page, and a thank-you page wired together by sequential routes.
func DefaultGraph() *Graph {
	pages := NewPages()
	pages.Set("landing", Page{
		Name:     "Landing",
		Path:     "1",
		Template: "optin",
		Data: map[string]any{
			"_headline":          "Grow your list",
			"_subheadline":       "A five-day email course on funnels that convert.",
			"_email_placeholder": "you@example.com",
			"_cta_label":         "Get the course",
			"_cta_event":         "optin_submitted",
		},
		TrackingEvents: []string{"page_view"},
	})
	pages.Set("offer", Page{
		Name:     "Offer",
		Path:     "2",
		Template: "sales",
		Data: map[string]any{
			"_headline":  "One more thing before your inbox",
			"_video_url": "https://player.example.com/embed/funnels-101",
			"_pitch":     "The complete workbook, templates included.",
			"_cta_label": "Buy the workbook",
			"_cta_event": "workbook_checkout",
		},
	})
	pages.Set("thanks", Page{
		Name:     "Thanks",
		Path:     "3",
		Template: "thankyou",
		Data: map[string]any{
			"_headline": "You're in",
			"_message":  "Check your inbox for lesson one.",
			"_resources": []any{
				map[string]any{"label": "Starter checklist", "url": "https://example.com/checklist"},
				map[string]any{"label": "Swipe file", "url": "https://example.com/swipes"},
			},
		},
	})

	return &Graph{
		Pages:     pages,
		Templates: builtinTemplates(),
		Theme:     DefaultTheme(),
		Layout:    DefaultLayout(),
		EventRouting: map[string]RoutingEntry{
			"optin_submitted": {
				Route:     &Route{To: "2"},
				AnswerKey: "email",
			},
			"workbook_checkout": {
				Route:    &Route{To: "3"},
				Checkout: &Checkout{ProductID: "workbook"},
			},
		},
	}
}
