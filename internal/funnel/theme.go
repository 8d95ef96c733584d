package funnel

// Theme is the funnel-wide visual configuration threaded unchanged through
// every render.
type Theme struct {
	Colors  ThemeColors  `json:"colors"`
	Fonts   ThemeFonts   `json:"fonts"`
	Buttons ThemeButtons `json:"buttons"`
}

// ThemeColors holds the named colors templates draw on.
type ThemeColors struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
	Accent     string `json:"accent,omitempty"`
}

// ThemeFonts holds the heading and body font families.
type ThemeFonts struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
}

// ThemeButtons holds button styling shared by every button kind.
type ThemeButtons struct {
	// Shape is one of "rounded", "pill", or "square".
	Shape string `json:"shape,omitempty"`
}

// IsZero reports whether the colors section is entirely unset.
func (c ThemeColors) IsZero() bool {
	return c == ThemeColors{}
}

// IsZero reports whether the fonts section is entirely unset.
func (f ThemeFonts) IsZero() bool {
	return f == ThemeFonts{}
}

// IsZero reports whether the buttons section is entirely unset.
func (b ThemeButtons) IsZero() bool {
	return b == ThemeButtons{}
}

// Reserved layout template names. These exist in every catalogue the engine
// builds and cannot be deleted, since Layout falls back to them by name.
const (
	HeaderTemplateName = "header"
	FooterTemplateName = "footer"
)

// Layout names the templates composed around every page, plus the data bound
// into them.
type Layout struct {
	Header string         `json:"header,omitempty"`
	Footer string         `json:"footer,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// HeaderTemplate returns the configured header template name, falling back
// to the reserved default.
func (l Layout) HeaderTemplate() string {
	if l.Header != "" {
		return l.Header
	}
	return HeaderTemplateName
}

// FooterTemplate returns the configured footer template name, falling back
// to the reserved default.
func (l Layout) FooterTemplate() string {
	if l.Footer != "" {
		return l.Footer
	}
	return FooterTemplateName
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	out := l
	out.Data = cloneValueMap(l.Data)
	return out
}
