package render

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/spf13/cast"
)

// DefaultRegistry returns a registry with every built-in kind registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("section", sectionKind{})
	r.Register("stack", stackKind{})
	r.Register("heading", headingKind{})
	r.Register("text", textKind{})
	r.Register("image", imageKind{})
	r.Register("button", buttonKind{})
	r.Register("input", inputKind{})
	r.Register("choice", choiceKind{})
	r.Register("links", linksKind{})
	r.Register("video", videoKind{})
	r.Register("divider", dividerKind{})
	r.Register("spacer", spacerKind{})
	r.Register("countdown", countdownKind{})
	r.Register("html", htmlKind{})
	return r
}

// sectionKind renders a full-width band wrapping nested content.
type sectionKind struct{}

func (sectionKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "fs-section"
		if variant := attrString(el, "variant"); variant != "" {
			class += " fs-section-" + variant
		}
		if _, err := fmt.Fprintf(w, `<section class="%s">`, templ.EscapeString(class)); err != nil {
			return err
		}
		if err := renderFragments(ctx, w, el.Children.Fragments); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// stackKind lays nested content out in a row or column.
type stackKind struct{}

func (stackKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		direction := attrString(el, "direction")
		if direction != "row" {
			direction = "column"
		}
		gap := attrInt(el, "gap", 16)
		if _, err := fmt.Fprintf(w, `<div class="fs-stack fs-stack-%s" style="gap:%dpx">`, direction, gap); err != nil {
			return err
		}
		if err := renderFragments(ctx, w, el.Children.Fragments); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// headingKind renders an h1..h6 from the level attribute.
type headingKind struct{}

func (headingKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		level := attrInt(el, "level", 1)
		if level < 1 || level > 6 {
			level = 1
		}
		text := templ.EscapeString(attrString(el, "text"))
		_, err := fmt.Fprintf(w, `<h%d class="fs-heading" style="font-family:var(--fs-font-heading)">%s</h%d>`, level, text, level)
		return err
	})
}

type textKind struct{}

func (textKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p class="fs-text">%s</p>`, templ.EscapeString(attrString(el, "text")))
		return err
	})
}

type imageKind struct{}

func (imageKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		src := templ.EscapeString(string(templ.URL(attrString(el, "src"))))
		alt := templ.EscapeString(attrString(el, "alt"))
		_, err := fmt.Fprintf(w, `<img class="fs-image" src="%s" alt="%s">`, src, alt)
		return err
	})
}

// buttonKind renders the funnel's call to action. With an href it becomes a
// plain link; otherwise it emits the routing event named by the event
// attribute when clicked.
type buttonKind struct{}

func (buttonKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		label := templ.EscapeString(attrString(el, "label"))
		const style = "background:var(--fs-color-primary);border-radius:var(--fs-button-radius)"
		if href := attrString(el, "href"); href != "" {
			_, err := fmt.Fprintf(w, `<a class="fs-button" href="%s" style="%s">%s</a>`, templ.EscapeString(string(templ.URL(href))), style, label)
			return err
		}
		event := templ.EscapeString(attrString(el, "event"))
		_, err := fmt.Fprintf(w, `<button class="fs-button" type="button" data-event="%s" style="%s">%s</button>`, event, style, label)
		return err
	})
}

type inputKind struct{}

func (inputKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		inputType := attrString(el, "type")
		if inputType == "" {
			inputType = "text"
		}
		required := ""
		if cast.ToBool(el.Attrs["required"]) {
			required = " required"
		}
		_, err := fmt.Fprintf(w, `<input class="fs-input" type="%s" name="%s" placeholder="%s"%s>`,
			templ.EscapeString(inputType),
			templ.EscapeString(attrString(el, "name")),
			templ.EscapeString(attrString(el, "placeholder")),
			required)
		return err
	})
}

// choiceKind renders a group of answer buttons sharing one routing event,
// each carrying its own answer value.
type choiceKind struct{}

func (choiceKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		event := templ.EscapeString(attrString(el, "event"))
		if _, err := io.WriteString(w, `<div class="fs-choice">`); err != nil {
			return err
		}
		for _, option := range choiceOptions(el.Attrs["options"]) {
			if _, err := fmt.Fprintf(w, `<button class="fs-choice-option" type="button" data-event="%s" data-value="%s">%s</button>`,
				event, templ.EscapeString(option.value), templ.EscapeString(option.label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

type choiceOption struct {
	label string
	value string
}

func choiceOptions(v any) []choiceOption {
	var options []choiceOption
	add := func(item any) {
		if record, ok := item.(map[string]any); ok {
			label := cast.ToString(record["label"])
			value := cast.ToString(record["value"])
			if value == "" {
				value = label
			}
			options = append(options, choiceOption{label: label, value: value})
			return
		}
		s := cast.ToString(item)
		options = append(options, choiceOption{label: s, value: s})
	}
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			add(item)
		}
	case []string:
		for _, item := range items {
			add(item)
		}
	}
	return options
}

// linksKind renders a link list from bound data records rather than nested
// nodes; each record carries a label and url.
type linksKind struct{}

func (linksKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<ul class="fs-links">`); err != nil {
			return err
		}
		for _, link := range linkRecords(el.Children.Data) {
			if link.url != "" {
				if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`,
					templ.EscapeString(string(templ.URL(link.url))), templ.EscapeString(link.label)); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, `<li>%s</li>`, templ.EscapeString(link.label)); err != nil {
				return err
			}
		}
		if err := renderFragments(ctx, w, el.Children.Fragments); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

type linkRecord struct {
	label string
	url   string
}

func linkRecords(v any) []linkRecord {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	records := make([]linkRecord, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			records = append(records, linkRecord{
				label: cast.ToString(record["label"]),
				url:   cast.ToString(record["url"]),
			})
			continue
		}
		records = append(records, linkRecord{label: cast.ToString(item)})
	}
	return records
}

type videoKind struct{}

func (videoKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		src := templ.EscapeString(string(templ.URL(attrString(el, "url"))))
		_, err := fmt.Fprintf(w, `<div class="fs-video"><iframe src="%s" allowfullscreen></iframe></div>`, src)
		return err
	})
}

type dividerKind struct{}

func (dividerKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<hr class="fs-divider">`)
		return err
	})
}

type spacerKind struct{}

func (spacerKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="fs-spacer" style="height:%dpx"></div>`, attrInt(el, "height", 16))
		return err
	})
}

// countdownKind renders a deadline widget; the client script counts the
// data-seconds attribute down.
type countdownKind struct{}

func (countdownKind) Render(rctx Context, el Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		seconds := attrInt(el, "seconds", 0)
		if _, err := fmt.Fprintf(w, `<div class="fs-countdown" data-seconds="%d">`, seconds); err != nil {
			return err
		}
		if label := attrString(el, "label"); label != "" {
			if _, err := fmt.Fprintf(w, `<span class="fs-countdown-label">%s</span>`, templ.EscapeString(label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// htmlKind embeds author-provided markup verbatim. Funnel documents are
// trusted authoring input; tracking and embed widgets rely on this
// passthrough.
type htmlKind struct{}

func (htmlKind) Render(rctx Context, el Element) templ.Component {
	return templ.Raw(attrString(el, "html"))
}

func attrString(el Element, key string) string {
	v, ok := el.Attrs[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

func attrInt(el Element, key string, fallback int) int {
	v, ok := el.Attrs[key]
	if !ok || v == nil {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return fallback
	}
	return n
}

func renderFragments(ctx context.Context, w io.Writer, fragments []templ.Component) error {
	for _, fragment := range fragments {
		if err := fragment.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}
