package funnel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Severity grades a validation issue.
type Severity string

const (
	// SeverityError marks referential-integrity breaks that make part of the
	// funnel unreachable or unrenderable.
	SeverityError Severity = "error"
	// SeverityWarning marks configuration that is suspicious but usable.
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Issues never block an operation by
// themselves; the caller decides whether to warn or abort.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	PageID   string   `json:"pageId,omitempty"`
}

// Validate checks the graph's referential integrity and returns every issue
// found. It is pure and never fails; it can run at any time, including just
// before export.
func Validate(g *Graph) []Issue {
	var issues []Issue

	paths := make(map[string]bool)
	if g.Pages != nil {
		index := 0
		for pair := g.Pages.Oldest(); pair != nil; pair = pair.Next() {
			page := pair.Value
			want := strconv.Itoa(index + 1)
			if page.Path != want {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Field:    "path",
					Message:  fmt.Sprintf("path %q out of sequence, want %q", page.Path, want),
					PageID:   pair.Key,
				})
			}
			paths[page.Path] = true
			index++

			if _, ok := g.Templates[page.Template]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Field:    "template",
					Message:  fmt.Sprintf("template %q not found in catalogue", page.Template),
					PageID:   pair.Key,
				})
			}

			issues = append(issues, pageEventIssues(g, pair.Key, page)...)
		}
	}

	for _, event := range sortedKeys(g.EventRouting) {
		entry := g.EventRouting[event]
		if entry.Route != nil {
			if entry.Route.To != "" && !paths[entry.Route.To] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Field:    event,
					Message:  fmt.Sprintf("route target %q names no page", entry.Route.To),
				})
			}
			for _, condition := range entry.Route.Conditions {
				if condition.Target != "" && !paths[condition.Target] {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Field:    event,
						Message:  fmt.Sprintf("condition target %q names no page", condition.Target),
					})
				}
			}
		}
		for _, target := range sortedKeys(entry.Broadcast) {
			if _, ok := g.BroadcastTargets[target]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Field:    event,
					Message:  fmt.Sprintf("broadcast target %q is not configured", target),
				})
			}
		}
	}

	issues = append(issues, themeIssues(g.Theme)...)
	issues = append(issues, splitTestIssues(g.SplitTest, paths)...)

	return issues
}

// pageEventIssues warns about data values that look like event references
// but match no routing entry.
func pageEventIssues(g *Graph, pageID string, page Page) []Issue {
	var issues []Issue
	for _, key := range sortedKeys(page.Data) {
		if !looksLikeEventKey(key) {
			continue
		}
		name, ok := page.Data[key].(string)
		if !ok || name == "" {
			continue
		}
		if _, exists := g.EventRouting[name]; !exists {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Field:    key,
				Message:  fmt.Sprintf("event %q has no routing entry", name),
				PageID:   pageID,
			})
		}
	}
	return issues
}

// looksLikeEventKey reports whether a data key conventionally carries an
// event name.
func looksLikeEventKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "event") || strings.Contains(k, "onclick")
}

func themeIssues(theme Theme) []Issue {
	var issues []Issue
	if theme.Colors.Primary == "" || theme.Colors.Background == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    "theme.colors",
			Message:  "primary and background colors should be set",
		})
	}
	if theme.Fonts.Heading == "" && theme.Fonts.Body == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    "theme.fonts",
			Message:  "at least one font should be set",
		})
	}
	return issues
}

func splitTestIssues(split *SplitTest, paths map[string]bool) []Issue {
	if split == nil {
		return nil
	}
	var issues []Issue
	totalWeight := 0
	for _, variant := range split.Variants {
		totalWeight += variant.Weight
		if !paths[variant.Path] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Field:    "splitTest",
				Message:  fmt.Sprintf("variant %q targets unknown path %q", variant.Name, variant.Path),
			})
		}
	}
	if split.Enabled && len(split.Variants) > 0 && totalWeight != 100 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Field:    "splitTest",
			Message:  fmt.Sprintf("variant weights sum to %d, want 100", totalWeight),
		})
	}
	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
