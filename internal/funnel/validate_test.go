package funnel

import (
	"strings"
	"testing"
)

func TestValidateDefaultGraphIsClean(t *testing.T) {
	issues := Validate(DefaultGraph())
	if len(issues) != 0 {
		t.Fatalf("expected no issues for the starter funnel, got %v", issues)
	}
}

func TestValidateDanglingRouteTarget(t *testing.T) {
	g := DefaultGraph()
	g.EventRouting["optin_submitted"] = RoutingEntry{Route: &Route{To: "9"}}

	issues := Validate(g)

	var matches []Issue
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			matches = append(matches, issue)
		}
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one error issue, got %v", matches)
	}
	if matches[0].Field != "optin_submitted" {
		t.Fatalf("expected issue to reference the entry name, got %q", matches[0].Field)
	}
	if !strings.Contains(matches[0].Message, `"9"`) {
		t.Fatalf("expected message to name the dangling target, got %q", matches[0].Message)
	}
}

func TestValidateDanglingConditionTarget(t *testing.T) {
	g := DefaultGraph()
	g.EventRouting["optin_submitted"] = RoutingEntry{Route: &Route{
		To:         "2",
		Conditions: []Condition{{Field: "email", Operator: "contains", Value: "@", Target: "7"}},
	}}

	issues := Validate(g)

	found := false
	for _, issue := range issues {
		if issue.Severity == SeverityError && issue.Field == "optin_submitted" &&
			strings.Contains(issue.Message, "condition target") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a condition-target error, got %v", issues)
	}
}

func TestValidatePathSequence(t *testing.T) {
	g := DefaultGraph()
	page, _ := g.Pages.Get("offer")
	page.Path = "5"
	g.Pages.Set("offer", page)

	issues := Validate(g)

	found := false
	for _, issue := range issues {
		if issue.Severity == SeverityError && issue.Field == "path" && issue.PageID == "offer" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a path-sequence error for offer, got %v", issues)
	}
}

func TestValidateMissingTemplate(t *testing.T) {
	g := DefaultGraph()
	page, _ := g.Pages.Get("landing")
	page.Template = "ghost"
	g.Pages.Set("landing", page)

	issues := Validate(g)

	found := false
	for _, issue := range issues {
		if issue.Severity == SeverityError && issue.Field == "template" && issue.PageID == "landing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing-template error, got %v", issues)
	}
}

func TestValidateUnroutedEventValue(t *testing.T) {
	g := DefaultGraph()
	page, _ := g.Pages.Get("landing")
	page.Data["_cta_event"] = "ghost_event"
	g.Pages.Set("landing", page)

	issues := Validate(g)

	found := false
	for _, issue := range issues {
		if issue.Severity == SeverityWarning && issue.PageID == "landing" && issue.Field == "_cta_event" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unrouted-event warning, got %v", issues)
	}
}

func TestValidateThemeCompleteness(t *testing.T) {
	g := DefaultGraph()
	g.Theme.Colors.Primary = ""
	g.Theme.Fonts = ThemeFonts{}

	issues := Validate(g)

	var colorWarn, fontWarn bool
	for _, issue := range issues {
		if issue.Severity != SeverityWarning {
			continue
		}
		switch issue.Field {
		case "theme.colors":
			colorWarn = true
		case "theme.fonts":
			fontWarn = true
		}
	}
	if !colorWarn || !fontWarn {
		t.Fatalf("expected color and font warnings, got %v", issues)
	}
}

func TestValidateSplitTest(t *testing.T) {
	g := DefaultGraph()
	g.SplitTest = &SplitTest{
		Enabled: true,
		Variants: []SplitTestVariant{
			{Name: "control", Path: "1", Weight: 60},
			{Name: "variant", Path: "8", Weight: 20},
		},
	}

	issues := Validate(g)

	var pathErr, weightWarn bool
	for _, issue := range issues {
		if issue.Field != "splitTest" {
			continue
		}
		if issue.Severity == SeverityError && strings.Contains(issue.Message, `"8"`) {
			pathErr = true
		}
		if issue.Severity == SeverityWarning && strings.Contains(issue.Message, "weights") {
			weightWarn = true
		}
	}
	if !pathErr {
		t.Fatalf("expected unknown-path error for split variant, got %v", issues)
	}
	if !weightWarn {
		t.Fatalf("expected weight warning, got %v", issues)
	}
}

func TestValidateUnknownBroadcastTarget(t *testing.T) {
	g := DefaultGraph()
	entry := g.EventRouting["optin_submitted"]
	entry.Broadcast = map[string]map[string]any{
		"crm": {"email": "_email"},
	}
	g.EventRouting["optin_submitted"] = entry

	issues := Validate(g)

	found := false
	for _, issue := range issues {
		if issue.Severity == SeverityWarning && issue.Field == "optin_submitted" &&
			strings.Contains(issue.Message, "broadcast target") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a broadcast-target warning, got %v", issues)
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Fatal("warnings alone should not count as errors")
	}
	if !HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Fatal("expected error severity to be detected")
	}
}
