package viewsource

import (
	"testing"

	"github.com/squigglygo/squiggly/types"
)

func TestStaticViewSourceResolvesExplicitViews(t *testing.T) {
	s := NewStaticViewSource(StaticViewSourceConfig{
		Views: map[string][]string{"summary": {"id", "issueSummary"}},
	})
	fields, ok := s.ResolveView("summary")
	if !ok || len(fields) != 2 || fields[0] != "id" || fields[1] != "issueSummary" {
		t.Fatalf("unexpected resolution: %v, %v", fields, ok)
	}
	if _, ok := s.ResolveView("nope"); ok {
		t.Fatal("expected unregistered view to resolve false")
	}
}

func TestStaticViewSourcePropertyAddNonAnnotatedFieldsToBaseViewTrue(t *testing.T) {
	s := NewStaticViewSource(StaticViewSourceConfig{
		Views:                           map[string][]string{"summary": {"issueSummary"}},
		AllFields:                       []string{"id", "issueSummary", "issueDetails", "properties"},
		AddNonAnnotatedFieldsToBaseView: true,
	})
	fields, ok := s.ResolveView("base")
	if !ok {
		t.Fatal("expected a synthesized base view")
	}
	got := map[string]bool{}
	for _, f := range fields {
		got[f] = true
	}
	for _, want := range []string{"id", "issueDetails", "properties"} {
		if !got[want] {
			t.Fatalf("expected non-annotated field %q folded into base, got %v", want, fields)
		}
	}
	if got["issueSummary"] {
		t.Fatalf("issueSummary is annotated to another view, should not appear in base: %v", fields)
	}
}

func TestStaticViewSourcePropertyAddNonAnnotatedFieldsToBaseViewFalse(t *testing.T) {
	s := NewStaticViewSource(StaticViewSourceConfig{
		Views:                           map[string][]string{"summary": {"issueSummary"}},
		AllFields:                       []string{"id", "issueSummary", "issueDetails"},
		AddNonAnnotatedFieldsToBaseView: false,
	})
	if _, ok := s.ResolveView("base"); ok {
		t.Fatal("expected no base view when AddNonAnnotatedFieldsToBaseView is false and no explicit base was configured")
	}
}

func TestNewStaticViewSourceFromConfigHonorsPropertyAddNonAnnotatedFieldsToBaseView(t *testing.T) {
	cfg, err := types.NewConfig(types.WithPropertyAddNonAnnotatedFieldsToBaseView(true))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	views := map[string][]string{"summary": {"issueSummary"}}
	allFields := []string{"id", "issueSummary", "issueDetails"}

	s := NewStaticViewSourceFromConfig(cfg, views, allFields)
	fields, ok := s.ResolveView("base")
	if !ok {
		t.Fatal("expected a synthesized base view when the config flag is on")
	}
	found := false
	for _, f := range fields {
		if f == "issueDetails" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected non-annotated field folded into base, got %v", fields)
	}

	cfg, err = types.NewConfig(types.WithPropertyAddNonAnnotatedFieldsToBaseView(false))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	s = NewStaticViewSourceFromConfig(cfg, views, allFields)
	if _, ok := s.ResolveView("base"); ok {
		t.Fatal("expected no synthesized base view when the config flag is off")
	}
}

func TestStaticViewSourceExplicitBaseFieldsSurviveWithFlagOn(t *testing.T) {
	s := NewStaticViewSource(StaticViewSourceConfig{
		Views:                           map[string][]string{"base": {"id"}, "summary": {"issueSummary"}},
		AllFields:                       []string{"id", "issueSummary", "issueDetails"},
		AddNonAnnotatedFieldsToBaseView: true,
	})
	fields, ok := s.ResolveView("base")
	if !ok || fields[0] != "id" {
		t.Fatalf("expected explicit base field to stay first, got %v", fields)
	}
	found := false
	for _, f := range fields {
		if f == "issueDetails" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected non-annotated field folded in after explicit base fields, got %v", fields)
	}
}
