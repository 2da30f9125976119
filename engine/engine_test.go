package engine

import (
	"context"
	"reflect"
	"testing"

	"github.com/squigglygo/squiggly/adapter/stdjson"
	"github.com/squigglygo/squiggly/types"
)

func sampleIssue() map[string]any {
	return map[string]any{
		"id":           "ISSUE-1",
		"issueSummary": "widget is broken",
		"reporter":     map[string]any{"firstName": "Jorah", "lastName": "Mormont"},
		"assignee":     map[string]any{"firstName": "Daenerys", "lastName": "Targaryen"},
		"actions": []any{
			map[string]any{"user": map[string]any{"firstName": "Jorah", "lastName": "Mormont"}, "text": "opened"},
			map[string]any{"user": map[string]any{"firstName": "Daenerys", "lastName": "Targaryen"}, "text": "assigned"},
		},
	}
}

func newTestEngine() *Engine {
	return New(types.Config{ParseCacheMaxEntries: 100, BestEffort: true, FunctionRegistry: MapRegistry{}})
}

func apply(t *testing.T, e *Engine, doc any, filters ...string) any {
	t.Helper()
	out, err := Apply[any](context.Background(), e, stdjson.New(doc), filters...)
	if err != nil {
		t.Fatalf("Apply(%v) error: %v", filters, err)
	}
	return out.Value()
}

func TestConcreteScenarioSimpleFields(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "id,issueSummary")
	want := map[string]any{"id": "ISSUE-1", "issueSummary": "widget is broken"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestConcreteScenarioNestedRestriction(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "assignee[firstName]")
	want := map[string]any{"assignee": map[string]any{"firstName": "Daenerys"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestConcreteScenarioAnyDeepExceptOneField(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "**,reporter[-firstName]")
	doc := sampleIssue()
	doc["reporter"] = map[string]any{"lastName": "Mormont"}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("got %#v, want %#v", got, doc)
	}
}

func TestConcreteScenarioDeepArrayProjection(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "actions[user[firstName]]")
	want := map[string]any{
		"actions": []any{
			map[string]any{"user": map[string]any{"firstName": "Jorah"}},
			map[string]any{"user": map[string]any{"firstName": "Daenerys"}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestConcreteScenarioMultipleFilterTextsApplySequentially(t *testing.T) {
	e := newTestEngine()
	out, err := Apply[any](context.Background(), e, stdjson.New(sampleIssue()), "**", "id,reporter")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"id": "ISSUE-1", "reporter": map[string]any{"firstName": "Jorah", "lastName": "Mormont"}}
	if !reflect.DeepEqual(out.Value(), want) {
		t.Fatalf("got %#v, want %#v", out.Value(), want)
	}
}

func TestConcreteScenarioNegatedDotPathPrunesOnlyTheLeaf(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "id,-actions.user.firstName")
	want := map[string]any{
		"id": "ISSUE-1",
		"actions": []any{
			map[string]any{"user": map[string]any{"lastName": "Mormont"}, "text": "opened"},
			map[string]any{"user": map[string]any{"lastName": "Targaryen"}, "text": "assigned"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestConcreteScenarioMultipleNegatedDotPaths(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "**,-actions.user.firstName,-actions.user.lastName")
	doc := sampleIssue()
	doc["actions"] = []any{
		map[string]any{"user": map[string]any{}, "text": "opened"},
		map[string]any{"user": map[string]any{}, "text": "assigned"},
	}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("got %#v, want %#v", got, doc)
	}
}

func TestConcreteScenarioLaterFilterTextErrorPreservesEarlierOutput(t *testing.T) {
	e := newTestEngine()
	out, err := Apply[any](context.Background(), e, stdjson.New(sampleIssue()), "id,issueSummary", "assignee[firstName")
	if err == nil {
		t.Fatal("expected an error from the malformed second filter text")
	}
	want := map[string]any{"id": "ISSUE-1", "issueSummary": "widget is broken"}
	if !reflect.DeepEqual(out.Value(), want) {
		t.Fatalf("expected the first filter text's output preserved on a later failure, got %#v, want %#v", out.Value(), want)
	}
}

// --- Universal invariants ---

func TestInvariantAnyDeepIdentity(t *testing.T) {
	e := newTestEngine()
	doc := sampleIssue()
	got := apply(t, e, doc, "**")
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("** must reproduce the document unchanged:\ngot  %#v\nwant %#v", got, doc)
	}
}

func TestInvariantEmptyFilterProducesEmptyObject(t *testing.T) {
	e := newTestEngine()
	got := apply(t, e, sampleIssue(), "")
	if !reflect.DeepEqual(got, map[string]any{}) {
		t.Fatalf("empty filter must produce an empty object, got %#v", got)
	}
}

func TestInvariantProjectionMonotonicity(t *testing.T) {
	// A narrower filter's output keys must be a subset of a broader
	// filter's output keys applied to the same document.
	e := newTestEngine()
	narrow := apply(t, e, sampleIssue(), "id").(map[string]any)
	broad := apply(t, e, sampleIssue(), "id,issueSummary").(map[string]any)
	for k := range narrow {
		if _, ok := broad[k]; !ok {
			t.Fatalf("key %q present under the narrow filter but missing under the broader one", k)
		}
	}
	if len(narrow) > len(broad) {
		t.Fatalf("narrow projection has more keys (%d) than the broader one (%d)", len(narrow), len(broad))
	}
}

func TestInvariantNegationIdempotence(t *testing.T) {
	e := newTestEngine()
	once := apply(t, e, sampleIssue(), "**,-issueSummary")
	twice, err := Apply[any](context.Background(), e, stdjson.New(sampleIssue()), "**,-issueSummary", "**,-issueSummary")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once, twice.Value()) {
		t.Fatalf("applying the same exclusion twice must be idempotent:\nonce  %#v\ntwice %#v", once, twice.Value())
	}
}

func TestInvariantDotBracketEquivalence(t *testing.T) {
	e := newTestEngine()
	dotted := apply(t, e, sampleIssue(), "assignee.firstName")
	braced := apply(t, e, sampleIssue(), "assignee{firstName}")
	if !reflect.DeepEqual(dotted, braced) {
		t.Fatalf("dot-sugar and explicit brace forms must project identically:\ndotted %#v\nbraced %#v", dotted, braced)
	}
}

func TestInvariantParseCacheTransparency(t *testing.T) {
	cached := New(types.Config{ParseCacheMaxEntries: 100, BestEffort: true, FunctionRegistry: MapRegistry{}})
	uncached := New(types.Config{ParseCacheMaxEntries: 0, BestEffort: true, FunctionRegistry: MapRegistry{}})
	for i := 0; i < 3; i++ {
		got := apply(t, cached, sampleIssue(), "assignee[firstName]")
		want := apply(t, uncached, sampleIssue(), "assignee[firstName]")
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("cached and uncached engines diverged on iteration %d: %#v vs %#v", i, got, want)
		}
	}
}

func TestInvariantSpecificityOrdering(t *testing.T) {
	e := newTestEngine()
	// An exact exclude and a glob exclude each beat a '*' include.
	got := apply(t, e, sampleIssue(), "(*,-issueSummary)")
	if _, present := got.(map[string]any)["issueSummary"]; present {
		t.Fatal("exact exclude should beat '*' include")
	}
	got = apply(t, e, sampleIssue(), "(*,-issue*)")
	if _, present := got.(map[string]any)["issueSummary"]; present {
		t.Fatal("glob exclude should beat '*' include")
	}
}
