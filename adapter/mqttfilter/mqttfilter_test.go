package mqttfilter

import (
	"encoding/json"
	"testing"

	"github.com/squigglygo/squiggly/engine"
	"github.com/squigglygo/squiggly/types"
)

func newTestAdapter(t *testing.T, filterText string) *Adapter {
	t.Helper()
	cfg, err := types.NewConfig(
		types.WithAppendContextInNodeFilter(false),
		types.WithParseCacheMaxEntries(100),
		types.WithBestEffort(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	return &Adapter{
		cfg:    Config{InTopic: "in", OutTopic: "out", FilterText: filterText},
		engine: engine.New(cfg),
		logger: types.DefaultLogger(),
	}
}

func TestFilterPayloadProjectsFields(t *testing.T) {
	a := newTestAdapter(t, "id,issueSummary")

	out, err := a.filterPayload([]byte(`{"id":"1","issueSummary":"s","secret":"x"}`))
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["id"] != "1" || got["issueSummary"] != "s" {
		t.Fatalf("got %v", got)
	}
}

func TestFilterPayloadRejectsInvalidJSON(t *testing.T) {
	a := newTestAdapter(t, "**")
	if _, err := a.filterPayload([]byte("not json")); err == nil {
		t.Fatal("expected an error for invalid json")
	}
}

func TestFilterPayloadRejectsInvalidFilter(t *testing.T) {
	a := newTestAdapter(t, "[[[")
	if _, err := a.filterPayload([]byte(`{"id":"1"}`)); err == nil {
		t.Fatal("expected an error for an invalid filter")
	}
}
