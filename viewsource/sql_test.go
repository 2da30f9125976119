package viewsource

import (
	"context"
	"testing"
)

func TestGroupFieldsPreservesFirstSeenOrder(t *testing.T) {
	pairs := [][2]string{
		{"summary", "id"},
		{"summary", "title"},
		{"detail", "id"},
		{"summary", "reporter"},
		{"detail", "description"},
	}
	got := groupFields(pairs)

	want := map[string][]string{
		"summary": {"id", "title", "reporter"},
		"detail":  {"id", "description"},
	}
	for view, fields := range want {
		gotFields, ok := got[view]
		if !ok {
			t.Fatalf("missing view %q", view)
		}
		if len(gotFields) != len(fields) {
			t.Fatalf("view %q: got %v, want %v", view, gotFields, fields)
		}
		for i := range fields {
			if gotFields[i] != fields[i] {
				t.Fatalf("view %q: got %v, want %v", view, gotFields, fields)
			}
		}
	}
}

func TestGroupFieldsEmptyInput(t *testing.T) {
	got := groupFields(nil)
	if len(got) != 0 {
		t.Fatalf("expected an empty map, got %v", got)
	}
}

func TestSQLViewSourceResolveView(t *testing.T) {
	v := &SQLViewSource{views: map[string][]string{
		"summary": {"id", "title"},
	}}

	fields, ok := v.ResolveView("summary")
	if !ok || len(fields) != 2 || fields[0] != "id" || fields[1] != "title" {
		t.Fatalf("got %v, %v", fields, ok)
	}

	if _, ok := v.ResolveView("nonexistent"); ok {
		t.Fatalf("expected nonexistent to not resolve")
	}
}

func TestSQLViewSourceResolveViewConcurrentReads(t *testing.T) {
	v := &SQLViewSource{views: map[string][]string{"a": {"x"}}}
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			v.ResolveView("a")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestOpenSQLViewSourceRejectsEmptyQuery(t *testing.T) {
	_, err := OpenSQLViewSource(context.Background(), SQLViewSourceConfig{DriverName: "mysql", Dsn: "unused"})
	if err == nil {
		t.Fatal("expected an error for an empty query")
	}
}
