package ai_test

import (
	"testing"

	"logistics-dashboard/internal/ai"
	"logistics-dashboard/internal/core"
)

var shipmentFields = ai.EntityFields{
	Entity:   "shipments",
	Text:     []string{"destination", "origin", "reference"},
	Statuses: []string{"PENDING", "IN_TRANSIT", "DELAYED"},
	Flags:    []string{"has_eta"},
	Sort:     []string{"created_at", "eta"},
}

func TestParseIntent(t *testing.T) {
	t.Run("maps known names case-insensitively", func(t *testing.T) {
		content := `{"search":" Lyon ","statuses":["delayed","LOST"],"flags":[{"name":"HAS_ETA","value":false},{"name":"fragile","value":true}],
			"sort_field":"Created_At","sort_dir":"desc","clarification":"","reasoning":"late shipments to Lyon"}`
		got, err := ai.ParseIntent([]byte(content), shipmentFields)
		if err != nil {
			t.Fatalf("ParseIntent failed: %v", err)
		}
		q := got.Query
		if q.Search != "Lyon" {
			t.Errorf("expected trimmed search, got %q", q.Search)
		}
		if len(q.Statuses) != 1 || q.Statuses[0] != "DELAYED" {
			t.Errorf("expected [DELAYED], got %v", q.Statuses)
		}
		if f := q.Flag("has_eta"); f == nil || *f {
			t.Errorf("expected has_eta=false, got %v", f)
		}
		if len(q.Flags) != 1 {
			t.Errorf("expected unknown flag dropped, got %v", q.Flags)
		}
		if q.SortField != "created_at" || q.SortDir != core.SortDesc {
			t.Errorf("expected created_at desc, got %s %s", q.SortField, q.SortDir)
		}
		if err := core.ShipmentSchema.Validate(q); err != nil {
			t.Errorf("interpreted query should validate: %v", err)
		}
	})

	t.Run("clarification wins over filters", func(t *testing.T) {
		content := `{"search":"x","statuses":[],"flags":[],"sort_field":"","sort_dir":"asc","clarification":"Which warehouse?","reasoning":""}`
		got, err := ai.ParseIntent([]byte(content), shipmentFields)
		if err != nil {
			t.Fatalf("ParseIntent failed: %v", err)
		}
		if got.Clarification != "Which warehouse?" {
			t.Errorf("expected clarification, got %+v", got)
		}
	})

	t.Run("unknown sort field is dropped", func(t *testing.T) {
		content := `{"search":"","statuses":[],"flags":[],"sort_field":"weight","sort_dir":"asc","clarification":"","reasoning":""}`
		got, err := ai.ParseIntent([]byte(content), shipmentFields)
		if err != nil {
			t.Fatalf("ParseIntent failed: %v", err)
		}
		if got.Query.SortField != "" || got.Query.Page != 1 {
			t.Errorf("expected natural order on page 1, got %+v", got.Query)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if _, err := ai.ParseIntent([]byte("not json"), shipmentFields); err == nil {
			t.Error("expected parse error")
		}
	})
}
