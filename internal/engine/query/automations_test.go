package query

import (
	"context"
	"testing"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/model"
)

// pagingBackend serves automations out of a slice and records every page
// request it sees.
type pagingBackend struct {
	backend.Service

	automations []backend.Automation
	requests    []backend.PageRequest
}

func (p *pagingBackend) ListAutomations(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.Automation], error) {
	p.requests = append(p.requests, req)

	start := req.Offset
	if start > len(p.automations) {
		start = len(p.automations)
	}
	end := start + req.Size
	if end > len(p.automations) {
		end = len(p.automations)
	}

	page := &backend.Page[backend.Automation]{Items: p.automations[start:end]}
	if req.IncludeTotal {
		total := len(p.automations)
		page.TotalCount = &total
	}
	return page, nil
}

func schedules(n int) []backend.Automation {
	out := make([]backend.Automation, n)
	for i := range out {
		out[i] = backend.Automation{
			ID:       string(rune('a' + i)),
			Title:    "rule",
			Type:     "schedule",
			Schedule: "0 9 * * 1",
		}
	}
	return out
}

func TestQueryRequestsTotalOnlyOnce(t *testing.T) {
	svc := &pagingBackend{automations: schedules(5)}
	q := NewAutomationsQuery(svc).WithSize(2)

	for page := 0; page < 3; page++ {
		result, err := q.WithPage(page).Query(context.Background())
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if result.TotalCount != 5 {
			t.Errorf("page %d: TotalCount = %d, want 5", page, result.TotalCount)
		}
	}

	if len(svc.requests) != 3 {
		t.Fatalf("requests = %d, want 3", len(svc.requests))
	}
	if !svc.requests[0].IncludeTotal {
		t.Error("first request must ask for the total")
	}
	for i, req := range svc.requests[1:] {
		if req.IncludeTotal {
			t.Errorf("request %d asked for the total again", i+1)
		}
	}
}

func TestFilterChangeInvalidatesCachedTotal(t *testing.T) {
	svc := &pagingBackend{automations: schedules(3)}
	q := NewAutomationsQuery(svc)

	if _, err := q.Query(context.Background()); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if _, err := q.WithType("trigger").Query(context.Background()); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(svc.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(svc.requests))
	}
	if !svc.requests[1].IncludeTotal {
		t.Error("filter change must re-request the total")
	}
}

func TestSettingSameFilterKeepsCachedTotal(t *testing.T) {
	svc := &pagingBackend{automations: schedules(3)}
	q := NewAutomationsQuery(svc).WithType("schedule")

	if _, err := q.Query(context.Background()); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if _, err := q.WithType("schedule").WithPage(1).Query(context.Background()); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if svc.requests[1].IncludeTotal {
		t.Error("unchanged filter re-requested the total")
	}
}

func TestQueryBuildsFilterExpression(t *testing.T) {
	svc := &pagingBackend{}
	q := NewAutomationsQuery(svc).
		WithTitle("weekly").
		WithType("schedule").
		WithDashboard(model.NewRef("dash-1"))

	if _, err := q.Query(context.Background()); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := "title=contains=weekly;type=eq=schedule;dashboard=eq=dash-1"
	if got := svc.requests[0].Filter; got != want {
		t.Errorf("filter = %q, want %q", got, want)
	}
}

func TestQueryAllExhaustsPages(t *testing.T) {
	svc := &pagingBackend{automations: schedules(7)}
	q := NewAutomationsQuery(svc).WithSize(3)

	all, err := q.QueryAll(context.Background())
	if err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	if len(all) != 7 {
		t.Errorf("QueryAll() returned %d items, want 7", len(all))
	}
	// 3 + 3 + 1; the short last page stops the loop.
	if len(svc.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(svc.requests))
	}
}

// A full page that loses a record to validation is still a full page;
// pagination must keep going until the backend itself runs dry.
func TestQueryAllKeepsPagingPastMalformedRecords(t *testing.T) {
	svc := &pagingBackend{automations: []backend.Automation{
		{ID: "a", Title: "ok", Type: "schedule"},
		{ID: "", Title: "no id", Type: "schedule"},
		{ID: "c", Title: "ok", Type: "schedule"},
		{ID: "d", Title: "ok", Type: "trigger"},
	}}
	q := NewAutomationsQuery(svc).WithSize(2)

	all, err := q.QueryAll(context.Background())
	if err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("QueryAll() returned %d items, want 3", len(all))
	}
	if all[0].ID != "a" || all[1].ID != "c" || all[2].ID != "d" {
		t.Errorf("items = %+v, want a, c, d", all)
	}
	// Pages 0 and 1 come back full, so a third request is needed to see
	// the end of the collection.
	if len(svc.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(svc.requests))
	}
}

func TestQueryAllRestoresPageCursor(t *testing.T) {
	svc := &pagingBackend{automations: schedules(5)}
	q := NewAutomationsQuery(svc).WithSize(2).WithPage(1)

	if _, err := q.QueryAll(context.Background()); err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	if _, err := q.Query(context.Background()); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	last := svc.requests[len(svc.requests)-1]
	if last.Offset != 2 {
		t.Errorf("offset after QueryAll = %d, want the page selected before it (2)", last.Offset)
	}
}

func TestQueryDropsMalformedRecords(t *testing.T) {
	svc := &pagingBackend{automations: []backend.Automation{
		{ID: "a", Title: "ok", Type: "schedule"},
		{ID: "", Title: "no id", Type: "schedule"},
		{ID: "c", Title: "no type", Type: ""},
		{ID: "d", Title: "ok too", Type: "trigger"},
	}}

	result, err := NewAutomationsQuery(svc).Query(context.Background())
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2 after dropping malformed records", len(result.Items))
	}
	if result.Items[0].ID != "a" || result.Items[1].ID != "d" {
		t.Errorf("items = %+v, want a and d", result.Items)
	}
}
