// Package query provides chainable, paged query builders over backend
// collections. Builders cache the matched total across page fetches: only
// the first page of a given filter combination pays for the count, and any
// filter change invalidates the cached value.
package query

import (
	"context"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/model"
)

const defaultPageSize = 50

// AutomationsQuery pages through automation definitions. Not safe for
// concurrent use; build one per request.
type AutomationsQuery struct {
	svc backend.Service

	size      int
	page      int
	title     string
	typ       string
	dashboard string
	sort      string

	total *int
}

func NewAutomationsQuery(svc backend.Service) *AutomationsQuery {
	return &AutomationsQuery{svc: svc, size: defaultPageSize}
}

func (q *AutomationsQuery) WithSize(size int) *AutomationsQuery {
	if size > 0 {
		q.size = size
	}
	return q
}

func (q *AutomationsQuery) WithPage(page int) *AutomationsQuery {
	if page >= 0 {
		q.page = page
	}
	return q
}

// WithTitle narrows results to titles containing the given text. Changing
// the filter drops the cached total.
func (q *AutomationsQuery) WithTitle(title string) *AutomationsQuery {
	if q.title != title {
		q.title = title
		q.total = nil
	}
	return q
}

func (q *AutomationsQuery) WithType(typ string) *AutomationsQuery {
	if q.typ != typ {
		q.typ = typ
		q.total = nil
	}
	return q
}

func (q *AutomationsQuery) WithDashboard(ref model.ObjRef) *AutomationsQuery {
	key := dashboardFilterValue(ref)
	if q.dashboard != key {
		q.dashboard = key
		q.total = nil
	}
	return q
}

func (q *AutomationsQuery) WithSort(sort string) *AutomationsQuery {
	q.sort = sort
	return q
}

func (q *AutomationsQuery) filter() string {
	var groups []backend.Group
	if q.title != "" {
		groups = append(groups, backend.Group{{Field: "title", Op: backend.OpContains, Value: q.title}})
	}
	if q.typ != "" {
		groups = append(groups, backend.Group{{Field: "type", Op: backend.OpEq, Value: q.typ}})
	}
	if q.dashboard != "" {
		groups = append(groups, backend.Group{{Field: "dashboard", Op: backend.OpEq, Value: q.dashboard}})
	}
	return backend.BuildFilterExpr(groups)
}

// AutomationsResult is one fetched page plus paging metadata.
type AutomationsResult struct {
	Items      []backend.Automation `json:"items"`
	Offset     int                  `json:"offset"`
	Size       int                  `json:"size"`
	TotalCount int                  `json:"totalCount"`

	// fetched counts the raw records of the page before conversion
	// dropped any. Pagination must stop on this, not on len(Items): a
	// full page with a malformed record still has more pages behind it.
	fetched int
}

// Query fetches the currently selected page. The total count is requested
// from the backend only when no cached value exists for the current filter.
func (q *AutomationsQuery) Query(ctx context.Context) (*AutomationsResult, error) {
	req := backend.PageRequest{
		Offset:       q.page * q.size,
		Size:         q.size,
		Filter:       q.filter(),
		Sort:         q.sort,
		IncludeTotal: q.total == nil,
	}

	page, err := q.svc.ListAutomations(ctx, req)
	if err != nil {
		return nil, err
	}
	if page.TotalCount != nil {
		q.total = page.TotalCount
	}

	total := 0
	if q.total != nil {
		total = *q.total
	}
	return &AutomationsResult{
		Items:      validAutomations(page.Items),
		Offset:     req.Offset,
		Size:       q.size,
		TotalCount: total,
		fetched:    len(page.Items),
	}, nil
}

// QueryAll exhausts every page of the current filter. The builder's page
// cursor is left where it was before the call.
func (q *AutomationsQuery) QueryAll(ctx context.Context) ([]backend.Automation, error) {
	cursor := q.page
	defer func() { q.page = cursor }()

	var all []backend.Automation
	for page := 0; ; page++ {
		q.page = page
		result, err := q.Query(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if result.fetched < q.size {
			return all, nil
		}
	}
}

// validAutomations drops records the server returned in a shape the client
// cannot work with rather than failing the whole page.
func validAutomations(items []backend.Automation) []backend.Automation {
	out := make([]backend.Automation, 0, len(items))
	for _, a := range items {
		if a.ID == "" || a.Type == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func dashboardFilterValue(ref model.ObjRef) string {
	if ref.Identifier != "" {
		return ref.Identifier
	}
	return ref.URI
}
