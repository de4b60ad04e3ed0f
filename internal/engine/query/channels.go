package query

import (
	"context"

	"go-dash/internal/engine/backend"
)

// NotificationChannelsQuery pages through notification channels. Same
// contract as AutomationsQuery: chainable, single-goroutine, cached total.
type NotificationChannelsQuery struct {
	svc backend.Service

	size  int
	page  int
	title string
	typ   string
	sort  string

	total *int
}

func NewNotificationChannelsQuery(svc backend.Service) *NotificationChannelsQuery {
	return &NotificationChannelsQuery{svc: svc, size: defaultPageSize}
}

func (q *NotificationChannelsQuery) WithSize(size int) *NotificationChannelsQuery {
	if size > 0 {
		q.size = size
	}
	return q
}

func (q *NotificationChannelsQuery) WithPage(page int) *NotificationChannelsQuery {
	if page >= 0 {
		q.page = page
	}
	return q
}

func (q *NotificationChannelsQuery) WithTitle(title string) *NotificationChannelsQuery {
	if q.title != title {
		q.title = title
		q.total = nil
	}
	return q
}

func (q *NotificationChannelsQuery) WithType(typ string) *NotificationChannelsQuery {
	if q.typ != typ {
		q.typ = typ
		q.total = nil
	}
	return q
}

func (q *NotificationChannelsQuery) WithSort(sort string) *NotificationChannelsQuery {
	q.sort = sort
	return q
}

func (q *NotificationChannelsQuery) filter() string {
	var groups []backend.Group
	if q.title != "" {
		groups = append(groups, backend.Group{{Field: "title", Op: backend.OpContains, Value: q.title}})
	}
	if q.typ != "" {
		groups = append(groups, backend.Group{{Field: "type", Op: backend.OpEq, Value: q.typ}})
	}
	return backend.BuildFilterExpr(groups)
}

type NotificationChannelsResult struct {
	Items      []backend.NotificationChannel `json:"items"`
	Offset     int                           `json:"offset"`
	Size       int                           `json:"size"`
	TotalCount int                           `json:"totalCount"`

	// fetched is the raw page length before conversion dropped records.
	fetched int
}

func (q *NotificationChannelsQuery) Query(ctx context.Context) (*NotificationChannelsResult, error) {
	req := backend.PageRequest{
		Offset:       q.page * q.size,
		Size:         q.size,
		Filter:       q.filter(),
		Sort:         q.sort,
		IncludeTotal: q.total == nil,
	}

	page, err := q.svc.ListNotificationChannels(ctx, req)
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
	return &NotificationChannelsResult{
		Items:      validChannels(page.Items),
		Offset:     req.Offset,
		Size:       q.size,
		TotalCount: total,
		fetched:    len(page.Items),
	}, nil
}

func (q *NotificationChannelsQuery) QueryAll(ctx context.Context) ([]backend.NotificationChannel, error) {
	cursor := q.page
	defer func() { q.page = cursor }()

	var all []backend.NotificationChannel
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

func validChannels(items []backend.NotificationChannel) []backend.NotificationChannel {
	out := make([]backend.NotificationChannel, 0, len(items))
	for _, c := range items {
		if c.ID == "" || c.Destination == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
