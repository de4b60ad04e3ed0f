// Package tiger is the PostgreSQL-backed implementation of the backend
// service. Dashboards persist as JSONB documents; catalog metadata,
// summaries, automations and notification channels live in relational
// tables. Unlike bear, tiger supports server-side summary workflows.
package tiger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"go-dash/internal/database"
	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/model"
)

type Backend struct {
	db *sql.DB
}

func NewBackend(db *database.PostgresDB) *Backend {
	return &Backend{db: db.DB}
}

func (b *Backend) GetDashboard(ctx context.Context, ref model.ObjRef) (*model.Dashboard, error) {
	var doc []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT doc FROM dashboards WHERE id = $1`, dashboardKey(ref)).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}

	var stored backend.StoredDashboard
	if err := json.Unmarshal(doc, &stored); err != nil {
		return nil, fmt.Errorf("tiger: corrupt dashboard document: %w", err)
	}
	return backend.FromStored(&stored)
}

func (b *Backend) SaveDashboard(ctx context.Context, dashboard *model.Dashboard) error {
	stored := backend.ToStored(dashboard)
	doc, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO dashboards (id, doc, updated)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated = now()`,
		stored.ID, doc)
	return err
}

func (b *Backend) GetAttributeDisplayForms(ctx context.Context, refs []model.ObjRef) ([]model.DisplayForm, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(refs))
	uris := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Identifier != "" {
			ids = append(ids, ref.Identifier)
		} else if ref.URI != "" {
			uris = append(uris, ref.URI)
		}
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT identifier, uri, attribute_identifier, attribute_uri, title
		FROM display_forms
		WHERE identifier = ANY($1) OR uri = ANY($2)`,
		pq.Array(ids), pq.Array(uris))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []model.DisplayForm
	for rows.Next() {
		var form model.DisplayForm
		if err := rows.Scan(
			&form.Ref.Identifier, &form.Ref.URI,
			&form.Attribute.Identifier, &form.Attribute.URI,
			&form.Title,
		); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

func (b *Backend) ResolveObjRefs(ctx context.Context, refs []model.ObjRef) (map[string]string, error) {
	if len(refs) == 0 {
		return map[string]string{}, nil
	}

	ids := make([]string, 0, len(refs))
	uris := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Identifier != "" {
			ids = append(ids, ref.Identifier)
		} else if ref.URI != "" {
			uris = append(uris, ref.URI)
		}
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT identifier, uri FROM catalog_objects
		WHERE identifier = ANY($1) OR uri = ANY($2)`,
		pq.Array(ids), pq.Array(uris))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resolved := make(map[string]string)
	for rows.Next() {
		var identifier, uri string
		if err := rows.Scan(&identifier, &uri); err != nil {
			return nil, err
		}
		resolved[model.ObjRef{Identifier: identifier}.Key()] = uri
		resolved[model.ObjRef{URI: uri}.Key()] = uri
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		if uri, ok := resolved[ref.Key()]; ok {
			out[ref.Key()] = uri
		}
	}
	return out, nil
}

func (b *Backend) StartSummaryWorkflow(ctx context.Context, dashboard model.ObjRef) (string, error) {
	id := uuid.NewString()
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO workflows (id, dashboard_id, state, created)
		VALUES ($1, $2, $3, now())`,
		id, dashboardKey(dashboard), backend.WorkflowRunning)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (b *Backend) GetWorkflowStatus(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
	status := &backend.WorkflowStatus{ID: workflowID}
	var summaryID sql.NullString
	err := b.db.QueryRowContext(ctx,
		`SELECT state, summary_id FROM workflows WHERE id = $1`, workflowID).
		Scan(&status.State, &summaryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	status.SummaryID = summaryID.String
	return status, nil
}

func (b *Backend) ListSummaries(ctx context.Context, dashboard model.ObjRef) ([]model.Summary, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, dashboard_id, content, created
		FROM summaries WHERE dashboard_id = $1
		ORDER BY created DESC`,
		dashboardKey(dashboard))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.Summary
	for rows.Next() {
		var s model.Summary
		var dashID string
		if err := rows.Scan(&s.ID, &dashID, &s.Content, &s.Created); err != nil {
			return nil, err
		}
		s.Dashboard = model.ObjRef{Identifier: dashID}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// automationColumns maps filter expression fields to automation table
// columns. Anything outside the map is rejected to keep filters from
// reaching SQL as raw identifiers.
var automationColumns = map[string]string{
	"title":     "title",
	"type":      "type",
	"dashboard": "dashboard_id",
}

var channelColumns = map[string]string{
	"title":       "title",
	"type":        "type",
	"destination": "destination",
}

func (b *Backend) ListAutomations(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.Automation], error) {
	where, args, err := filterToSQL(req.Filter, automationColumns)
	if err != nil {
		return nil, err
	}

	page := &backend.Page[backend.Automation]{}
	if req.IncludeTotal {
		var total int
		err := b.db.QueryRowContext(ctx,
			`SELECT count(*) FROM automations`+where, args...).Scan(&total)
		if err != nil {
			return nil, err
		}
		page.TotalCount = &total
	}

	query := `SELECT id, title, type, dashboard_id, schedule, recipients, created FROM automations` +
		where + orderBy(req.Sort, automationColumns) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", req.Size, req.Offset)

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a backend.Automation
		var dashID string
		var schedule sql.NullString
		if err := rows.Scan(&a.ID, &a.Title, &a.Type, &dashID, &schedule,
			pq.Array(&a.Recipients), &a.Created); err != nil {
			return nil, err
		}
		a.Dashboard = model.ObjRef{Identifier: dashID}
		a.Schedule = schedule.String
		page.Items = append(page.Items, a)
	}
	return page, rows.Err()
}

func (b *Backend) ListNotificationChannels(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.NotificationChannel], error) {
	where, args, err := filterToSQL(req.Filter, channelColumns)
	if err != nil {
		return nil, err
	}

	page := &backend.Page[backend.NotificationChannel]{}
	if req.IncludeTotal {
		var total int
		err := b.db.QueryRowContext(ctx,
			`SELECT count(*) FROM notification_channels`+where, args...).Scan(&total)
		if err != nil {
			return nil, err
		}
		page.TotalCount = &total
	}

	query := `SELECT id, title, type, destination, created FROM notification_channels` +
		where + orderBy(req.Sort, channelColumns) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", req.Size, req.Offset)

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c backend.NotificationChannel
		if err := rows.Scan(&c.ID, &c.Title, &c.Type, &c.Destination, &c.Created); err != nil {
			return nil, err
		}
		page.Items = append(page.Items, c)
	}
	return page, rows.Err()
}

// filterToSQL translates the filter expression into a WHERE clause with
// positional parameters. Groups join with AND, alternatives with OR.
func filterToSQL(expr string, columns map[string]string) (string, []interface{}, error) {
	groups, err := backend.ParseFilterExpr(expr)
	if err != nil {
		return "", nil, err
	}
	if len(groups) == 0 {
		return "", nil, nil
	}

	var args []interface{}
	ands := make([]string, 0, len(groups))
	for _, group := range groups {
		ors := make([]string, 0, len(group))
		for _, pred := range group {
			column, ok := columns[pred.Field]
			if !ok {
				return "", nil, fmt.Errorf("tiger: unknown filter field %q", pred.Field)
			}
			switch pred.Op {
			case backend.OpContains:
				args = append(args, "%"+escapeLike(pred.Value)+"%")
				ors = append(ors, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
			case backend.OpEq:
				args = append(args, pred.Value)
				ors = append(ors, fmt.Sprintf("%s = $%d", column, len(args)))
			default:
				return "", nil, fmt.Errorf("tiger: unknown filter operator %q", pred.Op)
			}
		}
		if len(ors) == 1 {
			ands = append(ands, ors[0])
		} else {
			ands = append(ands, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return " WHERE " + strings.Join(ands, " AND "), args, nil
}

func orderBy(sort string, columns map[string]string) string {
	if sort == "" {
		return " ORDER BY created DESC"
	}
	direction := " ASC"
	if sort[0] == '-' {
		sort = sort[1:]
		direction = " DESC"
	}
	column, ok := columns[sort]
	if !ok {
		return " ORDER BY created DESC"
	}
	return " ORDER BY " + column + direction
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

func dashboardKey(ref model.ObjRef) string {
	if ref.Identifier != "" {
		return ref.Identifier
	}
	return ref.URI
}
