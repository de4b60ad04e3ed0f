// Package bear is the MongoDB-backed implementation of the backend service.
// It covers dashboards, catalog metadata, summaries, automations and
// notification channels; summary workflows are not part of the product it
// models, so the workflow operations report ErrNotSupported.
package bear

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-dash/internal/database"
	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/model"
)

type Backend struct {
	dashboards  *mongo.Collection
	forms       *mongo.Collection
	catalog     *mongo.Collection
	summaries   *mongo.Collection
	automations *mongo.Collection
	channels    *mongo.Collection
}

func NewBackend(db *database.MongodbDB) *Backend {
	return &Backend{
		dashboards:  db.DB.Collection("dashboards"),
		forms:       db.DB.Collection("display_forms"),
		catalog:     db.DB.Collection("catalog_objects"),
		summaries:   db.DB.Collection("summaries"),
		automations: db.DB.Collection("automations"),
		channels:    db.DB.Collection("notification_channels"),
	}
}

func (b *Backend) GetDashboard(ctx context.Context, ref model.ObjRef) (*model.Dashboard, error) {
	var stored backend.StoredDashboard
	err := b.dashboards.FindOne(ctx, refFilter(ref)).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	return backend.FromStored(&stored)
}

func (b *Backend) SaveDashboard(ctx context.Context, dashboard *model.Dashboard) error {
	stored := backend.ToStored(dashboard)
	opts := options.Replace().SetUpsert(true)
	_, err := b.dashboards.ReplaceOne(ctx, bson.M{"_id": stored.ID}, stored, opts)
	return err
}

func (b *Backend) GetAttributeDisplayForms(ctx context.Context, refs []model.ObjRef) ([]model.DisplayForm, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	ors := make([]bson.M, 0, len(refs))
	for _, ref := range refs {
		if ref.Identifier != "" {
			ors = append(ors, bson.M{"ref.identifier": ref.Identifier})
		} else {
			ors = append(ors, bson.M{"ref.uri": ref.URI})
		}
	}

	cursor, err := b.forms.Find(ctx, bson.M{"$or": ors})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var forms []model.DisplayForm
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// catalogObject is the canonical identity record. One document per catalog
// object with both addressing schemes.
type catalogObject struct {
	Identifier string `bson:"_id"`
	URI        string `bson:"uri"`
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

	cursor, err := b.catalog.Find(ctx, bson.M{"$or": []bson.M{
		{"_id": bson.M{"$in": ids}},
		{"uri": bson.M{"$in": uris}},
	}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var objects []catalogObject
	if err := cursor.All(ctx, &objects); err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(refs))
	for _, obj := range objects {
		resolved[model.ObjRef{Identifier: obj.Identifier}.Key()] = obj.URI
		resolved[model.ObjRef{URI: obj.URI}.Key()] = obj.URI
	}

	// Keep only entries for the refs actually asked about.
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		if uri, ok := resolved[ref.Key()]; ok {
			out[ref.Key()] = uri
		}
	}
	return out, nil
}

func (b *Backend) StartSummaryWorkflow(ctx context.Context, dashboard model.ObjRef) (string, error) {
	return "", backend.ErrNotSupported
}

func (b *Backend) GetWorkflowStatus(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
	return nil, backend.ErrNotSupported
}

func (b *Backend) ListSummaries(ctx context.Context, dashboard model.ObjRef) ([]model.Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cursor, err := b.summaries.Find(ctx, bson.M{"dashboard.identifier": dashboard.Identifier}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []model.Summary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (b *Backend) ListAutomations(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.Automation], error) {
	return listPage[backend.Automation](ctx, b.automations, req)
}

func (b *Backend) ListNotificationChannels(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.NotificationChannel], error) {
	return listPage[backend.NotificationChannel](ctx, b.channels, req)
}

func listPage[T any](ctx context.Context, coll *mongo.Collection, req backend.PageRequest) (*backend.Page[T], error) {
	filter, err := filterToBSON(req.Filter)
	if err != nil {
		return nil, err
	}

	page := &backend.Page[T]{}
	if req.IncludeTotal {
		total, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, err
		}
		n := int(total)
		page.TotalCount = &n
	}

	opts := options.Find().
		SetSkip(int64(req.Offset)).
		SetLimit(int64(req.Size)).
		SetSort(sortToBSON(req.Sort))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// filterToBSON translates the filter expression into a Mongo query. Groups
// become $and clauses, alternatives within a group become $or.
func filterToBSON(expr string) (bson.M, error) {
	groups, err := backend.ParseFilterExpr(expr)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return bson.M{}, nil
	}

	ands := make([]bson.M, 0, len(groups))
	for _, group := range groups {
		ors := make([]bson.M, 0, len(group))
		for _, pred := range group {
			ors = append(ors, predicateToBSON(pred))
		}
		if len(ors) == 1 {
			ands = append(ands, ors[0])
		} else {
			ands = append(ands, bson.M{"$or": ors})
		}
	}
	if len(ands) == 1 {
		return ands[0], nil
	}
	return bson.M{"$and": ands}, nil
}

// filterPaths maps filter field names to document paths where the two
// differ. Dashboard refs are stored as subdocuments but filtered by
// identifier.
var filterPaths = map[string]string{
	"dashboard": "dashboard.identifier",
}

func fieldPath(name string) string {
	if path, ok := filterPaths[name]; ok {
		return path
	}
	return name
}

func predicateToBSON(p backend.Predicate) bson.M {
	switch p.Op {
	case backend.OpContains:
		pattern := regexp.QuoteMeta(p.Value)
		return bson.M{fieldPath(p.Field): bson.M{"$regex": pattern, "$options": "i"}}
	case backend.OpEq:
		return bson.M{fieldPath(p.Field): p.Value}
	default:
		panic(fmt.Sprintf("bear: unknown filter operator %q", p.Op))
	}
}

func sortToBSON(sort string) bson.D {
	if sort == "" {
		return bson.D{{Key: "created", Value: -1}}
	}
	if sort[0] == '-' {
		return bson.D{{Key: sort[1:], Value: -1}}
	}
	return bson.D{{Key: sort, Value: 1}}
}

func refFilter(ref model.ObjRef) bson.M {
	if ref.Identifier != "" {
		return bson.M{"_id": ref.Identifier}
	}
	return bson.M{"uri": ref.URI}
}
