package automation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-dash/internal/database"
)

type AutomationRepository interface {
	Create(ctx context.Context, rule *AutomationRule) error
	GetByID(ctx context.Context, id string) (*AutomationRule, error)
	ListActiveSchedules(ctx context.Context) ([]AutomationRule, error)
	Update(ctx context.Context, rule *AutomationRule) error
	Delete(ctx context.Context, id string) error
	Enable(ctx context.Context, id string, active bool) error
}

type AutomationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAutomationRepository(mongodb *database.MongodbDB) AutomationRepository {
	return &AutomationRepositoryImpl{
		Collection: mongodb.DB.Collection("automations"),
	}
}

func (r *AutomationRepositoryImpl) Create(ctx context.Context, rule *AutomationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.Created = time.Now()
	rule.Updated = rule.Created
	_, err := r.Collection.InsertOne(ctx, rule)
	return err
}

func (r *AutomationRepositoryImpl) GetByID(ctx context.Context, id string) (*AutomationRule, error) {
	var rule AutomationRule
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *AutomationRepositoryImpl) ListActiveSchedules(ctx context.Context) ([]AutomationRule, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"type": RuleTypeSchedule, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rules []AutomationRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AutomationRepositoryImpl) Update(ctx context.Context, rule *AutomationRule) error {
	rule.Updated = time.Now()
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule)
	return err
}

func (r *AutomationRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *AutomationRepositoryImpl) Enable(ctx context.Context, id string, active bool) error {
	update := bson.M{"$set": bson.M{"active": active, "updated": time.Now()}}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
