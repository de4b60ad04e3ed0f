package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-dash/internal/database"
)

type ChannelRepository interface {
	Create(ctx context.Context, channel *Channel) error
	GetByID(ctx context.Context, id string) (*Channel, error)
	Update(ctx context.Context, channel *Channel) error
	Delete(ctx context.Context, id string) error
}

type ChannelRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewChannelRepository(mongodb *database.MongodbDB) ChannelRepository {
	return &ChannelRepositoryImpl{
		Collection: mongodb.DB.Collection("notification_channels"),
	}
}

func (r *ChannelRepositoryImpl) Create(ctx context.Context, channel *Channel) error {
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	channel.Created = time.Now()
	channel.Updated = channel.Created
	_, err := r.Collection.InsertOne(ctx, channel)
	return err
}

func (r *ChannelRepositoryImpl) GetByID(ctx context.Context, id string) (*Channel, error) {
	var channel Channel
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&channel)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

func (r *ChannelRepositoryImpl) Update(ctx context.Context, channel *Channel) error {
	channel.Updated = time.Now()
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": channel.ID}, channel)
	return err
}

func (r *ChannelRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
