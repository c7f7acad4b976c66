package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository[T any] struct {
	mongo *mongo.Database
}

func NewMongoRepository[T any](mongo *mongo.Database) *MongoRepository[T] {
	return &MongoRepository[T]{mongo: mongo}
}

func (r *MongoRepository[T]) Create(ctx context.Context, collectionName string, entity T) (T, error) {
	collection := r.mongo.Collection(collectionName)
	_, err := collection.InsertOne(ctx, entity)
	return entity, err
}

// FindBy returns every document whose field equals value. The filter runs in the
// database, so callers never see documents outside the match.
func (r *MongoRepository[T]) FindBy(ctx context.Context, collectionName string, field string, value any) ([]T, error) {
	return r.find(ctx, collectionName, bson.M{field: value})
}

func (r *MongoRepository[T]) FindAll(ctx context.Context, collectionName string) ([]T, error) {
	return r.find(ctx, collectionName, bson.D{})
}

func (r *MongoRepository[T]) DeleteBy(ctx context.Context, collectionName string, field string, value any) (int64, error) {
	collection := r.mongo.Collection(collectionName)
	result, err := collection.DeleteMany(ctx, bson.M{field: value})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndex creates an ascending index on field if it does not exist yet.
func (r *MongoRepository[T]) EnsureIndex(ctx context.Context, collectionName string, field string) error {
	collection := r.mongo.Collection(collectionName)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetName(field + "_idx"),
	})
	return err
}

func (r *MongoRepository[T]) find(ctx context.Context, collectionName string, filter any) ([]T, error) {
	collection := r.mongo.Collection(collectionName)
	cursor, err := collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entities []T
	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, cursor.Err()
}
