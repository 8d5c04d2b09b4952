package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rebooks-backend/internal/models"
)

type SavedBooksRepo interface {
	FindByUser(ctx context.Context, user primitive.ObjectID) (*models.SavedBooks, error)
	Save(ctx context.Context, saved *models.SavedBooks) error
}

type MongoSavedBooksRepo struct {
	coll *mongo.Collection
}

func NewMongoSavedBooksRepo(database *mongo.Database) *MongoSavedBooksRepo {
	return &MongoSavedBooksRepo{coll: database.Collection("savedbooks")}
}

func (r *MongoSavedBooksRepo) FindByUser(ctx context.Context, user primitive.ObjectID) (*models.SavedBooks, error) {
	var saved models.SavedBooks
	err := r.coll.FindOne(ctx, bson.M{"user": user}).Decode(&saved)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Save upserts the per-user wishlist document keyed by its owner.
func (r *MongoSavedBooksRepo) Save(ctx context.Context, saved *models.SavedBooks) error {
	now := time.Now()
	saved.UpdatedAt = now
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user": saved.User},
		bson.M{"$set": bson.M{
			"books":     saved.Books,
			"createdAt": saved.CreatedAt,
			"updatedAt": saved.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
