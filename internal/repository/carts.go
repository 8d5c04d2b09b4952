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

type CartRepo interface {
	FindByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error)
	FindByIntent(ctx context.Context, intentID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	// Update persists the cart with compare-and-swap on its version field and
	// returns ErrVersionConflict when the stored version has moved on.
	Update(ctx context.Context, cart *models.Cart) error
	SetStatusByIntent(ctx context.Context, intentID string, status models.CartStatus) (*models.Cart, error)
}

type MongoCartRepo struct {
	coll *mongo.Collection
}

func NewMongoCartRepo(database *mongo.Database) *MongoCartRepo {
	return &MongoCartRepo{coll: database.Collection("carts")}
}

func (r *MongoCartRepo) FindByOwner(ctx context.Context, owner primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.coll.FindOne(ctx, bson.M{"createdBy": owner}).Decode(&cart)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *MongoCartRepo) FindByIntent(ctx context.Context, intentID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.coll.FindOne(ctx, bson.M{"paymentIntentId": intentID}).Decode(&cart)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *MongoCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.ExpiresAt.IsZero() {
		cart.ExpiresAt = now.Add(24 * time.Hour)
	}
	res, err := r.coll.InsertOne(ctx, cart)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	cart.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoCartRepo) Update(ctx context.Context, cart *models.Cart) error {
	readVersion := cart.Version
	cart.Version++
	cart.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": cart.ID, "version": readVersion}, cart)
	if err != nil {
		cart.Version = readVersion
		return err
	}
	if res.MatchedCount == 0 {
		cart.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (r *MongoCartRepo) SetStatusByIntent(ctx context.Context, intentID string, status models.CartStatus) (*models.Cart, error) {
	after := options.After
	var cart models.Cart
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"paymentIntentId": intentID},
		bson.M{
			"$set": bson.M{"status": status, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&cart)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
