// Package db owns the MongoDB connection and index bootstrap.
package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, err
	}

	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"carts": {
			{Keys: bson.D{{Key: "createdBy", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		"orders": {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "buyer", Value: 1}}},
			{Keys: bson.D{{Key: "seller", Value: 1}}},
		},
		"books": {
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
			{Keys: bson.D{{Key: "isbn10", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "isbn13", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		"savedbooks": {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: unique},
		},
		"chats": {
			{Keys: bson.D{{Key: "participants", Value: 1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "chat", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
