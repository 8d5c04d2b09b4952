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

type ChatRepo interface {
	FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	Create(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	ListForUser(ctx context.Context, user primitive.ObjectID) ([]models.Chat, error)
	TouchLastMessage(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type MessageRepo interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByChat(ctx context.Context, chat primitive.ObjectID) ([]models.Message, error)
}

type MongoChatRepo struct {
	coll *mongo.Collection
}

func NewMongoChatRepo(database *mongo.Database) *MongoChatRepo {
	return &MongoChatRepo{coll: database.Collection("chats")}
}

func (r *MongoChatRepo) FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{"participants": bson.M{"$all": bson.A{a, b}}}).Decode(&chat)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *MongoChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	now := time.Now()
	chat.CreatedAt = now
	if chat.LastMessageAt.IsZero() {
		chat.LastMessageAt = now
	}
	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return err
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoChatRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *MongoChatRepo) ListForUser(ctx context.Context, user primitive.ObjectID) ([]models.Chat, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"participants": user},
		options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}, {Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var chats []models.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *MongoChatRepo) TouchLastMessage(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastMessageAt": at}})
	return err
}

type MongoMessageRepo struct {
	coll *mongo.Collection
}

func NewMongoMessageRepo(database *mongo.Database) *MongoMessageRepo {
	return &MongoMessageRepo{coll: database.Collection("messages")}
}

func (r *MongoMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoMessageRepo) ListByChat(ctx context.Context, chat primitive.ObjectID) ([]models.Message, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"chat": chat},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
