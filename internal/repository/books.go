package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rebooks-backend/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// BookQuery carries the catalog search parameters.
type BookQuery struct {
	Query       string
	Title       string
	Author      string
	ISBN        string
	AgeCategory string
	Condition   string
	Genre       string
	CoverType   string
	UserID      *primitive.ObjectID
	IsAvailable *bool
	Sort        string
	Limit       int64
	Skip        int64
}

type BookRepo interface {
	Create(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	Search(ctx context.Context, q BookQuery) ([]models.Book, error)
	FindByISBN(ctx context.Context, isbn10, isbn13 string) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetAvailability(ctx context.Context, ids []primitive.ObjectID, available bool) error
}

type MongoBookRepo struct {
	coll *mongo.Collection
}

func NewMongoBookRepo(database *mongo.Database) *MongoBookRepo {
	return &MongoBookRepo{coll: database.Collection("books")}
}

func (r *MongoBookRepo) Create(ctx context.Context, book *models.Book) error {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, book)
	if err != nil {
		return err
	}
	book.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoBookRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func regexFilter(field, value string) bson.M {
	return bson.M{field: bson.M{"$regex": value, "$options": "i"}}
}

func (r *MongoBookRepo) Search(ctx context.Context, q BookQuery) ([]models.Book, error) {
	var conds []bson.M

	if q.Query != "" {
		conds = append(conds, bson.M{"$or": []bson.M{
			regexFilter("title", q.Query),
			regexFilter("author", q.Query),
		}})
	}
	if q.Title != "" {
		conds = append(conds, regexFilter("title", q.Title))
	}
	if q.Author != "" {
		conds = append(conds, regexFilter("author", q.Author))
	}
	if q.ISBN != "" {
		conds = append(conds, bson.M{"$or": []bson.M{
			{"isbn10": q.ISBN},
			{"isbn13": q.ISBN},
		}})
	}
	if q.AgeCategory != "" {
		conds = append(conds, bson.M{"ageCategory": q.AgeCategory})
	}
	if q.Condition != "" {
		conds = append(conds, bson.M{"condition": q.Condition})
	}
	if q.Genre != "" {
		conds = append(conds, bson.M{"genre": q.Genre})
	}
	if q.CoverType != "" {
		conds = append(conds, bson.M{"coverType": q.CoverType})
	}
	if q.UserID != nil {
		conds = append(conds, bson.M{"createdBy": *q.UserID})
	}
	if q.IsAvailable != nil {
		conds = append(conds, bson.M{"isAvailable": *q.IsAvailable})
	}

	filter := bson.M{}
	if len(conds) == 1 {
		filter = conds[0]
	} else if len(conds) > 1 {
		filter = bson.M{"$and": conds}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	opts := options.Find().
		SetSort(sortSpec(q.Sort)).
		SetLimit(limit).
		SetSkip(q.Skip)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// sortSpec maps a user-facing sort key ("price", "-price", ...) to a Mongo
// sort document. Unknown keys fall back to newest first.
func sortSpec(sort string) bson.D {
	field := strings.TrimPrefix(sort, "-")
	dir := 1
	if strings.HasPrefix(sort, "-") {
		dir = -1
	}
	switch field {
	case "price", "title", "publishedYear", "createdAt":
		return bson.D{{Key: field, Value: dir}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}

func (r *MongoBookRepo) FindByISBN(ctx context.Context, isbn10, isbn13 string) ([]models.Book, error) {
	var ors []bson.M
	if isbn10 != "" {
		ors = append(ors, bson.M{"isbn10": isbn10})
	}
	if isbn13 != "" {
		ors = append(ors, bson.M{"isbn13": isbn13})
	}
	if len(ors) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"$or": ors})
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *MongoBookRepo) Update(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now()
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	return err
}

func (r *MongoBookRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoBookRepo) SetAvailability(ctx context.Context, ids []primitive.ObjectID, available bool) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"isAvailable": available, "updatedAt": time.Now()}},
	)
	return err
}
