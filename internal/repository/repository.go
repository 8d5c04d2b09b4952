// Package repository contains the data-access interfaces consumed by the
// services and their MongoDB implementations. Absent documents are returned
// as (nil, nil); services decide whether that is a NotFound.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrVersionConflict is returned by compare-and-swap writes when the stored
// document version no longer matches the one that was read.
var ErrVersionConflict = errors.New("document version conflict")

// ErrDuplicate is returned when a unique index rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// TxRunner runs fn with transactional semantics where the store supports
// them. Everything the callback does through a context-aware repository call
// joins the same transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner backs TxRunner with a Mongo session. On deployments without
// replica sets (no transaction support) it degrades to running fn directly,
// which keeps local development working at the cost of atomicity.
type MongoTxRunner struct {
	client *mongo.Client
}

func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
