package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	mentionserrors "brandpulse/internal/mentions/errors"
	"brandpulse/pkg/config"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MentionRepository reads mention documents as stored, without assuming a
// schema. Results are ordered newest first by primary key.
type MentionRepository interface {
	Find(ctx context.Context, collection string, filter bson.M, limit int64) ([]bson.M, error)
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
	Available(ctx context.Context) bool
}

type mongoMentionRepository struct {
	store       *store.Store
	readTimeout time.Duration
}

func NewMongoMentionRepository(cfg *config.Config) MentionRepository {
	return &mongoMentionRepository{
		store:       cfg.Store,
		readTimeout: cfg.MongoQueryTimeout,
	}
}

func (r *mongoMentionRepository) Find(ctx context.Context, collection string, filter bson.M, limit int64) ([]bson.M, error) {
	coll, err := r.store.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrap(collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrap(collection, err)
	}
	return docs, nil
}

func (r *mongoMentionRepository) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	coll, err := r.store.Collection(ctx, collection)
	if err != nil {
		return 0, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrap(collection, err)
	}
	return n, nil
}

func (r *mongoMentionRepository) Available(ctx context.Context) bool {
	return r.store.Enabled(ctx)
}

func wrap(collection string, err error) error {
	if err = store.Translate(err); errors.Is(err, store.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", mentionserrors.ErrQueryFailed, collection, err)
}
