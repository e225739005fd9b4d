package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	insightserrors "brandpulse/internal/insights/errors"
	"brandpulse/pkg/config"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsightRepository reads the daily aggregate collections. Every query is
// ordered by the "date" day key, then by primary key so that several runs on
// one day stay in write order.
type InsightRepository interface {
	Snapshots(ctx context.Context, collection string, filter bson.M, ascending bool, limit int64) ([]bson.M, error)
	Available(ctx context.Context) bool
}

type mongoInsightRepository struct {
	store       *store.Store
	readTimeout time.Duration
}

func NewMongoInsightRepository(cfg *config.Config) InsightRepository {
	return &mongoInsightRepository{
		store:       cfg.Store,
		readTimeout: cfg.MongoQueryTimeout,
	}
}

func (r *mongoInsightRepository) Snapshots(ctx context.Context, collection string, filter bson.M, ascending bool, limit int64) ([]bson.M, error) {
	coll, err := r.store.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	order := -1
	if ascending {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: order}, {Key: "_id", Value: order}})
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

func (r *mongoInsightRepository) Available(ctx context.Context) bool {
	return r.store.Enabled(ctx)
}

func wrap(collection string, err error) error {
	if err = store.Translate(err); errors.Is(err, store.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", insightserrors.ErrQueryFailed, collection, err)
}
