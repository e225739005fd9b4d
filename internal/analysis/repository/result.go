package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	analysiserrors "brandpulse/internal/analysis/errors"
	migrations "brandpulse/internal/migrations/mongo"
	"brandpulse/pkg/config"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResultRepository writes the output of one analysis run.
type ResultRepository interface {
	// EnsureIndexes creates the collection indexes once per process.
	EnsureIndexes(ctx context.Context) error
	// InsertMentions reports how many documents were stored. Documents
	// rejected only by a unique index are skipped silently.
	InsertMentions(ctx context.Context, docs []bson.M) (int, error)
	InsertKeywords(ctx context.Context, records []model.KeywordRecord) error
	InsertThemes(ctx context.Context, records []model.ThemeRecord) error
	InsertSentiment(ctx context.Context, snapshot model.SentimentSnapshot) error
}

type mongoResultRepository struct {
	store        *store.Store
	writeTimeout time.Duration
	log          *logger.Logger
	indexed      atomic.Bool
}

func NewMongoResultRepository(cfg *config.Config) ResultRepository {
	return &mongoResultRepository{
		store:        cfg.Store,
		writeTimeout: cfg.MongoQueryTimeout,
		log:          cfg.Log,
	}
}

func (r *mongoResultRepository) EnsureIndexes(ctx context.Context) error {
	if r.indexed.Load() {
		return nil
	}

	db, err := r.store.Database(ctx)
	if err != nil {
		return err
	}
	if err := migrations.RunMigration(ctx, db, r.log); err != nil {
		return err
	}
	r.indexed.Store(true)
	return nil
}

func (r *mongoResultRepository) InsertMentions(ctx context.Context, docs []bson.M) (int, error) {
	items := make([]any, len(docs))
	for i, doc := range docs {
		items[i] = doc
	}
	return r.insertMany(ctx, model.CollectionMentions, items)
}

func (r *mongoResultRepository) InsertKeywords(ctx context.Context, records []model.KeywordRecord) error {
	items := make([]any, len(records))
	for i := range records {
		items[i] = records[i]
	}
	_, err := r.insertMany(ctx, model.CollectionKeywords, items)
	return err
}

func (r *mongoResultRepository) InsertThemes(ctx context.Context, records []model.ThemeRecord) error {
	items := make([]any, len(records))
	for i := range records {
		items[i] = records[i]
	}
	_, err := r.insertMany(ctx, model.CollectionThemes, items)
	return err
}

func (r *mongoResultRepository) InsertSentiment(ctx context.Context, snapshot model.SentimentSnapshot) error {
	coll, err := r.store.Collection(ctx, model.CollectionSentiments)
	if err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if _, err := coll.InsertOne(ctx, snapshot); err != nil {
		if err = store.Translate(err); errors.Is(err, store.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: sentiments: %v", analysiserrors.ErrWriteFailed, err)
	}
	return nil
}

func (r *mongoResultRepository) insertMany(ctx context.Context, collection string, items []any) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	coll, err := r.store.Collection(ctx, collection)
	if err != nil {
		return 0, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	_, err = coll.InsertMany(ctx, items, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(items), nil
	}
	if store.IsDuplicateKeyBatch(err) {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			return len(items) - len(bulkErr.WriteErrors), nil
		}
		return 0, nil
	}
	if err = store.Translate(err); errors.Is(err, store.ErrUnavailable) {
		return 0, err
	}
	return 0, fmt.Errorf("%w: %s: %v", analysiserrors.ErrWriteFailed, collection, err)
}
