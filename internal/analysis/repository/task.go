package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	analysiserrors "brandpulse/internal/analysis/errors"
	"brandpulse/pkg/config"
	"brandpulse/pkg/model"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository persists analysis task status markers.
type TaskRepository interface {
	Create(ctx context.Context, task *model.AnalysisTask) error
	MarkRunning(ctx context.Context, taskID string, at time.Time) error
	MarkFinished(ctx context.Context, taskID string, status model.TaskStatus, errMsg string, at time.Time) error
	// Latest returns the newest task for companyID.
	Latest(ctx context.Context, companyID string) (*model.AnalysisTask, error)
	// HasResults reports whether any sentiment snapshot exists for companyID,
	// which marks analyses that ran before tasks were tracked.
	HasResults(ctx context.Context, companyID string) (bool, error)
}

type mongoTaskRepository struct {
	store        *store.Store
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoTaskRepository(cfg *config.Config) TaskRepository {
	return &mongoTaskRepository{
		store:        cfg.Store,
		readTimeout:  cfg.MongoQueryTimeout,
		writeTimeout: cfg.MongoQueryTimeout,
	}
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *model.AnalysisTask) error {
	coll, err := r.store.Collection(ctx, model.CollectionAnalysisTasks)
	if err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if _, err := coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create analysis task: %w", store.Translate(err))
	}
	return nil
}

func (r *mongoTaskRepository) MarkRunning(ctx context.Context, taskID string, at time.Time) error {
	return r.update(ctx, taskID, bson.M{
		"status":     model.TaskRunning,
		"started_at": at,
	})
}

func (r *mongoTaskRepository) MarkFinished(ctx context.Context, taskID string, status model.TaskStatus, errMsg string, at time.Time) error {
	set := bson.M{
		"status":      status,
		"finished_at": at,
	}
	if errMsg != "" {
		set["error"] = errMsg
	}
	return r.update(ctx, taskID, set)
}

func (r *mongoTaskRepository) update(ctx context.Context, taskID string, set bson.M) error {
	coll, err := r.store.Collection(ctx, model.CollectionAnalysisTasks)
	if err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	res, err := coll.UpdateOne(ctx, bson.M{"task_id": taskID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update analysis task: %w", store.Translate(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", analysiserrors.ErrTaskNotFound, taskID)
	}
	return nil
}

func (r *mongoTaskRepository) Latest(ctx context.Context, companyID string) (*model.AnalysisTask, error) {
	coll, err := r.store.Collection(ctx, model.CollectionAnalysisTasks)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var task model.AnalysisTask
	if err := coll.FindOne(ctx, bson.M{"company_id": companyID}, opts).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, analysiserrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find analysis task: %w", store.Translate(err))
	}
	return &task, nil
}

func (r *mongoTaskRepository) HasResults(ctx context.Context, companyID string) (bool, error) {
	coll, err := r.store.Collection(ctx, model.CollectionSentiments)
	if err != nil {
		return false, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.M{"company_id": companyID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count sentiments: %w", store.Translate(err))
	}
	return n > 0, nil
}
