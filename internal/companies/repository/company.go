package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	companieserrors "brandpulse/internal/companies/errors"
	"brandpulse/pkg/config"
	"brandpulse/pkg/fields"
	"brandpulse/pkg/model"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CompanyRepository interface {
	// FindAll returns the raw directory documents without their primary key.
	FindAll(ctx context.Context) ([]bson.M, error)
	// DistinctIdentities lists every identifier value stored in collection,
	// across all identity field names.
	DistinctIdentities(ctx context.Context, collection string) ([]string, error)
	// EnsureExists inserts a directory entry unless one exists. An existing
	// display name is never overwritten.
	EnsureExists(ctx context.Context, companyID, displayName string) error
	Register(ctx context.Context, companyID, name string, keywords []string) error
	RecordAnalysis(ctx context.Context, companyID string, at time.Time) error
	UpsertProfile(ctx context.Context, profile *model.CompanyProfile) error
	FindProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error)
	Available(ctx context.Context) bool
}

type mongoCompanyRepository struct {
	store        *store.Store
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoCompanyRepository(cfg *config.Config) CompanyRepository {
	return &mongoCompanyRepository{
		store:        cfg.Store,
		readTimeout:  cfg.MongoQueryTimeout,
		writeTimeout: cfg.MongoQueryTimeout,
	}
}

func (r *mongoCompanyRepository) FindAll(ctx context.Context) ([]bson.M, error) {
	coll, err := r.store.Collection(ctx, model.CollectionCompanies)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", store.Translate(err))
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", store.Translate(err))
	}
	return docs, nil
}

func (r *mongoCompanyRepository) DistinctIdentities(ctx context.Context, collection string) ([]string, error) {
	coll, err := r.store.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	var ids []string
	for _, field := range fields.Names(fields.Identity) {
		values, err := coll.Distinct(ctx, field, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("failed to list distinct %s in %s: %w", field, collection, store.Translate(err))
		}
		for _, v := range values {
			if s, ok := v.(string); ok && s != "" {
				ids = append(ids, s)
			}
		}
	}
	return ids, nil
}

func (r *mongoCompanyRepository) EnsureExists(ctx context.Context, companyID, displayName string) error {
	return r.upsert(ctx, model.CollectionCompanies, companyID, bson.M{
		"$setOnInsert": bson.M{"company_id": companyID, "Name": displayName},
	})
}

func (r *mongoCompanyRepository) Register(ctx context.Context, companyID, name string, keywords []string) error {
	set := bson.M{"company_id": companyID, "Name": name}
	if len(keywords) > 0 {
		set["keywords"] = keywords
	}
	return r.upsert(ctx, model.CollectionCompanies, companyID, bson.M{"$set": set})
}

func (r *mongoCompanyRepository) RecordAnalysis(ctx context.Context, companyID string, at time.Time) error {
	return r.upsert(ctx, model.CollectionCompanies, companyID, bson.M{
		"$set": bson.M{"last_analysis": at},
		"$inc": bson.M{"analysis_count": 1},
	})
}

func (r *mongoCompanyRepository) UpsertProfile(ctx context.Context, profile *model.CompanyProfile) error {
	return r.upsert(ctx, model.CollectionCompanyProfiles, profile.CompanyID, bson.M{"$set": profile})
}

func (r *mongoCompanyRepository) FindProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	coll, err := r.store.Collection(ctx, model.CollectionCompanyProfiles)
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	var profile model.CompanyProfile
	if err := coll.FindOne(ctx, bson.M{"company_id": companyID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", companieserrors.ErrNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to find company profile: %w", store.Translate(err))
	}
	return &profile, nil
}

func (r *mongoCompanyRepository) Available(ctx context.Context) bool {
	return r.store.Enabled(ctx)
}

func (r *mongoCompanyRepository) upsert(ctx context.Context, collection, companyID string, update bson.M) error {
	if companyID == "" {
		return companieserrors.ErrInvalidID
	}

	coll, err := r.store.Collection(ctx, collection)
	if err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	_, err = coll.UpdateOne(ctx, bson.M{"company_id": companyID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s entry %s: %w", collection, companyID, store.Translate(err))
	}
	return nil
}
