package mongo

import (
	"context"
	"fmt"

	"brandpulse/internal/migrations/mongo/validators"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func unique(keys ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: ascending(keys...), Options: options.Index().SetUnique(true)}
}

func plain(keys ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: ascending(keys...)}
}

func ascending(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return d
}

var (
	CompanyIndexes = []mongo.IndexModel{
		unique("company_id"),
	}

	MentionIndexes = []mongo.IndexModel{
		unique("company_id", "source", "url"),
		plain("company_id", "source"),
	}

	LegacyMentionIndexes = []mongo.IndexModel{
		unique("company_id", "url"),
	}

	AggregateIndexes = []mongo.IndexModel{
		plain("company_id", "date"),
	}

	AnalysisTaskIndexes = []mongo.IndexModel{
		unique("task_id"),
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
)

type Definition struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Definitions maps every collection to its indexes. Unique indexes are best
// effort: legacy data may already hold duplicates.
func Definitions() map[string]Definition {
	return map[string]Definition{
		model.CollectionCompanies:       {Indexes: CompanyIndexes},
		model.CollectionCompanyProfiles: {Indexes: CompanyIndexes},
		model.CollectionMentions:        {Indexes: MentionIndexes},
		model.CollectionNewsMentions:    {Indexes: LegacyMentionIndexes},
		model.CollectionRedditMentions:  {Indexes: LegacyMentionIndexes},
		model.CollectionTwitterMentions: {Indexes: LegacyMentionIndexes},
		model.CollectionSentiments:      {Indexes: AggregateIndexes},
		model.CollectionKeywords:        {Indexes: AggregateIndexes},
		model.CollectionThemes:          {Indexes: AggregateIndexes},
		model.CollectionAnalysisTasks:   {Indexes: AnalysisTaskIndexes, Validator: validators.AnalysisTaskValidator},
	}
}

// RunMigration creates missing collections and indexes. Existing documents
// are never rewritten. An index that cannot be built over existing data is
// logged and skipped.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Definitions() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		ensureIndexes(ctx, db, name, def.Indexes, log)
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator != nil {
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			log.Warn("Failed updating validator", "collection", name, "error", err)
		}
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) {
	coll := db.Collection(name)
	for _, m := range models {
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("Failed to ensure index", "collection", name, "keys", m.Keys, "error", err)
		}
	}
	log.Debug("Ensured indexes", "collection", name)
}
