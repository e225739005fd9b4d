package scrapers

import (
	"context"

	"brandpulse/pkg/logger"
	"brandpulse/pkg/sourcetype"

	"go.mongodb.org/mongo-driver/bson"
)

// Twitter is a placeholder source. No usable anonymous search API exists, so
// it always returns nothing.
type Twitter struct {
	log *logger.Logger
}

func NewTwitter(log *logger.Logger) *Twitter {
	return &Twitter{log: log}
}

func (t *Twitter) Category() sourcetype.Category {
	return sourcetype.Twitter
}

func (t *Twitter) Fetch(ctx context.Context, company string, keywords []string, limit int) []bson.M {
	t.log.Debug("Twitter scraping is disabled", "company", company)
	return nil
}
