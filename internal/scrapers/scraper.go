// Package scrapers fetches raw mentions and company profiles from external
// sources. Every failure is logged and reported as "nothing found"; an
// analysis run keeps going with whatever the other sources returned.
package scrapers

import (
	"context"
	"strconv"
	"strings"

	"brandpulse/pkg/config"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sourcetype"

	"go.mongodb.org/mongo-driver/bson"
)

type MentionSource interface {
	Category() sourcetype.Category
	Fetch(ctx context.Context, company string, keywords []string, limit int) []bson.M
}

type ProfileSource interface {
	Profile(ctx context.Context, company string) (*model.CompanyProfile, bool)
}

// Sources is the set of collaborators one analysis run consults.
type Sources struct {
	Mentions []MentionSource
	Profile  ProfileSource
	// Limits holds the per-category item cap.
	Limits map[sourcetype.Category]int
}

func NewSources(cfg *config.Config, log *logger.Logger) Sources {
	var news MentionSource
	if cfg.NewsAPIKey != "" {
		news = NewNewsAPI(cfg.NewsAPIURL, cfg.NewsAPIKey, cfg.ScraperTimeout, log)
	} else {
		log.Info("NEWS_API_KEY not set, using RSS news search")
		news = NewRSSNews(cfg.NewsRSSURL, cfg.WikiUserAgent, cfg.ScraperTimeout, log)
	}

	return Sources{
		Mentions: []MentionSource{
			news,
			NewReddit(cfg.RedditSearchURL, cfg.RedditUserAgent, cfg.ScraperTimeout, log),
			NewTwitter(log),
		},
		Profile: NewWikipedia(cfg.WikiSummaryURL, cfg.WikiUserAgent, cfg.ScraperTimeout, log),
		Limits: map[sourcetype.Category]int{
			sourcetype.News:    cfg.NewsLimit,
			sourcetype.Reddit:  cfg.RedditLimit,
			sourcetype.Twitter: cfg.TwitterLimit,
		},
	}
}

// Limit returns the configured cap for c, or the default mention limit.
func (s Sources) Limit(c sourcetype.Category) int {
	if n, ok := s.Limits[c]; ok && n > 0 {
		return n
	}
	return config.DefaultMentionLimit
}

// anyQuery builds `"company" OR "k1" OR "k2"`.
func anyQuery(company string, keywords []string) string {
	terms := []string{strconv.Quote(company)}
	for _, k := range keywords {
		terms = append(terms, strconv.Quote(k))
	}
	return strings.Join(terms, " OR ")
}

// newsQuery builds `"company" OR (k1 AND k2)`.
func newsQuery(company string, keywords []string) string {
	q := strconv.Quote(company)
	if len(keywords) > 0 {
		q += " OR (" + strings.Join(keywords, " AND ") + ")"
	}
	return q
}
