package scrapers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brandpulse/pkg/logger"
	"brandpulse/pkg/sourcetype"

	"github.com/mmcdole/gofeed"
	"go.mongodb.org/mongo-driver/bson"
)

// RSSNews searches a news RSS endpoint such as Google News.
type RSSNews struct {
	endpoint string
	parser   *gofeed.Parser
	log      *logger.Logger
}

func NewRSSNews(endpoint, userAgent string, timeout time.Duration, log *logger.Logger) *RSSNews {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent
	return &RSSNews{
		endpoint: endpoint,
		parser:   parser,
		log:      log,
	}
}

func (n *RSSNews) Category() sourcetype.Category {
	return sourcetype.News
}

func (n *RSSNews) Fetch(ctx context.Context, company string, keywords []string, limit int) []bson.M {
	query := url.Values{}
	query.Set("q", anyQuery(company, keywords))
	query.Set("hl", "en-US")
	query.Set("gl", "US")
	query.Set("ceid", "US:en")

	feed, err := n.parser.ParseURLWithContext(n.endpoint+"?"+query.Encode(), ctx)
	if err != nil {
		n.log.Warn("RSS news search failed", "company", company, "error", err)
		return nil
	}

	count := min(len(feed.Items), max(limit, 0))
	docs := make([]bson.M, 0, count)
	for _, item := range feed.Items[:count] {
		doc := bson.M{
			"publisher": feed.Title,
			"title":     item.Title,
			"url":       item.Link,
			"text":      firstNonEmpty(item.Description, item.Content),
		}
		if item.PublishedParsed != nil {
			doc["published_at"] = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else if item.UpdatedParsed != nil {
			doc["published_at"] = item.UpdatedParsed.UTC().Format(time.RFC3339)
		}
		if item.Author != nil && item.Author.Name != "" {
			doc["author"] = item.Author.Name
		}
		docs = append(docs, doc)
	}

	n.log.Info("Fetched RSS news items", "company", company, "count", len(docs))
	return docs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
