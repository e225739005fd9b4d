package scrapers

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"brandpulse/pkg/client"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/sourcetype"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	redditMaxLimit = 100
	redditBaseURL  = "https://www.reddit.com"
)

// Reddit uses the public search listing, which needs no credentials but
// does require a descriptive User-Agent.
type Reddit struct {
	http *client.HttpClient
	log  *logger.Logger
}

func NewReddit(endpoint, userAgent string, timeout time.Duration, log *logger.Logger) *Reddit {
	c := client.NewHttpClient(endpoint, timeout)
	c.UserAgent = userAgent
	return &Reddit{
		http: c,
		log:  log,
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Subreddit  string  `json:"subreddit"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Score      int     `json:"score"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Category() sourcetype.Category {
	return sourcetype.Reddit
}

func (r *Reddit) Fetch(ctx context.Context, company string, keywords []string, limit int) []bson.M {
	query := url.Values{}
	query.Set("q", anyQuery(company, keywords))
	query.Set("limit", strconv.Itoa(min(max(limit, 1), redditMaxLimit)))
	query.Set("sort", "relevance")
	query.Set("type", "link")

	resp, err := r.http.GET(ctx, "", query, nil)
	if err != nil {
		r.log.Warn("Reddit search failed", "company", company, "error", err)
		return nil
	}
	if !resp.OK() {
		r.log.Warn("Reddit search rejected", "company", company, "status", resp.StatusCode)
		return nil
	}

	var listing redditListing
	if err := resp.DecodeJSON(&listing); err != nil {
		r.log.Warn("Reddit returned an unreadable body", "company", company, "error", err)
		return nil
	}

	docs := make([]bson.M, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		docs = append(docs, bson.M{
			"type":        "post",
			"id":          p.ID,
			"subreddit":   p.Subreddit,
			"title":       p.Title,
			"text":        p.Selftext,
			"score":       p.Score,
			"url":         redditBaseURL + p.Permalink,
			"created_utc": p.CreatedUTC,
		})
	}
	r.log.Info("Fetched Reddit posts", "company", company, "count", len(docs))
	return docs
}
