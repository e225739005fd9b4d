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

// newsAPIMaxPageSize is the largest page the everything endpoint serves.
const newsAPIMaxPageSize = 100

type NewsAPI struct {
	http   *client.HttpClient
	apiKey string
	log    *logger.Logger
}

func NewNewsAPI(endpoint, apiKey string, timeout time.Duration, log *logger.Logger) *NewsAPI {
	return &NewsAPI{
		http:   client.NewHttpClient(endpoint, timeout),
		apiKey: apiKey,
		log:    log,
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Description string `json:"description"`
	} `json:"articles"`
}

func (n *NewsAPI) Category() sourcetype.Category {
	return sourcetype.News
}

func (n *NewsAPI) Fetch(ctx context.Context, company string, keywords []string, limit int) []bson.M {
	if n.apiKey == "" {
		n.log.Info("NewsAPI key not found, skipping news scraping")
		return nil
	}

	query := url.Values{}
	query.Set("q", newsQuery(company, keywords))
	query.Set("language", "en")
	query.Set("sortBy", "relevancy")
	query.Set("pageSize", strconv.Itoa(min(max(limit, 1), newsAPIMaxPageSize)))

	resp, err := n.http.GET(ctx, "", query, map[string]string{"X-Api-Key": n.apiKey})
	if err != nil {
		n.log.Warn("NewsAPI request failed", "company", company, "error", err)
		return nil
	}

	var body newsAPIResponse
	if err := resp.DecodeJSON(&body); err != nil {
		n.log.Warn("NewsAPI returned an unreadable body", "company", company, "status", resp.StatusCode, "error", err)
		return nil
	}
	if !resp.OK() || body.Status == "error" {
		n.log.Warn("NewsAPI request rejected", "company", company, "status", resp.StatusCode, "message", body.Message)
		return nil
	}

	docs := make([]bson.M, 0, len(body.Articles))
	for _, a := range body.Articles {
		docs = append(docs, bson.M{
			"publisher":    a.Source.Name,
			"title":        a.Title,
			"url":          a.URL,
			"published_at": a.PublishedAt,
			"text":         a.Description,
		})
	}
	n.log.Info("Fetched news articles", "company", company, "count", len(docs))
	return docs
}
