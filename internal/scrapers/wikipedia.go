package scrapers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brandpulse/pkg/client"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
)

// Wikipedia reads page summaries from the REST API.
type Wikipedia struct {
	http *client.HttpClient
	log  *logger.Logger
}

func NewWikipedia(endpoint, userAgent string, timeout time.Duration, log *logger.Logger) *Wikipedia {
	c := client.NewHttpClient(strings.TrimSuffix(endpoint, "/"), timeout)
	c.UserAgent = userAgent
	return &Wikipedia{
		http: c,
		log:  log,
	}
}

type wikiSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (w *Wikipedia) Profile(ctx context.Context, company string) (*model.CompanyProfile, bool) {
	if w.http.UserAgent == "" {
		w.log.Info("Wikipedia User-Agent not set, skipping profile lookup")
		return nil, false
	}

	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(company), " ", "_"))
	resp, err := w.http.GET(ctx, "/"+title, nil, map[string]string{"Accept": "application/json"})
	if err != nil {
		w.log.Warn("Wikipedia request failed", "company", company, "error", err)
		return nil, false
	}
	if resp.StatusCode == http.StatusNotFound {
		w.log.Info("Wikipedia page not found", "company", company)
		return nil, false
	}
	if !resp.OK() {
		w.log.Warn("Wikipedia request rejected", "company", company, "status", resp.StatusCode)
		return nil, false
	}

	var summary wikiSummary
	if err := resp.DecodeJSON(&summary); err != nil {
		w.log.Warn("Wikipedia returned an unreadable body", "company", company, "error", err)
		return nil, false
	}
	if summary.Extract == "" {
		return nil, false
	}

	return &model.CompanyProfile{
		Name:    company,
		Summary: summary.Extract,
		URL:     summary.ContentURLs.Desktop.Page,
	}, true
}
