package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"brandpulse/internal/insights/repository"
	"brandpulse/pkg/fields"
	"brandpulse/pkg/identity"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365

	// maxAggregateRows caps a single aggregate read.
	maxAggregateRows = 1000
	riskWindowDays   = 7
	riskSamplePoints = 3
)

type RiskTrend string

const (
	RiskIncreasing RiskTrend = "increasing"
	RiskDecreasing RiskTrend = "decreasing"
	RiskStable     RiskTrend = "stable"
)

type History struct {
	CompanyID string                    `json:"company_id"`
	Days      int                       `json:"days"`
	Snapshots []model.SentimentSnapshot `json:"history"`
	RiskTrend RiskTrend                 `json:"risk_trend"`
}

// InsightService serves the "current" aggregate for an identity: the
// snapshot with the newest date. Reads degrade to zero values when the store
// cannot answer.
type InsightService interface {
	Sentiment(ctx context.Context, companyID string) model.SentimentCounts
	Keywords(ctx context.Context, companyID string) []map[string]any
	Themes(ctx context.Context, companyID string) []string
	History(ctx context.Context, companyID string, days int) History
}

type insightService struct {
	repo repository.InsightRepository
	log  *logger.Logger
	now  func() time.Time
}

func NewInsightService(repo repository.InsightRepository, log *logger.Logger) InsightService {
	return &insightService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (s *insightService) Sentiment(ctx context.Context, companyID string) model.SentimentCounts {
	docs, err := s.repo.Snapshots(ctx, model.CollectionSentiments, identity.Filter(companyID), false, 1)
	if err != nil {
		s.logFailure("sentiment", companyID, err)
		return model.SentimentCounts{}
	}
	if len(docs) == 0 {
		return model.SentimentCounts{}
	}
	return counts(docs[0])
}

func (s *insightService) Keywords(ctx context.Context, companyID string) []map[string]any {
	docs, err := s.repo.Snapshots(ctx, model.CollectionKeywords, identity.Filter(companyID), false, maxAggregateRows)
	if err != nil {
		s.logFailure("keywords", companyID, err)
		return []map[string]any{}
	}
	docs = newestDate(docs)

	seen := make(map[string]bool, len(docs))
	mapped := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		keyword, ok := fields.FirstNonEmpty(doc, fields.Keyword)
		if !ok {
			continue
		}
		count, ok := fields.FirstNonEmpty(doc, fields.Count)
		if !ok {
			continue
		}
		key := fmt.Sprint(keyword)
		if seen[key] {
			continue
		}
		seen[key] = true
		mapped = append(mapped, bson.M{"keyword": keyword, "count": count})
	}

	if len(mapped) == 0 {
		for _, doc := range docs {
			mapped = append(mapped, sanitizer.StripInternalID(doc))
		}
	}
	slices.Reverse(mapped)
	return sanitizer.Documents(mapped)
}

func (s *insightService) Themes(ctx context.Context, companyID string) []string {
	docs, err := s.repo.Snapshots(ctx, model.CollectionThemes, identity.Filter(companyID), false, maxAggregateRows)
	if err != nil {
		s.logFailure("themes", companyID, err)
		return []string{}
	}

	seen := make(map[string]bool)
	themes := []string{}
	for _, doc := range newestDate(docs) {
		if theme, ok := fields.FirstString(doc, fields.Theme); ok && !seen[theme] {
			seen[theme] = true
			themes = append(themes, theme)
		}
	}
	slices.Reverse(themes)
	return themes
}

func (s *insightService) History(ctx context.Context, companyID string, days int) History {
	days = min(max(days, 1), MaxHistoryDays)
	h := History{
		CompanyID: companyID,
		Days:      days,
		Snapshots: []model.SentimentSnapshot{},
		RiskTrend: RiskStable,
	}

	now := s.now().UTC()
	from := cutoff(now, max(days, riskWindowDays))
	filter := bson.M{"$and": bson.A{
		identity.Filter(companyID),
		bson.M{"date": bson.M{"$gte": from}},
	}}

	docs, err := s.repo.Snapshots(ctx, model.CollectionSentiments, filter, true, maxAggregateRows)
	if err != nil {
		s.logFailure("sentiment history", companyID, err)
		return h
	}

	window, risk := cutoff(now, days), cutoff(now, riskWindowDays)
	var recent []model.SentimentCounts
	for _, doc := range docs {
		snap := model.SentimentSnapshot{
			CompanyID:       companyID,
			Date:            dateKey(doc["date"]),
			SentimentCounts: counts(doc),
		}
		if snap.Date >= window {
			h.Snapshots = append(h.Snapshots, snap)
		}
		if snap.Date >= risk {
			recent = append(recent, snap.SentimentCounts)
		}
	}
	h.RiskTrend = Trend(recent)
	return h
}

// Trend compares the mean negative count of the last points against the
// first points of an ascending series. A change beyond 20% either way is a
// trend.
func Trend(series []model.SentimentCounts) RiskTrend {
	if len(series) < 2 {
		return RiskStable
	}

	head := series[:min(riskSamplePoints, len(series))]
	tail := series[max(len(series)-riskSamplePoints, 0):]
	older, recent := meanNegative(head), meanNegative(tail)

	switch {
	case recent > older*1.2:
		return RiskIncreasing
	case recent < older*0.8:
		return RiskDecreasing
	default:
		return RiskStable
	}
}

func meanNegative(series []model.SentimentCounts) float64 {
	total := 0
	for _, c := range series {
		total += c.Negative
	}
	return float64(total) / float64(len(series))
}

func (s *insightService) logFailure(what, companyID string, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		s.log.Debug("Store unavailable, serving default "+what, "company_id", companyID)
		return
	}
	s.log.Warn("Failed to read "+what, "company_id", companyID, "error", err)
}

// newestDate keeps the leading run of documents sharing the first document's
// date. Input is ordered newest first, so when several runs wrote the same
// day the rows of the latest run come first. Callers keep the first row per
// key and reverse the result back into write order.
func newestDate(docs []bson.M) []bson.M {
	if len(docs) == 0 {
		return docs
	}
	latest := dateKey(docs[0]["date"])
	end := 1
	for end < len(docs) && dateKey(docs[end]["date"]) == latest {
		end++
	}
	return docs[:end]
}

func cutoff(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format(model.DateLayout)
}

func dateKey(v any) string {
	switch d := sanitizer.Sanitize(v).(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		return fmt.Sprint(d)
	}
}

func counts(doc bson.M) model.SentimentCounts {
	return model.SentimentCounts{
		Positive: asInt(doc["positive"]),
		Neutral:  asInt(doc["neutral"]),
		Negative: asInt(doc["negative"]),
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}
