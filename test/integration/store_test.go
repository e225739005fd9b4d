package integration

import (
	"context"
	"testing"
	"time"

	analysisrepository "brandpulse/internal/analysis/repository"
	analysisservice "brandpulse/internal/analysis/service"
	companiesrepository "brandpulse/internal/companies/repository"
	companiesservice "brandpulse/internal/companies/service"
	insightsrepository "brandpulse/internal/insights/repository"
	insightsservice "brandpulse/internal/insights/service"
	mentionsrepository "brandpulse/internal/mentions/repository"
	mentionsservice "brandpulse/internal/mentions/service"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sourcetype"
	"brandpulse/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMentions_DuplicateBatchesAreSwallowed(t *testing.T) {
	cfg := testutil.NewConfig(t)
	ctx := context.Background()
	results := analysisrepository.NewMongoResultRepository(cfg)
	require.NoError(t, results.EnsureIndexes(ctx))

	docs := func() []bson.M {
		return []bson.M{
			{"company_id": "acme_co", "source": "news", "url": "https://news.example.com/1", "title": "one"},
			{"company_id": "acme_co", "source": "news", "url": "https://news.example.com/2", "title": "two"},
		}
	}

	n, err := results.InsertMentions(ctx, docs())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	more := append(docs(), bson.M{"company_id": "acme_co", "source": "news", "url": "https://news.example.com/3", "title": "three"})
	n, err = results.InsertMentions(ctx, more)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	svc := mentionsservice.NewMentionService(mentionsrepository.NewMongoMentionRepository(cfg), cfg.Log)
	res := svc.Fetch(ctx, mentionsservice.Query{Identity: "Acme_Co", Category: sourcetype.News, Limit: 10})
	assert.Equal(t, mentionsservice.StatusFound, res.Status)
	assert.Equal(t, mentionsservice.TierUnified, res.Tier)
	require.Len(t, res.Mentions, 3)
	assert.Equal(t, "three", res.Mentions[0]["title"])
	_, hasID := res.Mentions[0]["_id"]
	assert.False(t, hasID)
}

func TestCompanies_DerivedFromData(t *testing.T) {
	cfg := testutil.NewConfig(t)
	ctx := context.Background()

	results := analysisrepository.NewMongoResultRepository(cfg)
	require.NoError(t, results.InsertSentiment(ctx, model.SentimentSnapshot{CompanyID: "acme_co", Date: "2026-03-01"}))
	require.NoError(t, results.InsertKeywords(ctx, []model.KeywordRecord{{CompanyID: "acme_co", Date: "2026-03-01", Keyword: "Acme", Count: 1}}))

	svc := companiesservice.NewCompanyService(companiesrepository.NewMongoCompanyRepository(cfg), cfg.Log)
	assert.Equal(t, []model.CompanyEntry{{ID: "acme_co", DisplayName: "Acme Co"}}, svc.List(ctx))

	require.NoError(t, svc.Register(ctx, "acme_co", "ACME Company", nil))
	assert.Equal(t, []model.CompanyEntry{{ID: "acme_co", DisplayName: "ACME Company"}}, svc.List(ctx))

	require.NoError(t, svc.RecordAnalysis(ctx, "acme_co", time.Now()))
	tracked, err := svc.Tracked(ctx)
	require.NoError(t, err)
	require.Len(t, tracked, 1)
	assert.Equal(t, "acme_co", tracked[0].CompanyID)
	assert.Equal(t, "ACME Company", tracked[0].Name)
}

func TestTasks_Lifecycle(t *testing.T) {
	cfg := testutil.NewConfig(t)
	ctx := context.Background()
	tasks := analysisrepository.NewMongoTaskRepository(cfg)
	require.NoError(t, analysisrepository.NewMongoResultRepository(cfg).EnsureIndexes(ctx))

	task := &model.AnalysisTask{
		TaskID:      "0f8fad5b-d9cb-469f-a165-70867728950e",
		CompanyID:   "acme_co",
		CompanyName: "Acme Co",
		Status:      model.TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, tasks.Create(ctx, task))
	require.NoError(t, tasks.MarkRunning(ctx, task.TaskID, time.Now()))
	require.NoError(t, tasks.MarkFinished(ctx, task.TaskID, model.TaskFailed, "scrape failed", time.Now()))

	latest, err := tasks.Latest(ctx, "acme_co")
	require.NoError(t, err)
	assert.Equal(t, model.TaskFailed, latest.Status)
	assert.Equal(t, "scrape failed", latest.Error)
	require.NotNil(t, latest.FinishedAt)

	svc := analysisservice.NewTaskService(tasks, nil, cfg.Log)
	assert.Equal(t, model.TaskFailed, svc.Status(ctx, "acme_co"))
	assert.Equal(t, model.TaskPending, svc.Status(ctx, "globex"))
}

func TestInsights_NewestSnapshot(t *testing.T) {
	cfg := testutil.NewConfig(t)
	ctx := context.Background()
	results := analysisrepository.NewMongoResultRepository(cfg)

	for i, counts := range []model.SentimentCounts{{Positive: 1}, {Negative: 4}} {
		require.NoError(t, results.InsertSentiment(ctx, model.SentimentSnapshot{
			CompanyID:       "acme_co",
			Date:            time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC).Format(model.DateLayout),
			SentimentCounts: counts,
		}))
	}

	svc := insightsservice.NewInsightService(insightsrepository.NewMongoInsightRepository(cfg), cfg.Log)
	assert.Equal(t, model.SentimentCounts{Negative: 4}, svc.Sentiment(ctx, "Acme-Co"))

	require.NoError(t, results.InsertSentiment(ctx, model.SentimentSnapshot{
		CompanyID:       "acme_co",
		Date:            "2026-03-02",
		SentimentCounts: model.SentimentCounts{Positive: 9},
	}))
	assert.Equal(t, model.SentimentCounts{Positive: 9}, svc.Sentiment(ctx, "acme_co"))
}
