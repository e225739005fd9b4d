package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"brandpulse/internal/insights/service"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type mockInsightService struct {
	historyDays []int
}

func (m *mockInsightService) Sentiment(ctx context.Context, companyID string) model.SentimentCounts {
	return model.SentimentCounts{Positive: 3, Neutral: 2, Negative: 1}
}

func (m *mockInsightService) Keywords(ctx context.Context, companyID string) []map[string]any {
	return []map[string]any{{"keyword": "anvil", "count": 9}}
}

func (m *mockInsightService) Themes(ctx context.Context, companyID string) []string {
	return []string{}
}

func (m *mockInsightService) History(ctx context.Context, companyID string, days int) service.History {
	m.historyDays = append(m.historyDays, days)
	return service.History{
		CompanyID: companyID,
		Days:      days,
		Snapshots: []model.SentimentSnapshot{},
		RiskTrend: service.RiskStable,
	}
}

func serve(h *InsightHandler, target string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	h := NewInsightHandler(&mockInsightService{}, logger.Nop())

	tests := []struct {
		target string
		want   string
	}{
		{"/api/sentiment/acme_co", `{"positive":3,"neutral":2,"negative":1}`},
		{"/api/keywords/acme_co", `[{"keyword":"anvil","count":9}]`},
		{"/api/themes/acme_co", `[]`},
		{"/api/sentiment/acme_co/history", `{"company_id":"acme_co","days":30,"history":[],"risk_trend":"stable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(h, tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestHistory_DaysParameter(t *testing.T) {
	svc := &mockInsightService{}
	h := NewInsightHandler(svc, logger.Nop())

	serve(h, "/api/sentiment/acme_co/history?days=7")
	serve(h, "/api/sentiment/acme_co/history?days=9999")
	assert.Equal(t, []int{7, 365}, svc.historyDays)

	rec := serve(h, "/api/sentiment/acme_co/history?days=week")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
