package handler

import (
	"net/http"

	"brandpulse/internal/insights/service"
	httputil "brandpulse/pkg/http"
	"brandpulse/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type InsightHandler struct {
	service service.InsightService
	log     *logger.Logger
}

func NewInsightHandler(service service.InsightService, log *logger.Logger) *InsightHandler {
	return &InsightHandler{
		service: service,
		log:     log,
	}
}

func (h *InsightHandler) Sentiment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	httputil.WriteOK(w, h.service.Sentiment(r.Context(), ps.ByName("company_id")))
}

func (h *InsightHandler) Keywords(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	httputil.WriteOK(w, h.service.Keywords(r.Context(), ps.ByName("company_id")))
}

func (h *InsightHandler) Themes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	httputil.WriteOK(w, h.service.Themes(r.Context(), ps.ByName("company_id")))
}

func (h *InsightHandler) History(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	days, err := httputil.QueryInt(r, "days", service.DefaultHistoryDays, 1, service.MaxHistoryDays)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, h.service.History(r.Context(), ps.ByName("company_id"), days))
}

func (h *InsightHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/sentiment/:company_id", h.Sentiment)
	router.GET("/api/sentiment/:company_id/history", h.History)
	router.GET("/api/keywords/:company_id", h.Keywords)
	router.GET("/api/themes/:company_id", h.Themes)
}
