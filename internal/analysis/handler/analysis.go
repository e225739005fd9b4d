package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"brandpulse/internal/analysis/service"
	httputil "brandpulse/pkg/http"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AnalyzeResponse struct {
	Message   string `json:"message"`
	CompanyID string `json:"company_id"`
	TaskID    string `json:"task_id"`
}

type StatusResponse struct {
	Status model.TaskStatus `json:"status"`
}

type AnalysisHandler struct {
	service service.TaskService
	log     *logger.Logger
}

func NewAnalysisHandler(service service.TaskService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		log:     log,
	}
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("Rejected analyze request body", "error", err)
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	task, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteAccepted(w, AnalyzeResponse{
		Message:   fmt.Sprintf("Analysis started for %s.", task.CompanyName),
		CompanyID: task.CompanyID,
		TaskID:    task.TaskID,
	})
}

func (h *AnalysisHandler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	httputil.WriteOK(w, StatusResponse{Status: h.service.Status(r.Context(), ps.ByName("company_id"))})
}

func (h *AnalysisHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/analyze", h.Analyze)
	router.GET("/api/analysis_status/:company_id", h.Status)
}
