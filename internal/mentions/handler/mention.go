package handler

import (
	"errors"
	"net/http"

	mentionserrors "brandpulse/internal/mentions/errors"
	"brandpulse/internal/mentions/service"
	"brandpulse/pkg/config"
	httputil "brandpulse/pkg/http"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/sourcetype"

	"github.com/julienschmidt/httprouter"
)

type MentionHandler struct {
	service service.MentionService
	log     *logger.Logger
}

func NewMentionHandler(service service.MentionService, log *logger.Logger) *MentionHandler {
	return &MentionHandler{
		service: service,
		log:     log,
	}
}

// BySource serves the mentions of one category.
func (h *MentionHandler) BySource(c sourcetype.Category) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		h.bySource(w, r, ps, c)
	}
}

// bySource always answers with a JSON array. An unreachable store reads as
// "no data yet".
func (h *MentionHandler) bySource(w http.ResponseWriter, r *http.Request, ps httprouter.Params, c sourcetype.Category) {
	limit, err := httputil.QueryInt(r, "limit", config.MaxMentionsPerResponse, 1, config.MaxMentionsPerResponse)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := h.service.Fetch(r.Context(), service.Query{
		Identity:  ps.ByName("company_id"),
		Category:  c,
		Limit:     limit,
		AnySource: true,
	})

	mentions := result.Mentions
	if mentions == nil {
		mentions = []map[string]any{}
	}
	httputil.WriteOK(w, mentions)
}

func (h *MentionHandler) Debug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	report, err := h.service.Debug(r.Context(), ps.ByName("company_id"))
	if err != nil {
		if errors.Is(err, mentionserrors.ErrStoreDisabled) {
			httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error("Mention debug failed", "company_id", ps.ByName("company_id"), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, report)
}

func (h *MentionHandler) RegisterRoutes(router *httprouter.Router) {
	for _, c := range sourcetype.All() {
		router.GET("/api/"+c.String()+"/:company_id", h.BySource(c))
	}
	router.GET("/api/debug/mentions/:company_id", h.Debug)
}
