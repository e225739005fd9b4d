package handler

import (
	"net/http"

	"brandpulse/internal/companies/service"
	httputil "brandpulse/pkg/http"
	"brandpulse/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type CompanyHandler struct {
	service service.CompanyService
	log     *logger.Logger
}

func NewCompanyHandler(service service.CompanyService, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		log:     log,
	}
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteOK(w, h.service.List(r.Context()))
}

func (h *CompanyHandler) Profile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	profile, err := h.service.Profile(r.Context(), ps.ByName("company_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, profile)
}

func (h *CompanyHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/companies", h.List)
	router.GET("/api/companies/:company_id/profile", h.Profile)
}
