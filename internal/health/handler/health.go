package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	httputil "brandpulse/pkg/http"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/store"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const probeTimeout = 2 * time.Second

// Probe is the view of the document store the health endpoints need.
type Probe interface {
	Status() store.Status
	Ping(ctx context.Context) error
	EstimatedCount(ctx context.Context, collection string) (int64, error)
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Status     string         `json:"status"`
	Mongo      string         `json:"mongo"`
	State      string         `json:"state"`
	URIPresent bool           `json:"uri_present"`
	DBName     string         `json:"db_name"`
	LastError  string         `json:"last_error,omitempty"`
	Counts     map[string]any `json:"counts,omitempty"`
}

type HealthHandler struct {
	probe Probe
	log   *logger.Logger
}

func NewHealthHandler(probe Probe, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		probe: probe,
		log:   log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteOK(w, HealthResponse{Status: "ok"})
}

// Ready answers 503 until the store is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := h.report(r.Context(), false)
	if resp.Mongo != "connected" {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.WriteOK(w, resp)
}

// Diagnostics always answers 200 and includes per-collection counts.
func (h *HealthHandler) Diagnostics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteOK(w, h.report(r.Context(), true))
}

func (h *HealthHandler) report(ctx context.Context, withCounts bool) ReadyResponse {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "unavailable", Mongo: "disabled"}

	if err := h.probe.Ping(ctx); err != nil {
		h.log.Debug("Document store health check failed", "error", err)
		h.fill(&resp)
		if !errors.Is(err, store.ErrUnavailable) {
			resp.Mongo = "error"
		}
		return resp
	}

	resp.Status, resp.Mongo = "ready", "connected"
	h.fill(&resp)

	if withCounts {
		resp.Counts = make(map[string]any, len(model.StatsCollections()))
		for _, name := range model.StatsCollections() {
			n, err := h.probe.EstimatedCount(ctx, name)
			if err != nil {
				resp.Counts[name] = "err: " + err.Error()
				continue
			}
			resp.Counts[name] = n
		}
	}
	return resp
}

func (h *HealthHandler) fill(resp *ReadyResponse) {
	status := h.probe.Status()
	resp.State = status.State
	resp.URIPresent = status.URIPresent
	resp.DBName = status.DatabaseName
	resp.LastError = status.LastError
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/api/health", h.Diagnostics)
}

// StoreProbe adapts *store.Store to Probe.
type StoreProbe struct {
	Store *store.Store
}

func (p StoreProbe) Status() store.Status {
	return p.Store.Status()
}

func (p StoreProbe) Ping(ctx context.Context) error {
	client, err := p.Store.Client(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

func (p StoreProbe) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	coll, err := p.Store.Collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return coll.EstimatedDocumentCount(ctx)
}
