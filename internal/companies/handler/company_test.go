package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "brandpulse/pkg/errors"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type mockCompanyService struct {
	listFunc    func(ctx context.Context) []model.CompanyEntry
	profileFunc func(ctx context.Context, companyID string) (*model.CompanyProfile, error)
}

func (m *mockCompanyService) List(ctx context.Context) []model.CompanyEntry {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []model.CompanyEntry{}
}

func (m *mockCompanyService) Tracked(ctx context.Context) ([]model.Company, error) {
	return nil, nil
}

func (m *mockCompanyService) Register(ctx context.Context, companyID, name string, keywords []string) error {
	return nil
}

func (m *mockCompanyService) RecordAnalysis(ctx context.Context, companyID string, at time.Time) error {
	return nil
}

func (m *mockCompanyService) SaveProfile(ctx context.Context, profile *model.CompanyProfile) error {
	return nil
}

func (m *mockCompanyService) Profile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	if m.profileFunc != nil {
		return m.profileFunc(ctx, companyID)
	}
	return nil, apperrors.NotFound("Company profile")
}

func serve(h *CompanyHandler, target string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestList(t *testing.T) {
	svc := &mockCompanyService{listFunc: func(ctx context.Context) []model.CompanyEntry {
		return []model.CompanyEntry{{ID: "acme_co", DisplayName: "Acme Co"}}
	}}

	rec := serve(NewCompanyHandler(svc, logger.Nop()), "/api/companies")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"acme_co","display_name":"Acme Co"}]`, rec.Body.String())
}

func TestList_EmptyIsArray(t *testing.T) {
	rec := serve(NewCompanyHandler(&mockCompanyService{}, logger.Nop()), "/api/companies")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProfile(t *testing.T) {
	svc := &mockCompanyService{profileFunc: func(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
		return &model.CompanyProfile{CompanyID: companyID, Name: "Acme", Summary: "s", URL: "u"}, nil
	}}

	rec := serve(NewCompanyHandler(svc, logger.Nop()), "/api/companies/acme_co/profile")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"company_id":"acme_co","Name":"Acme","Summary":"s","URL":"u"}`, rec.Body.String())
}

func TestProfile_NotFound(t *testing.T) {
	rec := serve(NewCompanyHandler(&mockCompanyService{}, logger.Nop()), "/api/companies/nobody/profile")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Company profile not found")
}
