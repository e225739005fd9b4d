package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	companieserrors "brandpulse/internal/companies/errors"
	"brandpulse/internal/companies/repository"
	apperrors "brandpulse/pkg/errors"
	"brandpulse/pkg/fields"
	"brandpulse/pkg/identity"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
)

type CompanyService interface {
	// List never fails: an unreachable store or a broken directory yields an
	// empty slice.
	List(ctx context.Context) []model.CompanyEntry
	// Tracked returns the directory records the scheduler analyzes.
	Tracked(ctx context.Context) ([]model.Company, error)
	Register(ctx context.Context, companyID, name string, keywords []string) error
	RecordAnalysis(ctx context.Context, companyID string, at time.Time) error
	SaveProfile(ctx context.Context, profile *model.CompanyProfile) error
	Profile(ctx context.Context, companyID string) (*model.CompanyProfile, error)
}

type companyService struct {
	repo repository.CompanyRepository
	log  *logger.Logger
}

func NewCompanyService(repo repository.CompanyRepository, log *logger.Logger) CompanyService {
	return &companyService{
		repo: repo,
		log:  log,
	}
}

func (s *companyService) List(ctx context.Context) []model.CompanyEntry {
	if !s.repo.Available(ctx) {
		return []model.CompanyEntry{}
	}

	docs, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Warn("Failed to read company directory", "error", err)
		return []model.CompanyEntry{}
	}

	if entries := entriesFromDocs(docs); len(entries) > 0 {
		return sortEntries(entries)
	}

	ids := s.derive(ctx)
	entries := make([]model.CompanyEntry, 0, len(ids))
	for _, id := range ids {
		display := identity.DisplayName(id)
		if err := s.repo.EnsureExists(ctx, id, display); err != nil {
			s.log.Warn("Failed to cache derived company", "company_id", id, "error", err)
		}
		entries = append(entries, model.CompanyEntry{ID: id, DisplayName: display})
	}

	if len(entries) > 0 {
		s.log.Info("Company directory derived from data collections", "count", len(entries))
	}
	return sortEntries(entries)
}

func entriesFromDocs(docs []bson.M) []model.CompanyEntry {
	seen := make(map[string]bool, len(docs))
	entries := make([]model.CompanyEntry, 0, len(docs))
	for _, doc := range docs {
		id, ok := fields.FirstString(doc, fields.Identity)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		display, ok := fields.FirstString(doc, fields.DisplayName)
		if !ok {
			display = identity.DisplayName(id)
		}
		entries = append(entries, model.CompanyEntry{ID: id, DisplayName: display})
	}
	return entries
}

// derive collects identifiers from every data collection. Spellings of the
// same identity collapse to one, preferring the canonical spelling.
func (s *companyService) derive(ctx context.Context) []string {
	byKey := make(map[string]string)
	for _, name := range model.DataCollections() {
		ids, err := s.repo.DistinctIdentities(ctx, name)
		if err != nil {
			s.log.Debug("Skipping collection during company derivation", "collection", name, "error", err)
			continue
		}
		for _, id := range ids {
			key := identity.Key(id)
			cur, ok := byKey[key]
			if !ok || preferred(id, cur) {
				byKey[key] = id
			}
		}
	}

	out := make([]string, 0, len(byKey))
	for _, id := range byKey {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func preferred(candidate, current string) bool {
	if r1, r2 := rank(candidate), rank(current); r1 != r2 {
		return r1 < r2
	}
	return candidate < current
}

// rank orders spellings: the canonical key first, then any lowercase
// spelling, then the rest.
func rank(id string) int {
	switch {
	case id == identity.Key(id):
		return 0
	case id == strings.ToLower(id):
		return 1
	default:
		return 2
	}
}

func sortEntries(entries []model.CompanyEntry) []model.CompanyEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DisplayName != entries[j].DisplayName {
			return entries[i].DisplayName < entries[j].DisplayName
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

func (s *companyService) Tracked(ctx context.Context) ([]model.Company, error) {
	docs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, translate(err)
	}

	companies := make([]model.Company, 0, len(docs))
	for _, doc := range docs {
		id, ok := fields.FirstString(doc, fields.Identity)
		if !ok {
			continue
		}
		name, _ := fields.FirstString(doc, fields.DisplayName)
		companies = append(companies, model.Company{
			CompanyID: id,
			Name:      name,
			Keywords:  stringList(doc["keywords"]),
		})
	}
	return companies, nil
}

func stringList(v any) []string {
	var items []any
	switch list := v.(type) {
	case bson.A:
		items = list
	case []any:
		items = list
	case []string:
		return sanitizer.SanitizeSlice(list, sanitizer.TrimAndNormalize)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return sanitizer.SanitizeSlice(out, sanitizer.TrimAndNormalize)
}

func (s *companyService) Register(ctx context.Context, companyID, name string, keywords []string) error {
	if err := s.repo.Register(ctx, companyID, name, keywords); err != nil {
		s.log.Warn("Failed to register company", "company_id", companyID, "error", err)
		return translate(err)
	}
	return nil
}

func (s *companyService) RecordAnalysis(ctx context.Context, companyID string, at time.Time) error {
	if err := s.repo.RecordAnalysis(ctx, companyID, at); err != nil {
		return translate(err)
	}
	return nil
}

func (s *companyService) SaveProfile(ctx context.Context, profile *model.CompanyProfile) error {
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		s.log.Warn("Failed to save company profile", "company_id", profile.CompanyID, "error", err)
		return translate(err)
	}
	return nil
}

func (s *companyService) Profile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	profile, err := s.repo.FindProfile(ctx, companyID)
	if err != nil {
		return nil, translate(err)
	}
	return profile, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, companieserrors.ErrNotFound):
		return apperrors.NotFound("Company profile")
	case errors.Is(err, companieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Company identifier cannot be empty")
	case errors.Is(err, store.ErrUnavailable):
		return apperrors.Unavailable("document store", err)
	default:
		return apperrors.Internal("Company directory operation failed", err)
	}
}
