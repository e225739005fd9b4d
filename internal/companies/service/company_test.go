package service

import (
	"context"
	"errors"
	"testing"
	"time"

	companieserrors "brandpulse/internal/companies/errors"
	apperrors "brandpulse/pkg/errors"
	"brandpulse/pkg/fields"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// ────────────────────────────────────────────────
// In-memory repository
// ────────────────────────────────────────────────

type fakeCompanyRepository struct {
	db *storetest.DB
}

func newFakeRepo() *fakeCompanyRepository {
	return &fakeCompanyRepository{db: storetest.NewDB()}
}

func (f *fakeCompanyRepository) FindAll(ctx context.Context) ([]bson.M, error) {
	docs, err := f.db.Find(model.CollectionCompanies, bson.M{}, "", false, 0)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		delete(doc, "_id")
	}
	return docs, nil
}

func (f *fakeCompanyRepository) DistinctIdentities(ctx context.Context, collection string) ([]string, error) {
	var ids []string
	for _, field := range fields.Names(fields.Identity) {
		values, err := f.db.Distinct(collection, field)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			if s, ok := v.(string); ok && s != "" {
				ids = append(ids, s)
			}
		}
	}
	return ids, nil
}

func (f *fakeCompanyRepository) EnsureExists(ctx context.Context, companyID, displayName string) error {
	return f.db.Upsert(model.CollectionCompanies, bson.M{"company_id": companyID}, bson.M{
		"$setOnInsert": bson.M{"company_id": companyID, "Name": displayName},
	})
}

func (f *fakeCompanyRepository) Register(ctx context.Context, companyID, name string, keywords []string) error {
	if companyID == "" {
		return companieserrors.ErrInvalidID
	}
	set := bson.M{"company_id": companyID, "Name": name}
	if len(keywords) > 0 {
		set["keywords"] = keywords
	}
	return f.db.Upsert(model.CollectionCompanies, bson.M{"company_id": companyID}, bson.M{"$set": set})
}

func (f *fakeCompanyRepository) RecordAnalysis(ctx context.Context, companyID string, at time.Time) error {
	return f.db.Upsert(model.CollectionCompanies, bson.M{"company_id": companyID}, bson.M{
		"$set": bson.M{"last_analysis": at},
		"$inc": bson.M{"analysis_count": 1},
	})
}

func (f *fakeCompanyRepository) UpsertProfile(ctx context.Context, p *model.CompanyProfile) error {
	return f.db.Upsert(model.CollectionCompanyProfiles, bson.M{"company_id": p.CompanyID}, bson.M{
		"$set": bson.M{"company_id": p.CompanyID, "Name": p.Name, "Summary": p.Summary, "URL": p.URL},
	})
}

func (f *fakeCompanyRepository) FindProfile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	docs, err := f.db.Find(model.CollectionCompanyProfiles, bson.M{"company_id": companyID}, "", false, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, companieserrors.ErrNotFound
	}
	doc := docs[0]
	return &model.CompanyProfile{
		CompanyID: companyID,
		Name:      doc["Name"].(string),
		Summary:   doc["Summary"].(string),
		URL:       doc["URL"].(string),
	}, nil
}

func (f *fakeCompanyRepository) Available(ctx context.Context) bool {
	return f.db.Available()
}

func newService(repo *fakeCompanyRepository) CompanyService {
	return NewCompanyService(repo, logger.Nop())
}

// ────────────────────────────────────────────────
// List
// ────────────────────────────────────────────────

func TestList_AuthoritativeEntries(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Insert(model.CollectionCompanies,
		bson.M{"company_id": "tesla_inc", "Name": "Tesla, Inc."},
		bson.M{"company_id": "acme_co"},
	)
	repo.db.Insert(model.CollectionSentiments, bson.M{"company_id": "globex", "date": "2026-01-01"})

	entries := newService(repo).List(context.Background())

	assert.Equal(t, []model.CompanyEntry{
		{ID: "acme_co", DisplayName: "Acme Co"},
		{ID: "tesla_inc", DisplayName: "Tesla, Inc."},
	}, entries)
}

func TestList_DerivesFromDataCollections(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Insert(model.CollectionSentiments, bson.M{"company_id": "acme_co", "date": "2026-01-01"})
	repo.db.Insert(model.CollectionNewsMentions, bson.M{"company": "acme_co", "url": "https://a.example"})
	repo.db.Insert(model.CollectionKeywords, bson.M{"companyId": "globex", "keyword": "widgets"})

	entries := newService(repo).List(context.Background())

	assert.Equal(t, []model.CompanyEntry{
		{ID: "acme_co", DisplayName: "Acme Co"},
		{ID: "globex", DisplayName: "Globex"},
	}, entries)

	cached := repo.db.Docs(model.CollectionCompanies)
	require.Len(t, cached, 2)
}

func TestList_DerivedSpellingsCollapse(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Insert(model.CollectionMentions, bson.M{"company_id": "Acme_Co"})
	repo.db.Insert(model.CollectionThemes, bson.M{"company_id": "acme-co"})
	repo.db.Insert(model.CollectionSentiments, bson.M{"company_id": "acme_co"})

	entries := newService(repo).List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "acme_co", entries[0].ID)
	assert.Equal(t, "Acme Co", entries[0].DisplayName)
}

func TestList_DerivedEntryKeepsExistingName(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Insert(model.CollectionSentiments, bson.M{"company_id": "acme_co"})
	svc := newService(repo)

	svc.List(context.Background())
	require.NoError(t, repo.db.Upsert(model.CollectionCompanies, bson.M{"company_id": "acme_co"},
		bson.M{"$set": bson.M{"Name": "ACME Corporation"}}))

	require.NoError(t, repo.EnsureExists(context.Background(), "acme_co", "Acme Co"))

	entries := svc.List(context.Background())
	assert.Equal(t, []model.CompanyEntry{{ID: "acme_co", DisplayName: "ACME Corporation"}}, entries)
}

func TestList_CollectionFailureSkipped(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Fail(model.CollectionSentiments, errors.New("boom"))
	repo.db.Insert(model.CollectionThemes, bson.M{"company_id": "globex"})

	entries := newService(repo).List(context.Background())
	assert.Equal(t, []model.CompanyEntry{{ID: "globex", DisplayName: "Globex"}}, entries)
}

func TestList_UnavailableIsEmpty(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Insert(model.CollectionCompanies, bson.M{"company_id": "acme_co"})
	repo.db.SetUnavailable(true)

	entries := newService(repo).List(context.Background())
	require.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestList_DirectoryFailureIsEmpty(t *testing.T) {
	repo := newFakeRepo()
	repo.db.Fail(model.CollectionCompanies, errors.New("boom"))

	entries := newService(repo).List(context.Background())
	require.NotNil(t, entries)
	assert.Empty(t, entries)
}

// ────────────────────────────────────────────────
// Directory writes
// ────────────────────────────────────────────────

func TestRegisterAndTracked(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "tesla_inc", "Tesla Inc", []string{"tesla", " elon  musk ", "tesla"}))
	require.NoError(t, svc.RecordAnalysis(ctx, "tesla_inc", time.Now()))
	require.NoError(t, svc.RecordAnalysis(ctx, "tesla_inc", time.Now()))

	tracked, err := svc.Tracked(ctx)
	require.NoError(t, err)
	require.Len(t, tracked, 1)
	assert.Equal(t, "tesla_inc", tracked[0].CompanyID)
	assert.Equal(t, "Tesla Inc", tracked[0].Name)
	assert.Equal(t, []string{"tesla", "elon musk"}, tracked[0].Keywords)

	doc := repo.db.Docs(model.CollectionCompanies)[0]
	assert.Equal(t, 2, doc["analysis_count"])
}

func TestRegister_EmptyIDIsInvalid(t *testing.T) {
	err := newService(newFakeRepo()).Register(context.Background(), "", "x", nil)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestProfile_RoundTripAndNotFound(t *testing.T) {
	svc := newService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Profile(ctx, "acme_co")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	require.NoError(t, svc.SaveProfile(ctx, &model.CompanyProfile{
		CompanyID: "acme_co",
		Name:      "Acme Corporation",
		Summary:   "Maker of everything.",
		URL:       "https://en.wikipedia.org/wiki/Acme_Corporation",
	}))

	profile, err := svc.Profile(ctx, "acme_co")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", profile.Name)
}
