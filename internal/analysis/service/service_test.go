package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	analysiserrors "brandpulse/internal/analysis/errors"
	"brandpulse/internal/scrapers"
	apperrors "brandpulse/pkg/errors"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sourcetype"
	"brandpulse/pkg/store"
	"brandpulse/pkg/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// ────────────────────────────────────────────────
// In-memory repositories
// ────────────────────────────────────────────────

type fakeResultRepository struct {
	db          *storetest.DB
	indexCalls  int
	mentionKeys map[string]bool
}

func newFakeResults() *fakeResultRepository {
	return &fakeResultRepository{db: storetest.NewDB(), mentionKeys: make(map[string]bool)}
}

func (f *fakeResultRepository) EnsureIndexes(ctx context.Context) error {
	f.indexCalls++
	return nil
}

// InsertMentions mimics the unique (company_id, source, url) index.
func (f *fakeResultRepository) InsertMentions(ctx context.Context, docs []bson.M) (int, error) {
	if !f.db.Available() {
		return 0, store.ErrUnavailable
	}
	stored := 0
	for _, doc := range docs {
		key := fmt.Sprint(doc["company_id"], "|", doc["source"], "|", doc["url"])
		if f.mentionKeys[key] {
			continue
		}
		f.mentionKeys[key] = true
		f.db.Insert(model.CollectionMentions, doc)
		stored++
	}
	return stored, nil
}

func (f *fakeResultRepository) InsertKeywords(ctx context.Context, records []model.KeywordRecord) error {
	if !f.db.Available() {
		return store.ErrUnavailable
	}
	for _, r := range records {
		f.db.Insert(model.CollectionKeywords, bson.M{"company_id": r.CompanyID, "date": r.Date, "keyword": r.Keyword, "count": r.Count})
	}
	return nil
}

func (f *fakeResultRepository) InsertThemes(ctx context.Context, records []model.ThemeRecord) error {
	if !f.db.Available() {
		return store.ErrUnavailable
	}
	for _, r := range records {
		f.db.Insert(model.CollectionThemes, bson.M{"company_id": r.CompanyID, "date": r.Date, "theme": r.Theme, "count": r.Count})
	}
	return nil
}

func (f *fakeResultRepository) InsertSentiment(ctx context.Context, s model.SentimentSnapshot) error {
	if !f.db.Available() {
		return store.ErrUnavailable
	}
	f.db.Insert(model.CollectionSentiments, bson.M{
		"company_id": s.CompanyID,
		"date":       s.Date,
		"positive":   s.Positive,
		"neutral":    s.Neutral,
		"negative":   s.Negative,
	})
	return nil
}

type fakeTaskRepository struct {
	db *storetest.DB
}

func newFakeTasks() *fakeTaskRepository {
	return &fakeTaskRepository{db: storetest.NewDB()}
}

func (f *fakeTaskRepository) Create(ctx context.Context, task *model.AnalysisTask) error {
	if !f.db.Available() {
		return store.ErrUnavailable
	}
	f.db.Insert(model.CollectionAnalysisTasks, bson.M{
		"task_id":      task.TaskID,
		"company_id":   task.CompanyID,
		"company_name": task.CompanyName,
		"status":       string(task.Status),
		"created_at":   task.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	return nil
}

func (f *fakeTaskRepository) MarkRunning(ctx context.Context, taskID string, at time.Time) error {
	return f.update(taskID, bson.M{"status": string(model.TaskRunning)})
}

func (f *fakeTaskRepository) MarkFinished(ctx context.Context, taskID string, status model.TaskStatus, errMsg string, at time.Time) error {
	return f.update(taskID, bson.M{"status": string(status), "error": errMsg})
}

func (f *fakeTaskRepository) update(taskID string, set bson.M) error {
	n, err := f.db.Count(model.CollectionAnalysisTasks, bson.M{"task_id": taskID})
	if err != nil {
		return err
	}
	if n == 0 {
		return analysiserrors.ErrTaskNotFound
	}
	return f.db.Upsert(model.CollectionAnalysisTasks, bson.M{"task_id": taskID}, bson.M{"$set": set})
}

func (f *fakeTaskRepository) Latest(ctx context.Context, companyID string) (*model.AnalysisTask, error) {
	docs, err := f.db.Find(model.CollectionAnalysisTasks, bson.M{"company_id": companyID}, "created_at", true, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, analysiserrors.ErrTaskNotFound
	}
	status, _ := docs[0]["status"].(string)
	errMsg, _ := docs[0]["error"].(string)
	return &model.AnalysisTask{
		TaskID:    docs[0]["task_id"].(string),
		CompanyID: companyID,
		Status:    model.TaskStatus(status),
		Error:     errMsg,
	}, nil
}

func (f *fakeTaskRepository) HasResults(ctx context.Context, companyID string) (bool, error) {
	n, err := f.db.Count(model.CollectionSentiments, bson.M{"company_id": companyID})
	return n > 0, err
}

func (f *fakeTaskRepository) status(taskID string) string {
	for _, doc := range f.db.Docs(model.CollectionAnalysisTasks) {
		if doc["task_id"] == taskID {
			s, _ := doc["status"].(string)
			return s
		}
	}
	return ""
}

// ────────────────────────────────────────────────
// Collaborator stubs
// ────────────────────────────────────────────────

type stubCompanies struct {
	mu          sync.Mutex
	registerErr error
	registered  map[string][]string
	profiles    []*model.CompanyProfile
	recorded    []string
}

func newStubCompanies() *stubCompanies {
	return &stubCompanies{registered: make(map[string][]string)}
}

func (s *stubCompanies) List(ctx context.Context) []model.CompanyEntry { return nil }

func (s *stubCompanies) Tracked(ctx context.Context) ([]model.Company, error) { return nil, nil }

func (s *stubCompanies) Register(ctx context.Context, companyID, name string, keywords []string) error {
	if s.registerErr != nil {
		return s.registerErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[companyID] = keywords
	return nil
}

func (s *stubCompanies) RecordAnalysis(ctx context.Context, companyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, companyID)
	return nil
}

func (s *stubCompanies) SaveProfile(ctx context.Context, profile *model.CompanyProfile) error {
	s.profiles = append(s.profiles, profile)
	return nil
}

func (s *stubCompanies) Profile(ctx context.Context, companyID string) (*model.CompanyProfile, error) {
	return nil, apperrors.NotFound("Company profile")
}

type stubSource struct {
	category sourcetype.Category
	docs     []bson.M
	gotLimit int
}

func (s *stubSource) Category() sourcetype.Category { return s.category }

func (s *stubSource) Fetch(ctx context.Context, company string, keywords []string, limit int) []bson.M {
	s.gotLimit = limit
	out := make([]bson.M, len(s.docs))
	for i, doc := range s.docs {
		out[i] = bson.M{}
		for k, v := range doc {
			out[i][k] = v
		}
	}
	return out
}

type stubProfile struct {
	profile *model.CompanyProfile
}

func (s stubProfile) Profile(ctx context.Context, company string) (*model.CompanyProfile, bool) {
	if s.profile == nil {
		return nil, false
	}
	p := *s.profile
	return &p, true
}

type stubDispatcher struct {
	err   error
	tasks []*model.AnalysisTask
}

func (d *stubDispatcher) Dispatch(ctx context.Context, task *model.AnalysisTask) error {
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

type stubAnalyzer struct {
	err   error
	calls []string
}

func (a *stubAnalyzer) Run(ctx context.Context, name string, keywords []string) (*RunReport, error) {
	a.calls = append(a.calls, name)
	if a.err != nil {
		return nil, a.err
	}
	return &RunReport{}, nil
}

func testSources() (scrapers.Sources, *stubSource, *stubSource) {
	news := &stubSource{category: sourcetype.News, docs: []bson.M{
		{"publisher": "Wire", "title": "Acme Corp launches great product", "url": "https://news.example.com/1"},
		{"publisher": "Wire", "title": "Acme Corp recall is terrible", "url": "https://news.example.com/2"},
	}}
	reddit := &stubSource{category: sourcetype.Reddit, docs: []bson.M{
		{"type": "post", "title": "thread", "text": "I love Acme Corp", "url": "https://www.reddit.com/r/x/1"},
	}}
	twitter := &stubSource{category: sourcetype.Twitter}

	return scrapers.Sources{
		Mentions: []scrapers.MentionSource{news, reddit, twitter},
		Profile: stubProfile{profile: &model.CompanyProfile{
			Name:    "Acme Corp",
			Summary: "Acme Corp makes everything.",
			URL:     "https://en.wikipedia.org/wiki/Acme_Corp",
		}},
		Limits: map[sourcetype.Category]int{sourcetype.News: 20},
	}, news, reddit
}

func newTestRunner(companies *stubCompanies, results *fakeResultRepository, sources scrapers.Sources) *Runner {
	r := NewRunner(companies, results, sources, nil, nil, logger.Nop())
	r.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	return r
}

// ────────────────────────────────────────────────
// Runner
// ────────────────────────────────────────────────

func TestRun_WritesMentionsAndAggregates(t *testing.T) {
	companies := newStubCompanies()
	results := newFakeResults()
	sources, news, reddit := testSources()

	report, err := newTestRunner(companies, results, sources).Run(context.Background(), "  Acme   Corp ", []string{"acme", " acme ", ""})
	require.NoError(t, err)

	assert.Equal(t, "acme_corp", report.CompanyID)
	assert.Equal(t, []string{"acme"}, companies.registered["acme_corp"])
	assert.Equal(t, 1, results.indexCalls)

	require.Len(t, companies.profiles, 1)
	assert.Equal(t, "acme_corp", companies.profiles[0].CompanyID)
	assert.True(t, report.ProfileSaved)

	assert.Equal(t, 20, news.gotLimit)
	assert.Equal(t, 100, reddit.gotLimit)

	mentions := results.db.Docs(model.CollectionMentions)
	require.Len(t, mentions, 3)
	for _, m := range mentions {
		assert.Equal(t, "acme_corp", m["company_id"])
	}
	assert.Equal(t, "news", mentions[0]["source"])
	assert.Equal(t, "reddit", mentions[2]["source"])
	assert.Equal(t, map[string]int{"news": 2, "reddit": 1}, report.Mentions)

	assert.Equal(t, 3, report.Texts)
	keywords := results.db.Docs(model.CollectionKeywords)
	require.NotEmpty(t, keywords)
	assert.Equal(t, "Acme Corp", keywords[0]["keyword"])
	assert.Equal(t, 3, keywords[0]["count"])
	assert.Equal(t, "2026-03-10", keywords[0]["date"])

	sentiments := results.db.Docs(model.CollectionSentiments)
	require.Len(t, sentiments, 1)
	assert.Equal(t, 2, sentiments[0]["positive"])
	assert.Equal(t, 1, sentiments[0]["negative"])
	assert.Equal(t, 0, sentiments[0]["neutral"])
	assert.Equal(t, model.SentimentCounts{Positive: 2, Negative: 1}, report.Sentiment)
}

func TestRun_DuplicateMentionsSkipped(t *testing.T) {
	companies := newStubCompanies()
	results := newFakeResults()
	sources, _, _ := testSources()
	runner := newTestRunner(companies, results, sources)

	_, err := runner.Run(context.Background(), "Acme Corp", nil)
	require.NoError(t, err)
	report, err := runner.Run(context.Background(), "Acme Corp", nil)
	require.NoError(t, err)

	assert.Len(t, results.db.Docs(model.CollectionMentions), 3)
	assert.Equal(t, 0, report.Mentions["news"])
	assert.Len(t, results.db.Docs(model.CollectionSentiments), 2)
}

func TestRun_NoTextSkipsAggregates(t *testing.T) {
	companies := newStubCompanies()
	results := newFakeResults()

	report, err := newTestRunner(companies, results, scrapers.Sources{
		Mentions: []scrapers.MentionSource{&stubSource{category: sourcetype.Twitter}},
	}).Run(context.Background(), "Acme Corp", nil)
	require.NoError(t, err)

	assert.False(t, report.ProfileSaved)
	assert.Zero(t, report.Texts)
	assert.Empty(t, results.db.Docs(model.CollectionSentiments))
	assert.Empty(t, results.db.Docs(model.CollectionKeywords))
}

func TestRun_EmptyName(t *testing.T) {
	_, err := newTestRunner(newStubCompanies(), newFakeResults(), scrapers.Sources{}).Run(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestRun_RegisterFailureAborts(t *testing.T) {
	companies := newStubCompanies()
	companies.registerErr = store.ErrUnavailable
	results := newFakeResults()
	sources, news, _ := testSources()

	_, err := newTestRunner(companies, results, sources).Run(context.Background(), "Acme Corp", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Zero(t, news.gotLimit)
}

func TestRun_WriteFailuresReported(t *testing.T) {
	companies := newStubCompanies()
	results := newFakeResults()
	results.db.SetUnavailable(true)
	sources, _, _ := testSources()

	report, err := newTestRunner(companies, results, sources).Run(context.Background(), "Acme Corp", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	require.NotNil(t, report)
	assert.Equal(t, 3, report.Texts)
}

func TestMentionText(t *testing.T) {
	assert.Equal(t, "Headline", mentionText(bson.M{"title": " Headline ", "text": "body"}, sourcetype.News))
	assert.Equal(t, "body", mentionText(bson.M{"title": "", "text": "body"}, sourcetype.News))
	assert.Equal(t, "body", mentionText(bson.M{"title": "Headline", "text": "body"}, sourcetype.Reddit))
	assert.Equal(t, "desc", mentionText(bson.M{"description": "desc"}, sourcetype.Twitter))
	assert.Equal(t, "", mentionText(bson.M{"text": "   "}, sourcetype.Reddit))
}

// ────────────────────────────────────────────────
// Executor
// ────────────────────────────────────────────────

func TestExecute_CompletesTask(t *testing.T) {
	tasks := newFakeTasks()
	companies := newStubCompanies()
	analyzer := &stubAnalyzer{}
	task := &model.AnalysisTask{TaskID: "t-1", CompanyID: "acme_corp", CompanyName: "Acme Corp", Status: model.TaskPending}
	require.NoError(t, tasks.Create(context.Background(), task))

	err := NewExecutor(analyzer, tasks, companies, logger.Nop()).Execute(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme Corp"}, analyzer.calls)
	assert.Equal(t, "complete", tasks.status("t-1"))
	assert.Equal(t, []string{"acme_corp"}, companies.recorded)
}

func TestExecute_FailedRunMarksTaskFailed(t *testing.T) {
	tasks := newFakeTasks()
	companies := newStubCompanies()
	analyzer := &stubAnalyzer{err: errors.New("boom")}
	task := &model.AnalysisTask{TaskID: "t-2", CompanyID: "acme_corp", CompanyName: "Acme Corp", Status: model.TaskPending}
	require.NoError(t, tasks.Create(context.Background(), task))

	err := NewExecutor(analyzer, tasks, companies, logger.Nop()).Execute(context.Background(), task)
	require.Error(t, err)

	assert.Equal(t, "failed", tasks.status("t-2"))
	latest, err := tasks.Latest(context.Background(), "acme_corp")
	require.NoError(t, err)
	assert.Equal(t, "boom", latest.Error)
	assert.Empty(t, companies.recorded)
}

func TestExecute_UntrackedTaskStillRuns(t *testing.T) {
	tasks := newFakeTasks()
	analyzer := &stubAnalyzer{}
	task := &model.AnalysisTask{TaskID: "missing", CompanyID: "acme_corp", CompanyName: "Acme Corp"}

	err := NewExecutor(analyzer, tasks, newStubCompanies(), logger.Nop()).Execute(context.Background(), task)
	require.NoError(t, err)
	assert.Len(t, analyzer.calls, 1)
}

// ────────────────────────────────────────────────
// Task service
// ────────────────────────────────────────────────

func TestSubmit_DispatchesPendingTask(t *testing.T) {
	tasks := newFakeTasks()
	dispatcher := &stubDispatcher{}
	svc := NewTaskService(tasks, dispatcher, logger.Nop())

	task, err := svc.Submit(context.Background(), &model.AnalyzeRequest{CompanyName: " Tesla  Inc ", Keywords: "tesla, elon musk,,tesla"})
	require.NoError(t, err)

	assert.Equal(t, "tesla_inc", task.CompanyID)
	assert.Equal(t, "Tesla Inc", task.CompanyName)
	assert.Equal(t, []string{"tesla", "elon musk"}, task.Keywords)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Len(t, task.TaskID, 36)

	require.Len(t, dispatcher.tasks, 1)
	assert.Same(t, task, dispatcher.tasks[0])
	assert.Equal(t, "pending", tasks.status(task.TaskID))
	assert.Equal(t, model.TaskPending, svc.Status(context.Background(), "tesla_inc"))
}

func TestSubmit_MissingName(t *testing.T) {
	dispatcher := &stubDispatcher{}
	svc := NewTaskService(newFakeTasks(), dispatcher, logger.Nop())

	for _, name := range []string{"", "   "} {
		_, err := svc.Submit(context.Background(), &model.AnalyzeRequest{CompanyName: name})
		require.Error(t, err)
		appErr := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
		assert.Equal(t, "Company name is required.", appErr.Message)
	}
	assert.Empty(t, dispatcher.tasks)
}

func TestSubmit_NameTooLong(t *testing.T) {
	name := make([]byte, 201)
	for i := range name {
		name[i] = 'a'
	}
	_, err := NewTaskService(newFakeTasks(), &stubDispatcher{}, logger.Nop()).
		Submit(context.Background(), &model.AnalyzeRequest{CompanyName: string(name)})
	require.Error(t, err)
	assert.Equal(t, 422, apperrors.AsAppError(err).StatusCode())
}

func TestSubmit_StoreDownStillDispatches(t *testing.T) {
	tasks := newFakeTasks()
	tasks.db.SetUnavailable(true)
	dispatcher := &stubDispatcher{}

	_, err := NewTaskService(tasks, dispatcher, logger.Nop()).
		Submit(context.Background(), &model.AnalyzeRequest{CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Len(t, dispatcher.tasks, 1)
}

func TestSubmit_DispatchFailure(t *testing.T) {
	_, err := NewTaskService(newFakeTasks(), &stubDispatcher{err: errors.New("broker down")}, logger.Nop()).
		Submit(context.Background(), &model.AnalyzeRequest{CompanyName: "Acme"})
	require.Error(t, err)
	assert.Equal(t, 503, apperrors.AsAppError(err).StatusCode())
}

func TestStatus(t *testing.T) {
	tasks := newFakeTasks()
	svc := NewTaskService(tasks, &stubDispatcher{}, logger.Nop())
	ctx := context.Background()

	assert.Equal(t, model.TaskPending, svc.Status(ctx, "acme_corp"))
	assert.Equal(t, model.TaskPending, svc.Status(ctx, " "))

	tasks.db.Insert(model.CollectionSentiments, bson.M{"company_id": "legacy_co", "date": "2025-01-01"})
	assert.Equal(t, model.TaskComplete, svc.Status(ctx, "legacy_co"))

	older := &model.AnalysisTask{TaskID: "a", CompanyID: "acme_corp", Status: model.TaskComplete, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	newer := &model.AnalysisTask{TaskID: "b", CompanyID: "acme_corp", Status: model.TaskRunning, CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, tasks.Create(ctx, older))
	require.NoError(t, tasks.Create(ctx, newer))
	assert.Equal(t, model.TaskRunning, svc.Status(ctx, "acme_corp"))

	tasks.db.SetUnavailable(true)
	assert.Equal(t, model.TaskPending, svc.Status(ctx, "acme_corp"))
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{}, SplitKeywords(""))
	assert.Equal(t, []string{"a b", "c"}, SplitKeywords(" a   b , c ,, a b"))
}
