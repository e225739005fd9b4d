package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brandpulse/internal/analysis/processor"
	"brandpulse/internal/analysis/repository"
	companiesservice "brandpulse/internal/companies/service"
	"brandpulse/internal/scrapers"
	apperrors "brandpulse/pkg/errors"
	"brandpulse/pkg/fields"
	"brandpulse/pkg/identity"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"
	"brandpulse/pkg/sourcetype"

	"go.mongodb.org/mongo-driver/bson"
)

// RunReport summarizes what one analysis run wrote.
type RunReport struct {
	CompanyID    string
	ProfileSaved bool
	// Mentions counts stored documents per source category.
	Mentions  map[string]int
	Texts     int
	Keywords  int
	Themes    int
	Sentiment model.SentimentCounts
}

// Runner performs one scrape, extract and classify pass for a company.
type Runner struct {
	companies  companiesservice.CompanyService
	results    repository.ResultRepository
	sources    scrapers.Sources
	extractor  processor.Extractor
	classifier processor.Classifier
	log        *logger.Logger
	now        func() time.Time
}

func NewRunner(
	companies companiesservice.CompanyService,
	results repository.ResultRepository,
	sources scrapers.Sources,
	extractor processor.Extractor,
	classifier processor.Classifier,
	log *logger.Logger,
) *Runner {
	if extractor == nil {
		extractor = processor.NewFrequencyExtractor()
	}
	if classifier == nil {
		classifier = processor.NewLexiconClassifier()
	}
	return &Runner{
		companies:  companies,
		results:    results,
		sources:    sources,
		extractor:  extractor,
		classifier: classifier,
		log:        log,
		now:        time.Now,
	}
}

// Run keeps going past individual write failures and reports them joined.
// Only a failure to register the company aborts the run.
func (r *Runner) Run(ctx context.Context, name string, keywords []string) (*RunReport, error) {
	name = sanitizer.SanitizeName(name)
	companyID := identity.Canonical(name)
	if companyID == "" {
		return nil, apperrors.InvalidInput("Company name is required.")
	}
	keywords = sanitizer.SanitizeSlice(keywords, sanitizer.TrimAndNormalize)

	log := r.log.With("company_id", companyID)
	log.Info("Starting analysis", "company_name", name, "keywords", keywords)

	if err := r.companies.Register(ctx, companyID, name, keywords); err != nil {
		return nil, fmt.Errorf("failed to register company %s: %w", companyID, err)
	}

	if err := r.results.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to ensure indexes", "error", err)
	}

	report := &RunReport{CompanyID: companyID, Mentions: make(map[string]int)}
	var errs []error

	if r.sources.Profile != nil {
		if profile, ok := r.sources.Profile.Profile(ctx, name); ok {
			profile.CompanyID = companyID
			if err := r.companies.SaveProfile(ctx, profile); err != nil {
				log.Warn("Failed to save company profile", "error", err)
				errs = append(errs, err)
			} else {
				report.ProfileSaved = true
			}
		}
	}

	var texts []string
	for _, src := range r.sources.Mentions {
		category := src.Category()
		docs := src.Fetch(ctx, name, keywords, r.sources.Limit(category))
		if len(docs) == 0 {
			log.Debug("No mentions found", "source", category.String())
			continue
		}

		for _, doc := range docs {
			doc["company_id"] = companyID
			doc["source"] = category.String()
			if text := mentionText(doc, category); text != "" {
				texts = append(texts, text)
			}
		}

		stored, err := r.results.InsertMentions(ctx, docs)
		if err != nil {
			log.Warn("Failed to store mentions", "source", category.String(), "error", err)
			errs = append(errs, err)
		}
		report.Mentions[category.String()] = stored
	}
	report.Texts = len(texts)

	if len(texts) == 0 {
		log.Info("No text collected, skipping aggregates")
		return report, errors.Join(errs...)
	}

	today := r.now().UTC().Format(model.DateLayout)
	keywordTerms, themeTerms := r.extractor.Extract(texts)

	if len(keywordTerms) > 0 {
		records := make([]model.KeywordRecord, len(keywordTerms))
		for i, t := range keywordTerms {
			records[i] = model.KeywordRecord{CompanyID: companyID, Date: today, Keyword: t.Text, Count: t.Count}
		}
		if err := r.results.InsertKeywords(ctx, records); err != nil {
			log.Warn("Failed to store keywords", "error", err)
			errs = append(errs, err)
		} else {
			report.Keywords = len(records)
		}
	}

	if len(themeTerms) > 0 {
		records := make([]model.ThemeRecord, len(themeTerms))
		for i, t := range themeTerms {
			records[i] = model.ThemeRecord{CompanyID: companyID, Date: today, Theme: t.Text, Count: t.Count}
		}
		if err := r.results.InsertThemes(ctx, records); err != nil {
			log.Warn("Failed to store themes", "error", err)
			errs = append(errs, err)
		} else {
			report.Themes = len(records)
		}
	}

	report.Sentiment = processor.Tally(r.classifier, texts)
	snapshot := model.SentimentSnapshot{CompanyID: companyID, Date: today, SentimentCounts: report.Sentiment}
	if err := r.results.InsertSentiment(ctx, snapshot); err != nil {
		log.Warn("Failed to store sentiment snapshot", "error", err)
		errs = append(errs, err)
	}

	log.Info("Analysis finished",
		"texts", report.Texts,
		"keywords", report.Keywords,
		"themes", report.Themes,
		"positive", report.Sentiment.Positive,
		"neutral", report.Sentiment.Neutral,
		"negative", report.Sentiment.Negative,
	)
	return report, errors.Join(errs...)
}

// mentionText picks the text analyzed for one mention: headlines for news,
// body text elsewhere.
func mentionText(doc bson.M, category sourcetype.Category) string {
	var text string
	if category == sourcetype.News {
		text, _ = doc["title"].(string)
	}
	if strings.TrimSpace(text) == "" {
		text, _ = fields.FirstString(doc, fields.Text)
	}
	return strings.TrimSpace(text)
}
