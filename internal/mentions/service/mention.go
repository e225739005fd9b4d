package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	mentionserrors "brandpulse/internal/mentions/errors"
	"brandpulse/internal/mentions/repository"
	"brandpulse/pkg/config"
	"brandpulse/pkg/identity"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"
	"brandpulse/pkg/sourcetype"
	"brandpulse/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status tells "confirmed empty" apart from "could not determine".
type Status int

const (
	StatusFound Status = iota
	StatusEmpty
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	default:
		return "unavailable"
	}
}

// Tier names the lookup strategy that produced a result.
type Tier string

const (
	TierNone     Tier = ""
	TierUnified  Tier = "unified"
	TierInferred Tier = "inferred"
	TierLegacy   Tier = "legacy"
	TierAny      Tier = "any"
)

// DefaultScanLimit caps the identity-only scan behind source inference.
const DefaultScanLimit = 2000

const debugSampleSize = 3

type Query struct {
	Identity string
	Category sourcetype.Category
	Limit    int
	// AnySource returns mentions of any source when every source-aware
	// lookup came back empty.
	AnySource bool
}

// Result carries sanitized mentions, newest first. Mentions is nil exactly
// when Status is StatusUnavailable.
type Result struct {
	Status   Status
	Tier     Tier
	Mentions []map[string]any
}

type DebugReport struct {
	CompanyID   string                    `json:"company_id"`
	Variants    []string                  `json:"variants"`
	Collections map[string]map[string]any `json:"collections"`
}

type MentionService interface {
	Fetch(ctx context.Context, q Query) Result
	Debug(ctx context.Context, companyID string) (*DebugReport, error)
}

type mentionService struct {
	repo      repository.MentionRepository
	log       *logger.Logger
	scanLimit int64
}

func NewMentionService(repo repository.MentionRepository, log *logger.Logger) MentionService {
	return &mentionService{
		repo:      repo,
		log:       log,
		scanLimit: DefaultScanLimit,
	}
}

var errUnavailable = errors.New("unavailable")

// Fetch never fails. A failing tier is logged and counts as empty; an
// unreachable store yields StatusUnavailable.
func (s *mentionService) Fetch(ctx context.Context, q Query) Result {
	limit := config.ClampLimit(q.Limit)
	idFilter := identity.Filter(q.Identity)
	log := s.log.With("company_id", q.Identity, "source", q.Category.String())

	tier := TierNone
	docs, err := s.tier(ctx, log, TierUnified, model.CollectionMentions,
		bson.M{"$and": bson.A{idFilter, sourcetype.Filter(q.Category)}}, int64(limit))
	if err != nil {
		return unavailable()
	}
	if len(docs) > 0 {
		tier = TierUnified
	}

	if len(docs) < limit {
		inferred, err := s.inferred(ctx, log, idFilter, q.Category)
		if err != nil && len(docs) == 0 {
			return unavailable()
		}
		if tier == TierNone && len(inferred) > 0 {
			tier = TierInferred
		}
		docs = mergeNewest(docs, inferred)
	}

	if len(docs) == 0 {
		docs, err = s.tier(ctx, log, TierLegacy, q.Category.LegacyCollection(), idFilter, int64(limit))
		if err != nil {
			return unavailable()
		}
		if len(docs) > 0 {
			tier = TierLegacy
		}
	}

	if len(docs) == 0 && q.AnySource {
		docs, err = s.tier(ctx, log, TierAny, model.CollectionMentions, idFilter, int64(limit))
		if err != nil {
			return unavailable()
		}
		if len(docs) > 0 {
			tier = TierAny
		}
	}

	if len(docs) == 0 {
		log.Debug("No mentions found")
		return Result{Status: StatusEmpty, Mentions: []map[string]any{}}
	}

	if len(docs) > limit {
		docs = docs[:limit]
	}
	for _, d := range docs {
		sanitizer.StripInternalID(d)
	}

	log.Debug("Mentions resolved", "tier", string(tier), "count", len(docs))
	return Result{Status: StatusFound, Tier: tier, Mentions: sanitizer.Documents(docs)}
}

func unavailable() Result {
	return Result{Status: StatusUnavailable}
}

// tier runs one lookup. Only an unreachable store is reported as an error;
// any other failure is logged and treated as no match.
func (s *mentionService) tier(ctx context.Context, log *logger.Logger, tier Tier, collection string, filter bson.M, limit int64) ([]bson.M, error) {
	docs, err := s.repo.Find(ctx, collection, filter, limit)
	if err == nil {
		return docs, nil
	}
	if errors.Is(err, store.ErrUnavailable) {
		log.Warn("Document store unavailable", "tier", string(tier), "error", err)
		return nil, errUnavailable
	}
	log.Warn("Mention lookup failed, falling back", "tier", string(tier), "collection", collection, "error", err)
	return nil, nil
}

func (s *mentionService) inferred(ctx context.Context, log *logger.Logger, idFilter bson.M, c sourcetype.Category) ([]bson.M, error) {
	docs, err := s.tier(ctx, log, TierInferred, model.CollectionMentions, idFilter, s.scanLimit)
	if err != nil {
		return nil, err
	}

	kept := docs[:0]
	for _, d := range docs {
		if sourcetype.Matches(d, c) {
			kept = append(kept, d)
		}
	}
	return kept, nil
}

// mergeNewest unions two newest-first lists, dropping documents whose primary
// key was already seen.
func mergeNewest(first, second []bson.M) []bson.M {
	if len(second) == 0 {
		return first
	}

	seen := make(map[string]bool, len(first)+len(second))
	out := make([]bson.M, 0, len(first)+len(second))
	for _, list := range [][]bson.M{first, second} {
		for _, d := range list {
			if id, ok := d[sanitizer.InternalIDField]; ok && id != nil {
				key := fmt.Sprintf("%T:%v", id, id)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i][sanitizer.InternalIDField], out[j][sanitizer.InternalIDField])
	})
	return out
}

// newer orders ObjectIDs by creation. Keys of other types keep their order.
func newer(a, b any) bool {
	ao, aok := a.(primitive.ObjectID)
	bo, bok := b.(primitive.ObjectID)
	return aok && bok && bytes.Compare(ao[:], bo[:]) > 0
}

func (s *mentionService) Debug(ctx context.Context, companyID string) (*DebugReport, error) {
	if !s.repo.Available(ctx) {
		return nil, mentionserrors.ErrStoreDisabled
	}

	filter := identity.Filter(companyID)
	report := &DebugReport{
		CompanyID:   companyID,
		Variants:    identity.Variants(companyID),
		Collections: make(map[string]map[string]any),
	}

	for _, name := range model.MentionCollections() {
		count, err := s.repo.Count(ctx, name, filter)
		if err != nil {
			report.Collections[name] = map[string]any{"error": err.Error()}
			continue
		}

		docs, err := s.repo.Find(ctx, name, filter, debugSampleSize)
		if err != nil {
			report.Collections[name] = map[string]any{"error": err.Error()}
			continue
		}
		for _, d := range docs {
			sanitizer.StripInternalID(d)
		}

		report.Collections[name] = map[string]any{
			"count":  count,
			"sample": sanitizer.Documents(docs),
		}
	}

	return report, nil
}
