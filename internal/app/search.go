package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"placefinder/internal/domain"
	"placefinder/internal/shared"
)

var ErrEmptyQuery = errors.New("query is required")

// SearchService runs the full lookup pipeline: term expansion, the fixed
// strategy sequence per term, dedup/format, and optional vendor enrichment,
// with a cache-aside layer keyed on the normalized query.
type SearchService struct {
	places   domain.PlacesClient
	cache    domain.Cache
	cacheTTL time.Duration

	minResults int
	detailCap  int
	overrides  []shared.Override

	vendor *VendorDetector // nil when detection is disabled
}

func NewSearchService(p domain.PlacesClient, c domain.Cache, ttl time.Duration, cfg shared.Config, vendor *VendorDetector) *SearchService {
	minResults := cfg.MinResults
	if minResults <= 0 {
		minResults = 3
	}
	detailCap := cfg.DetailFetchCap
	if detailCap <= 0 {
		detailCap = 3
	}
	return &SearchService{
		places:     p,
		cache:      c,
		cacheTTL:   ttl,
		minResults: minResults,
		detailCap:  detailCap,
		overrides:  cfg.Overrides,
		vendor:     vendor,
	}
}

func (s *SearchService) Search(ctx context.Context, query string) ([]domain.FormattedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := "search:" + strings.ToLower(query)
	var cached []domain.FormattedResult
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	terms := ExpandQuery(query)
	log.Debug().Str("query", query).Strs("terms", terms).Msg("expanded search terms")

	raw := s.collect(ctx, query, terms)
	out := FormatResults(raw, s.places.PhotoURL)

	if s.vendor != nil {
		s.vendor.Enrich(ctx, out)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// collect accumulates raw candidates across every term and strategy. It
// never fails: each sub-call error is logged and contributes zero results.
func (s *SearchService) collect(ctx context.Context, query string, terms []string) []domain.RawCandidate {
	var acc []domain.RawCandidate
	for _, term := range terms {
		acc = s.runTerm(ctx, term, acc)
	}
	return s.applyOverrides(ctx, query, terms, acc)
}

// runTerm executes the fixed strategy order for one term:
//  1. text search;
//  2. find-candidates, each resolved to full details (capped);
//  3. a broadened search on the term's first token when the whole-run
//     accumulated count is still under the minimum.
func (s *SearchService) runTerm(ctx context.Context, term string, acc []domain.RawCandidate) []domain.RawCandidate {
	if results, err := s.places.TextSearch(ctx, term); err != nil {
		log.Warn().Err(err).Str("term", term).Msg("text search failed")
	} else {
		acc = append(acc, results...)
	}

	if candidates, err := s.places.FindCandidates(ctx, term); err != nil {
		log.Warn().Err(err).Str("term", term).Msg("find candidates failed")
	} else {
		fetched := 0
		for _, cand := range candidates {
			if fetched >= s.detailCap {
				break
			}
			if cand.PlaceID == "" {
				continue
			}
			fetched++
			detail, err := s.places.FetchDetails(ctx, cand.PlaceID, nil)
			if err != nil {
				log.Warn().Err(err).Str("place_id", cand.PlaceID).Msg("detail fetch failed")
				continue
			}
			acc = append(acc, detail)
		}
	}

	if len(acc) < s.minResults {
		broad := firstToken(term)
		if broad != "" && broad != term {
			if results, err := s.places.TextSearch(ctx, broad); err != nil {
				log.Warn().Err(err).Str("term", broad).Msg("broadened search failed")
			} else {
				acc = append(acc, results...)
			}
		}
	}
	return acc
}

// applyOverrides issues one extra text search per configured override whose
// trigger appears in the query or any expanded term, unless some accumulated
// candidate name already matches the trigger.
func (s *SearchService) applyOverrides(ctx context.Context, query string, terms []string, acc []domain.RawCandidate) []domain.RawCandidate {
	for _, ov := range s.overrides {
		if !triggerMatches(ov.Trigger, query, terms) {
			continue
		}
		if nameMatches(ov.Trigger, acc) {
			continue
		}
		results, err := s.places.TextSearch(ctx, ov.Query)
		if err != nil {
			log.Warn().Err(err).Str("override", ov.Query).Msg("override search failed")
			continue
		}
		acc = append(acc, results...)
	}
	return acc
}

func triggerMatches(trigger, query string, terms []string) bool {
	if containsFold(query, trigger) {
		return true
	}
	for _, t := range terms {
		if containsFold(t, trigger) {
			return true
		}
	}
	return false
}

func nameMatches(trigger string, acc []domain.RawCandidate) bool {
	for _, r := range acc {
		if containsFold(r.Name, trigger) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
