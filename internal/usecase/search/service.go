// Package search implements the hybrid multi-stage retrieval pipeline:
// semantic candidates, substring matching, fuzzy fallback, filters, and the
// suggestion fallback.
package search

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/match"
	"github.com/kailas-cloud/shopsense/internal/metrics"
)

// Catalog provides read-only product access.
type Catalog interface {
	All() []domain.Product
	Get(id string) (domain.Product, bool)
}

// Index is the semantic nearest-neighbor retrieval contract. Results are
// ordered best first; tie-breaking between equal scores is not guaranteed,
// so the pipeline imposes its own ordering where determinism matters.
type Index interface {
	Query(ctx context.Context, text string, k int) ([]domain.Candidate, error)
}

// Scorer computes fuzzy similarity between a query and candidate text
// in [0,100].
type Scorer interface {
	Score(query, text string) int
}

// Params are the recognized search options. Nil price bounds mean
// unbounded; an empty category means no category filter.
type Params struct {
	Query    string
	TopK     int
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// Service runs hybrid product search. Stateless across requests; safe for
// concurrent use.
type Service struct {
	catalog Catalog
	index   Index
	scorer  Scorer
	logger  *zap.Logger

	overfetchFactor int
	overfetchFloor  int
}

// New creates a search service.
func New(catalog Catalog, index Index, scorer Scorer, logger *zap.Logger) *Service {
	return &Service{
		catalog:         catalog,
		index:           index,
		scorer:          scorer,
		logger:          logger,
		overfetchFactor: 3,
		overfetchFloor:  10,
	}
}

// WithOverfetch tunes the semantic over-fetch headroom: the index is asked
// for max(topK*factor, floor) candidates so dedup and filtering have room
// to work before truncation.
func (s *Service) WithOverfetch(factor, floor int) *Service {
	if factor > 0 {
		s.overfetchFactor = factor
	}
	if floor > 0 {
		s.overfetchFloor = floor
	}
	return s
}

// Search runs the staged pipeline. It is total: every input yields a
// well-formed result, and a semantic index failure degrades to the lexical
// stages instead of failing the request.
func (s *Service) Search(ctx context.Context, p Params) domain.SearchResult {
	res := domain.SearchResult{Products: []domain.Product{}, Suggestions: []string{}}
	if p.TopK <= 0 {
		metrics.SearchesTotal.WithLabelValues("empty").Inc()
		return res
	}

	k := p.TopK * s.overfetchFactor
	if k < s.overfetchFloor {
		k = s.overfetchFloor
	}

	candidates, err := s.index.Query(ctx, p.Query, k)
	if err != nil {
		s.logger.Warn("semantic retrieval failed, continuing with lexical stages",
			zap.String("query", p.Query), zap.Error(err))
		metrics.SearchesTotal.WithLabelValues("degraded").Inc()
		res.Degraded = true
		candidates = nil
	}

	seen := make(map[string]bool)
	var picked []domain.Product

	// Substring stage: semantic candidates in index order, name containment.
	for _, c := range candidates {
		prod, ok := s.catalog.Get(c.ID)
		if !ok || seen[prod.ID] {
			continue
		}
		if match.ContainsFold(prod.Name, p.Query) {
			seen[prod.ID] = true
			picked = append(picked, prod)
			metrics.SearchStageHits.WithLabelValues("substring").Inc()
		}
	}

	// Fuzzy fallback: rest of the catalog, descending score, catalog order
	// breaking ties.
	if len(picked) < p.TopK {
		picked = s.fuzzyFill(p, seen, picked)
	}

	filtered := make([]domain.Product, 0, len(picked))
	for _, prod := range picked {
		if matchesFilters(prod, p) {
			filtered = append(filtered, prod)
		}
	}

	if len(filtered) == 0 {
		res.Suggestions = s.suggest(p.Query)
		if len(res.Suggestions) > 0 {
			metrics.SearchesTotal.WithLabelValues("suggestions").Inc()
		} else {
			metrics.SearchesTotal.WithLabelValues("empty").Inc()
		}
		return res
	}

	if len(filtered) > p.TopK {
		filtered = filtered[:p.TopK]
	}
	res.Products = filtered
	metrics.SearchesTotal.WithLabelValues("results").Inc()
	return res
}

type scoredProduct struct {
	prod  domain.Product
	score int
}

func (s *Service) fuzzyFill(p Params, seen map[string]bool, picked []domain.Product) []domain.Product {
	var pool []scoredProduct
	for _, prod := range s.catalog.All() {
		if seen[prod.ID] {
			continue
		}
		sc := s.scorer.Score(p.Query, prod.MatchText())
		if sc >= match.ResultThreshold {
			pool = append(pool, scoredProduct{prod: prod, score: sc})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	for _, e := range pool {
		if len(picked) >= p.TopK {
			break
		}
		seen[e.prod.ID] = true
		picked = append(picked, e.prod)
		metrics.SearchStageHits.WithLabelValues("fuzzy").Inc()
	}
	return picked
}

// suggest scores the query against all product names and returns up to
// three advisory names. Suggestions bypass category/price filters.
func (s *Service) suggest(query string) []string {
	type scoredName struct {
		name  string
		score int
	}

	var pool []scoredName
	seen := make(map[string]bool)
	for _, prod := range s.catalog.All() {
		if prod.Name == "" || seen[prod.Name] {
			continue
		}
		sc := s.scorer.Score(query, prod.Name)
		if sc >= match.SuggestionThreshold {
			seen[prod.Name] = true
			pool = append(pool, scoredName{name: prod.Name, score: sc})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	out := make([]string, 0, match.MaxSuggestions)
	for _, e := range pool {
		if len(out) >= match.MaxSuggestions {
			break
		}
		out = append(out, e.name)
	}
	return out
}

// matchesFilters applies the category and price criteria. A product without
// a category fails a requested category filter; an absent or unparsable
// price counts as 0.
func matchesFilters(prod domain.Product, p Params) bool {
	if p.Category != "" && !strings.EqualFold(prod.Category, p.Category) {
		return false
	}
	price := prod.Price.Value()
	if p.MinPrice != nil && price < *p.MinPrice {
		return false
	}
	if p.MaxPrice != nil && price > *p.MaxPrice {
		return false
	}
	return true
}
