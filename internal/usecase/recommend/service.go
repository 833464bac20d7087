// Package recommend produces related-product lists by querying the
// semantic index with a composite query built from a seed product's
// descriptive fields.
package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/metrics"
)

// Catalog provides read-only product access.
type Catalog interface {
	Get(id string) (domain.Product, bool)
}

// Index is the semantic nearest-neighbor retrieval contract.
type Index interface {
	Query(ctx context.Context, text string, k int) ([]domain.Candidate, error)
}

// Service builds recommendations. Unlike search, recommendation has no
// lexical fallback: an index failure fails the request.
type Service struct {
	catalog  Catalog
	index    Index
	logger   *zap.Logger
	headroom int
}

// New creates a recommendation service.
func New(catalog Catalog, index Index, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, index: index, logger: logger, headroom: 1}
}

// WithHeadroom tunes how many extra candidates are requested beyond topK
// to survive self-exclusion and dedup before truncation.
func (s *Service) WithHeadroom(n int) *Service {
	if n > 0 {
		s.headroom = n
	}
	return s
}

// Recommend returns up to topK products related to the seed product,
// never including the seed itself. Returns domain.ErrProductNotFound when
// the seed is not in the catalog.
func (s *Service) Recommend(ctx context.Context, productID string, topK int) ([]domain.Product, error) {
	seed, ok := s.catalog.Get(productID)
	if !ok {
		metrics.RecommendationsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("recommend %q: %w", productID, domain.ErrProductNotFound)
	}

	out, err := s.byQuery(ctx, seed.CompositeQuery(), topK, productID)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

// RecommendByQuery returns up to topK products related to free-form query
// text. No product is excluded.
func (s *Service) RecommendByQuery(ctx context.Context, query string, topK int) ([]domain.Product, error) {
	out, err := s.byQuery(ctx, query, topK, "")
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

func (s *Service) byQuery(ctx context.Context, query string, topK int, excludeID string) ([]domain.Product, error) {
	out := []domain.Product{}
	if topK <= 0 {
		return out, nil
	}

	candidates, err := s.index.Query(ctx, query, topK+s.headroom)
	if err != nil {
		s.logger.Error("recommendation retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
	}

	seen := make(map[string]bool)
	for _, c := range candidates {
		if len(out) >= topK {
			break
		}
		if c.ID == excludeID || seen[c.ID] {
			continue
		}
		prod, ok := s.catalog.Get(c.ID)
		if !ok {
			continue
		}
		seen[c.ID] = true
		out = append(out, prod)
	}
	return out, nil
}
