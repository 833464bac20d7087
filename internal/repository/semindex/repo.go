// Package semindex adapts the vector store into the semantic index the
// pipeline consumes: query text in, ordered (product id, score) pairs out.
package semindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
)

const (
	// IndexName is the FT index over product document hashes.
	IndexName = "idx:shopsense:products"
	// DocKeyPrefix namespaces product document hashes.
	DocKeyPrefix = domain.KeyPrefix + "product:"
)

// searcher is the consumer interface for KNN search.
type searcher interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repository runs semantic nearest-neighbor retrieval over the product
// index. Read-only; safe for concurrent use.
type Repository struct {
	store searcher
	embed domain.Embedder
}

// New creates a semantic index repository.
func New(store searcher, embed domain.Embedder) *Repository {
	return &Repository{store: store, embed: embed}
}

// Query embeds text and returns up to k candidates ordered best first.
func (r *Repository) Query(ctx context.Context, text string, k int) ([]domain.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	embResult, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       embResult.Embedding,
		K:            k,
		ReturnFields: []string{"product_id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := e.Fields["product_id"]
		if id == "" {
			id = strings.TrimPrefix(e.Key, DocKeyPrefix)
		}
		if id == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{ID: id, Score: e.Score})
	}
	return candidates, nil
}

// DocKey returns the hash key a product document is stored under.
func DocKey(productID string) string {
	return DocKeyPrefix + productID
}
