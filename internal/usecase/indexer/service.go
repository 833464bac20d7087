// Package indexer builds the product vector index at startup: it ensures
// the FT index exists and ingests catalog documents with their embeddings.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/repository/semindex"
)

// Store is the storage surface the indexer needs: index lifecycle plus
// pipelined hash writes.
type Store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Options tunes index construction.
type Options struct {
	// Rebuild drops an existing index and re-ingests every document.
	Rebuild bool
	// BatchSize bounds how many documents are embedded and written per
	// round trip.
	BatchSize int
	// Dimensions fixes the vector dimensionality. Zero means infer from
	// the first embedding.
	Dimensions int
	// HNSW construction parameters.
	HNSWM           int
	HNSWEFConstruct int
}

// Service ingests the catalog into the vector index. Run once at startup;
// a failure here means search cannot work, so callers treat it as fatal.
type Service struct {
	store  Store
	embed  domain.Embedder
	logger *zap.Logger
	opts   Options
}

// New creates an indexer.
func New(store Store, embed domain.Embedder, logger *zap.Logger, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	return &Service{store: store, embed: embed, logger: logger, opts: opts}
}

// Run ensures the index exists and ingests products. When the index is
// already present and Rebuild is off, documents that already have a hash
// are skipped so restarts do not re-embed the whole catalog.
func (s *Service) Run(ctx context.Context, products []domain.Product) error {
	start := time.Now()

	exists, err := s.store.IndexExists(ctx, semindex.IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}

	if exists && s.opts.Rebuild {
		if err := s.store.DropIndex(ctx, semindex.IndexName); err != nil {
			return fmt.Errorf("drop index: %w", err)
		}
		exists = false
		s.logger.Info("dropped existing index for rebuild", zap.String("index", semindex.IndexName))
	}

	skipExisting := exists && !s.opts.Rebuild

	dim := s.opts.Dimensions
	ingested := 0
	batch := make([]db.HashSetItem, 0, s.opts.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
		ingested += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, p := range products {
		if skipExisting {
			ok, err := s.store.Exists(ctx, semindex.DocKey(p.ID))
			if err != nil {
				return fmt.Errorf("check document %s: %w", p.ID, err)
			}
			if ok {
				continue
			}
		}

		res, err := s.embed.Embed(ctx, p.DocText())
		if err != nil {
			return fmt.Errorf("embed product %s: %w", p.ID, err)
		}
		if dim == 0 {
			dim = len(res.Embedding)
		}
		if len(res.Embedding) != dim {
			return fmt.Errorf("embed product %s: got %d dimensions, want %d", p.ID, len(res.Embedding), dim)
		}

		batch = append(batch, db.HashSetItem{
			Key: semindex.DocKey(p.ID),
			Fields: map[string]string{
				"product_id": p.ID,
				"price":      fmt.Sprintf("%g", p.Price.Value()),
				"vector":     db.VectorToBytes(res.Embedding),
			},
		})
		if len(batch) >= s.opts.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if !exists {
		if dim == 0 {
			return fmt.Errorf("create index: no documents to infer vector dimensions from")
		}
		if err := s.store.CreateIndex(ctx, s.indexDefinition(dim)); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	s.logger.Info("index ready",
		zap.String("index", semindex.IndexName),
		zap.Int("products", len(products)),
		zap.Int("ingested", ingested),
		zap.Int("dimensions", dim),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Service) indexDefinition(dim int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     semindex.IndexName,
		Prefixes: []string{semindex.DocKeyPrefix},
		Fields: []db.IndexField{
			{Name: "product_id", Type: db.IndexFieldTag},
			{Name: "price", Type: db.IndexFieldNumeric},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorDim:         dim,
				VectorM:           s.opts.HNSWM,
				VectorEFConstruct: s.opts.HNSWEFConstruct,
			},
		},
	}
}
