package indexer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/repository/semindex"
)

type fakeStore struct {
	indexExists bool
	docs        map[string]map[string]string

	created *db.IndexDefinition
	dropped bool
	batches int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]map[string]string)}
}

func (s *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	s.created = def
	s.indexExists = true
	return nil
}

func (s *fakeStore) DropIndex(_ context.Context, _ string) error {
	s.dropped = true
	s.indexExists = false
	return nil
}

func (s *fakeStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return s.indexExists, nil
}

func (s *fakeStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	s.batches++
	for _, it := range items {
		s.docs[it.Key] = it.Fields
	}
	return nil
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.docs[key]
	return ok, nil
}

type fakeEmbedder struct {
	dim   int
	err   error
	calls int
}

func (e *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	vec := make([]float32, e.dim)
	vec[0] = float32(e.calls)
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func products(ids ...string) []domain.Product {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Product{ID: id, Name: "Product " + id})
	}
	return out
}

func TestRunCreatesIndexAndIngests(t *testing.T) {
	store := newFakeStore()
	embed := &fakeEmbedder{dim: 4}
	svc := New(store, embed, zap.NewNop(), Options{HNSWM: 16, HNSWEFConstruct: 200})

	if err := svc.Run(context.Background(), products("P1", "P2")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if store.created == nil {
		t.Fatal("index was not created")
	}
	if store.created.Name != semindex.IndexName {
		t.Errorf("index name = %q", store.created.Name)
	}
	vec := store.created.Fields[2]
	if vec.VectorDim != 4 {
		t.Errorf("inferred dim = %d, want 4", vec.VectorDim)
	}
	if vec.VectorM != 16 || vec.VectorEFConstruct != 200 {
		t.Errorf("hnsw params = %d/%d", vec.VectorM, vec.VectorEFConstruct)
	}

	doc, ok := store.docs[semindex.DocKey("P1")]
	if !ok {
		t.Fatal("P1 document missing")
	}
	if doc["product_id"] != "P1" {
		t.Errorf("product_id = %q", doc["product_id"])
	}
	if len(doc["vector"]) != 16 {
		t.Errorf("vector blob = %d bytes, want 16", len(doc["vector"]))
	}
}

func TestRunSkipsExistingDocuments(t *testing.T) {
	store := newFakeStore()
	store.indexExists = true
	store.docs[semindex.DocKey("P1")] = map[string]string{"product_id": "P1"}
	embed := &fakeEmbedder{dim: 2}
	svc := New(store, embed, zap.NewNop(), Options{})

	if err := svc.Run(context.Background(), products("P1", "P2")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if embed.calls != 1 {
		t.Errorf("embedded %d products, want only the missing one", embed.calls)
	}
	if store.created != nil {
		t.Error("existing index should not be recreated")
	}
}

func TestRunRebuildDropsAndReingests(t *testing.T) {
	store := newFakeStore()
	store.indexExists = true
	store.docs[semindex.DocKey("P1")] = map[string]string{"product_id": "P1"}
	embed := &fakeEmbedder{dim: 2}
	svc := New(store, embed, zap.NewNop(), Options{Rebuild: true})

	if err := svc.Run(context.Background(), products("P1", "P2")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !store.dropped {
		t.Error("rebuild should drop the old index")
	}
	if embed.calls != 2 {
		t.Errorf("embedded %d products, want all 2", embed.calls)
	}
	if store.created == nil {
		t.Error("index should be recreated after drop")
	}
}

func TestRunBatchesWrites(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeEmbedder{dim: 2}, zap.NewNop(), Options{BatchSize: 2})

	if err := svc.Run(context.Background(), products("P1", "P2", "P3")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.batches != 2 {
		t.Errorf("batches = %d, want 2 for 3 docs at size 2", store.batches)
	}
	if len(store.docs) != 3 {
		t.Errorf("docs = %d, want 3", len(store.docs))
	}
}

func TestRunEmbedFailureIsFatal(t *testing.T) {
	svc := New(newFakeStore(), &fakeEmbedder{err: errors.New("provider down")}, zap.NewNop(), Options{})
	if err := svc.Run(context.Background(), products("P1")); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunEmptyCatalogWithoutDimensions(t *testing.T) {
	svc := New(newFakeStore(), &fakeEmbedder{dim: 2}, zap.NewNop(), Options{})
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error: nothing to infer vector dimensions from")
	}
}

func TestRunEmptyCatalogWithConfiguredDimensions(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeEmbedder{dim: 2}, zap.NewNop(), Options{Dimensions: 1536})
	if err := svc.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.created == nil || store.created.Fields[2].VectorDim != 1536 {
		t.Fatal("index should be created with the configured dimensionality")
	}
}
