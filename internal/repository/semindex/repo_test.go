package semindex

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
)

type mockSearcher struct {
	result *db.SearchResult
	err    error
	lastQ  *db.KNNQuery
}

func (m *mockSearcher) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastQ = q
	return m.result, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func TestQuery(t *testing.T) {
	store := &mockSearcher{result: &db.SearchResult{
		Total: 2,
		Entries: []db.SearchEntry{
			{Key: DocKey("P1"), Score: 0.92, Fields: map[string]string{"product_id": "P1"}},
			{Key: DocKey("P2"), Score: 0.81, Fields: map[string]string{"product_id": "P2"}},
		},
	}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	repo := New(store, embed)

	got, err := repo.Query(context.Background(), "earbuds", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !embed.called {
		t.Error("expected Embed to be called")
	}
	if store.lastQ.K != 5 {
		t.Errorf("K = %d, want 5", store.lastQ.K)
	}
	if store.lastQ.IndexName != IndexName {
		t.Errorf("index = %q", store.lastQ.IndexName)
	}
	if len(got) != 2 || got[0].ID != "P1" || got[1].ID != "P2" {
		t.Fatalf("candidates = %+v", got)
	}
	if got[0].Score != 0.92 {
		t.Errorf("score = %v, want 0.92", got[0].Score)
	}
}

func TestQueryFallsBackToKeySuffix(t *testing.T) {
	store := &mockSearcher{result: &db.SearchResult{
		Total:   1,
		Entries: []db.SearchEntry{{Key: DocKey("P9"), Score: 0.5, Fields: map[string]string{}}},
	}}
	repo := New(store, &mockEmbedder{vec: []float32{0.1}})

	got, err := repo.Query(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "P9" {
		t.Fatalf("candidates = %+v", got)
	}
}

func TestQueryNonPositiveK(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	repo := New(&mockSearcher{}, embed)

	got, err := repo.Query(context.Background(), "q", 0)
	if err != nil || got != nil {
		t.Fatalf("Query(k=0) = %v, %v; want nil, nil", got, err)
	}
	if embed.called {
		t.Error("Embed should not be called for k <= 0")
	}
}

func TestQueryEmbedError(t *testing.T) {
	repo := New(&mockSearcher{}, &mockEmbedder{err: errors.New("provider down")})
	if _, err := repo.Query(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestQuerySearchError(t *testing.T) {
	store := &mockSearcher{err: errors.New("index gone")}
	repo := New(store, &mockEmbedder{vec: []float32{0.1}})
	if _, err := repo.Query(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error")
	}
}
