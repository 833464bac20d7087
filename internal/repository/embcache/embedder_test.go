package embcache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

type countingEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: e.vec, TotalTokens: 7}, nil
}

func TestEmbedCachesResult(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.25, -1.5, 3}}
	cached := New(inner, newMemStore(), nil, zap.NewNop())
	ctx := context.Background()

	first, err := cached.Embed(ctx, "wireless earbuds")
	if err != nil {
		t.Fatalf("first embed: %v", err)
	}
	if first.TotalTokens != 7 {
		t.Errorf("miss should report provider usage, got %d tokens", first.TotalTokens)
	}

	second, err := cached.Embed(ctx, "wireless earbuds")
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit should consume no tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[1] != -1.5 {
		t.Errorf("cached vector = %v", second.Embedding)
	}
}

func TestEmbedDistinctTextsDistinctKeys(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cached := New(inner, newMemStore(), nil, zap.NewNop())
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Embed(ctx, "two"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
}

func TestEmbedCorruptCacheFallsThrough(t *testing.T) {
	mem := newMemStore()
	inner := &countingEmbedder{vec: []float32{1, 2}}
	cached := New(inner, mem, nil, zap.NewNop())
	ctx := context.Background()

	// Seed a payload that is not a whole number of float32s.
	mem.data[cached.cacheKey("query")] = []byte{1, 2, 3}

	res, err := cached.Embed(ctx, "query")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("vector = %v", res.Embedding)
	}
}

func TestEmbedInnerError(t *testing.T) {
	cached := New(&countingEmbedder{err: errors.New("boom")}, newMemStore(), nil, zap.NewNop())
	if _, err := cached.Embed(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
}

func TestVectorCacheRoundTrip(t *testing.T) {
	vec := []float32{0, -0.5, 123.456}
	back, err := bytesToVector(vectorToCacheBytes(vec))
	if err != nil {
		t.Fatalf("bytesToVector: %v", err)
	}
	if len(back) != len(vec) {
		t.Fatalf("len = %d, want %d", len(back), len(vec))
	}
	for i := range vec {
		if back[i] != vec[i] {
			t.Errorf("vec[%d] = %v, want %v", i, back[i], vec[i])
		}
	}
}
