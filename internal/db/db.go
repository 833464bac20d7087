// Package db defines the storage contracts the service consumes. One Redis
// instance backs the vector index, product documents, the embedding cache,
// and cart/wishlist persistence.
package db

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"
	"time"
)

// Store is the database facade combining all sub-interfaces. Consumers take
// the narrow sub-interface they need.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides KNN search over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery describes a vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is one hit: the document key, its similarity score, and any
// requested fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult holds the total hit count and the returned entries, best
// first.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldTag is a tag field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric
	// IndexFieldVector is a vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// Vector options (HNSW over FLOAT32, cosine distance)
	VectorDim         int
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over hash documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

func (f *IndexField) args() []string {
	out := []string{f.Name}
	switch f.Type {
	case IndexFieldTag:
		out = append(out, "TAG")
	case IndexFieldNumeric:
		out = append(out, "NUMERIC")
	case IndexFieldVector:
		attrs := []string{
			"TYPE", "FLOAT32",
			"DIM", strconv.Itoa(f.VectorDim),
			"DISTANCE_METRIC", "COSINE",
		}
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
		out = append(out, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
		out = append(out, attrs...)
	}
	return out
}

// VectorToBytes encodes a float32 vector as the little-endian blob stored
// in vector hash fields and passed to KNN query params.
func VectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// Args renders the definition into FT.CREATE arguments.
func (d *IndexDefinition) Args() []string {
	args := []string{d.Name, "ON", "HASH"}
	if len(d.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(d.Prefixes)))
		args = append(args, d.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range d.Fields {
		args = append(args, d.Fields[i].args()...)
	}
	return args
}
