package db

import (
	"strings"
	"testing"
)

func TestIndexDefinitionArgs(t *testing.T) {
	def := IndexDefinition{
		Name:     "idx:products",
		Prefixes: []string{"shopsense:product:"},
		Fields: []IndexField{
			{Name: "product_id", Type: IndexFieldTag},
			{Name: "price", Type: IndexFieldNumeric},
			{Name: "vector", Type: IndexFieldVector, VectorDim: 768, VectorM: 32, VectorEFConstruct: 400},
		},
	}

	got := strings.Join(def.Args(), " ")
	want := "idx:products ON HASH PREFIX 1 shopsense:product: SCHEMA " +
		"product_id TAG price NUMERIC " +
		"vector VECTOR HNSW 10 TYPE FLOAT32 DIM 768 DISTANCE_METRIC COSINE M 32 EF_CONSTRUCTION 400"
	if got != want {
		t.Errorf("Args() =\n%s\nwant\n%s", got, want)
	}
}

func TestIndexDefinitionArgsNoHNSWParams(t *testing.T) {
	def := IndexDefinition{
		Name:   "idx",
		Fields: []IndexField{{Name: "vector", Type: IndexFieldVector, VectorDim: 4}},
	}
	got := strings.Join(def.Args(), " ")
	want := "idx ON HASH SCHEMA vector VECTOR HNSW 6 TYPE FLOAT32 DIM 4 DISTANCE_METRIC COSINE"
	if got != want {
		t.Errorf("Args() = %s, want %s", got, want)
	}
}
