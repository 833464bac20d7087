// Package catalog holds the in-memory product catalog, loaded once at
// startup and read-only afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/shopsense/internal/domain"
)

// Catalog is an immutable, insertion-ordered product collection. Iteration
// order always matches the source file, which keeps every downstream
// tie-break deterministic.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New builds a catalog from decoded records. Records without an identifier
// are excluded; on duplicate ids the first record wins.
func New(products []domain.Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, ok := c.byID[p.ID]; ok {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Load reads a products JSON file into a catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	return New(products), nil
}

// All returns the products in catalog order. Callers must treat the slice
// as read-only.
func (c *Catalog) All() []domain.Product {
	return c.products
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
