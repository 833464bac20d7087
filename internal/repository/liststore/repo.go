// Package liststore persists per-user cart and wishlist lists as JSON
// values in the key-value store.
package liststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
)

const (
	cartKeyPrefix     = domain.KeyPrefix + "cart:"
	wishlistKeyPrefix = domain.KeyPrefix + "wishlist:"
)

// store is the consumer interface for list persistence.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repository reads and writes user cart and wishlist lists. Callers are
// responsible for serializing read-modify-write cycles.
type Repository struct {
	store store
}

// New creates a list store repository.
func New(s store) *Repository {
	return &Repository{store: s}
}

// GetCart returns the user's cart; a missing key is an empty cart.
func (r *Repository) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	data, err := r.store.Get(ctx, cartKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse cart: %w", err)
	}
	return items, nil
}

// PutCart overwrites the user's cart.
func (r *Repository) PutCart(ctx context.Context, userID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.store.Set(ctx, cartKeyPrefix+userID, data); err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

// GetWishlist returns the user's wishlist; a missing key is an empty list.
func (r *Repository) GetWishlist(ctx context.Context, userID string) ([]string, error) {
	data, err := r.store.Get(ctx, wishlistKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse wishlist: %w", err)
	}
	return ids, nil
}

// PutWishlist overwrites the user's wishlist.
func (r *Repository) PutWishlist(ctx context.Context, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}
	if err := r.store.Set(ctx, wishlistKeyPrefix+userID, data); err != nil {
		return fmt.Errorf("put wishlist: %w", err)
	}
	return nil
}
