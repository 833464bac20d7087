// Package cart manages per-user shopping carts and wishlists on top of the
// list store.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/shopsense/internal/domain"
)

// Catalog provides product existence checks.
type Catalog interface {
	Get(id string) (domain.Product, bool)
}

// Lists is the persistence contract for cart and wishlist state.
type Lists interface {
	GetCart(ctx context.Context, userID string) ([]domain.CartItem, error)
	PutCart(ctx context.Context, userID string, items []domain.CartItem) error
	GetWishlist(ctx context.Context, userID string) ([]string, error)
	PutWishlist(ctx context.Context, userID string, ids []string) error
}

// Service applies cart and wishlist mutations. Read-modify-write cycles on
// the list store are serialized per concern with a mutex, so concurrent
// requests cannot lose updates within this process.
type Service struct {
	catalog Catalog
	lists   Lists

	cartMu sync.Mutex
	wishMu sync.Mutex
}

// New creates a cart service.
func New(catalog Catalog, lists Lists) *Service {
	return &Service{catalog: catalog, lists: lists}
}

// AddToCart adds quantity units of a product to the user's cart, merging
// with an existing line for the same product.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, quantity int) ([]domain.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, domain.ErrInvalidQuantity)
	}
	if _, ok := s.catalog.Get(productID); !ok {
		return nil, fmt.Errorf("add to cart %q: %w", productID, domain.ErrProductNotFound)
	}

	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	items, err := s.lists.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.lists.PutCart(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromCart deletes the product's line from the cart. Removing a
// product that is not in the cart is a no-op.
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID string) ([]domain.CartItem, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	items, err := s.lists.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}

	if err := s.lists.PutCart(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// UpdateQuantity sets the absolute quantity for a product line. Zero
// removes the line; a positive quantity for a product not yet in the cart
// adds it.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]domain.CartItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, domain.ErrInvalidQuantity)
	}
	if quantity == 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}
	if _, ok := s.catalog.Get(productID); !ok {
		return nil, fmt.Errorf("update cart %q: %w", productID, domain.ErrProductNotFound)
	}

	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	items, err := s.lists.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.lists.PutCart(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCart returns the user's cart.
func (s *Service) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.lists.GetCart(ctx, userID)
}

// ClearCart empties the user's cart.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()
	return s.lists.PutCart(ctx, userID, nil)
}

// AddToWishlist appends the product to the user's wishlist if it is not
// already there.
func (s *Service) AddToWishlist(ctx context.Context, userID, productID string) ([]string, error) {
	if _, ok := s.catalog.Get(productID); !ok {
		return nil, fmt.Errorf("add to wishlist %q: %w", productID, domain.ErrProductNotFound)
	}

	s.wishMu.Lock()
	defer s.wishMu.Unlock()

	ids, err := s.lists.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == productID {
			return ids, nil
		}
	}

	ids = append(ids, productID)
	if err := s.lists.PutWishlist(ctx, userID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// RemoveFromWishlist deletes the product from the wishlist. Absent entries
// are a no-op.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID string) ([]string, error) {
	s.wishMu.Lock()
	defer s.wishMu.Unlock()

	ids, err := s.lists.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := ids[:0]
	for _, id := range ids {
		if id != productID {
			kept = append(kept, id)
		}
	}

	if err := s.lists.PutWishlist(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// GetWishlist returns the user's wishlist.
func (s *Service) GetWishlist(ctx context.Context, userID string) ([]string, error) {
	return s.lists.GetWishlist(ctx, userID)
}

// MoveToCart removes the product from the wishlist and adds one unit of it
// to the cart. The product must currently be on the wishlist.
func (s *Service) MoveToCart(ctx context.Context, userID, productID string) ([]domain.CartItem, error) {
	s.wishMu.Lock()
	ids, err := s.lists.GetWishlist(ctx, userID)
	if err != nil {
		s.wishMu.Unlock()
		return nil, err
	}

	kept := make([]string, 0, len(ids))
	found := false
	for _, id := range ids {
		if id == productID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		s.wishMu.Unlock()
		return nil, fmt.Errorf("move to cart %q: %w", productID, domain.ErrProductNotFound)
	}
	if err := s.lists.PutWishlist(ctx, userID, kept); err != nil {
		s.wishMu.Unlock()
		return nil, err
	}
	s.wishMu.Unlock()

	return s.AddToCart(ctx, userID, productID, 1)
}
