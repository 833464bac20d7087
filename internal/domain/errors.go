package domain

import "errors"

var (
	// ErrProductNotFound signals a product id absent from the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrRetrievalFailed signals a semantic index query failure.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidQuantity signals a cart quantity outside the allowed range.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
