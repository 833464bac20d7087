package domain

// Candidate pairs a product id with the relevance score one retrieval stage
// assigned it. Candidates live only for the duration of a request.
type Candidate struct {
	ID    string
	Score float64
}

// SearchResult is the outcome of one hybrid search request. Products are
// deduplicated by id with insertion order equal to rank order. Suggestions
// are advisory product names, present only when filtering left no products.
// Degraded marks a semantic retrieval failure the pipeline absorbed.
type SearchResult struct {
	Products    []Product `json:"products"`
	Suggestions []string  `json:"suggestions"`
	Degraded    bool      `json:"degraded,omitempty"`
}

// CartItem is one cart line: a product reference with a quantity.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
