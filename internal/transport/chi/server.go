// Package chi exposes the HTTP API. Responses use a uniform envelope of
// status, message, and data.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/usecase/cart"
	healthuc "github.com/kailas-cloud/shopsense/internal/usecase/health"
	"github.com/kailas-cloud/shopsense/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/shopsense/internal/usecase/search"
	"github.com/kailas-cloud/shopsense/internal/version"
)

// Catalog provides product reads for the catalog endpoints.
type Catalog interface {
	All() []domain.Product
	Get(id string) (domain.Product, bool)
}

// Server holds the API handlers.
type Server struct {
	catalog     Catalog
	search      *searchuc.Service
	recommend   *recommend.Service
	carts       *cart.Service
	health      *healthuc.Service
	logger      *zap.Logger
	defaultTopK int
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog Catalog,
	search *searchuc.Service,
	rec *recommend.Service,
	carts *cart.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	defaultTopK int,
) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Server{
		catalog:     catalog,
		search:      search,
		recommend:   rec,
		carts:       carts,
		health:      health,
		logger:      logger,
		defaultTopK: defaultTopK,
	}
}

// Register mounts every route on the router.
func (s *Server) Register(r chirouter.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/products", s.handleListProducts)
	r.Get("/products/{productID}", s.handleGetProduct)

	r.Post("/search", s.handleSearch)

	r.Get("/recommendations/{productID}", s.handleRecommend)
	r.Post("/recommendations/query", s.handleRecommendByQuery)

	r.Post("/cart/add", s.handleCartAdd)
	r.Post("/cart/remove", s.handleCartRemove)
	r.Post("/cart/update", s.handleCartUpdate)
	r.Post("/cart/clear", s.handleCartClear)
	r.Get("/cart/{userID}", s.handleCartGet)

	r.Post("/wishlist/add", s.handleWishlistAdd)
	r.Post("/wishlist/remove", s.handleWishlistRemove)
	r.Post("/wishlist/move-to-cart", s.handleWishlistMoveToCart)
	r.Get("/wishlist/{userID}", s.handleWishlistGet)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "shopsense API", map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())
	if !status.OK() {
		writeEnvelope(w, http.StatusServiceUnavailable, "error", "degraded", status)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", status)
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	products := s.catalog.All()
	writeSuccess(w, http.StatusOK, "ok", map[string]any{
		"count":    len(products),
		"products": products,
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "productID")
	prod, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeSuccess(w, http.StatusOK, "ok", prod)
}

type searchRequest struct {
	Query    string   `json:"query"`
	TopK     *int     `json:"top_k"`
	Category string   `json:"category"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	res := s.search.Search(r.Context(), searchuc.Params{
		Query:    req.Query,
		TopK:     topK,
		Category: req.Category,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
	})

	writeSuccess(w, http.StatusOK, "ok", map[string]any{
		"query":       req.Query,
		"results":     res.Products,
		"suggestions": res.Suggestions,
		"degraded":    res.Degraded,
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "productID")
	topK := queryInt(r, "top_k", s.defaultTopK)

	recs, err := s.recommend.Recommend(r.Context(), id, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", map[string]any{
		"product_id":      id,
		"recommendations": recs,
	})
}

type recommendQueryRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k"`
}

func (s *Server) handleRecommendByQuery(w http.ResponseWriter, r *http.Request) {
	var req recommendQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	recs, err := s.recommend.RecommendByQuery(r.Context(), req.Query, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", map[string]any{
		"query":           req.Query,
		"recommendations": recs,
	})
}

type cartRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) decodeCartRequest(w http.ResponseWriter, r *http.Request, needProduct bool) (cartRequest, bool) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return req, false
	}
	if needProduct && req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return req, false
	}
	return req, true
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, true)
	if !ok {
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	items, err := s.carts.AddToCart(r.Context(), req.UserID, req.ProductID, quantity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "added to cart", map[string]any{"cart": items})
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, true)
	if !ok {
		return
	}

	items, err := s.carts.RemoveFromCart(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "removed from cart", map[string]any{"cart": items})
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, true)
	if !ok {
		return
	}

	items, err := s.carts.UpdateQuantity(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "cart updated", map[string]any{"cart": items})
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, false)
	if !ok {
		return
	}

	if err := s.carts.ClearCart(r.Context(), req.UserID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "cart cleared", map[string]any{"cart": []domain.CartItem{}})
}

func (s *Server) handleCartGet(w http.ResponseWriter, r *http.Request) {
	userID := chirouter.URLParam(r, "userID")
	items, err := s.carts.GetCart(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	writeSuccess(w, http.StatusOK, "ok", map[string]any{"cart": items})
}

func (s *Server) handleWishlistAdd(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, true)
	if !ok {
		return
	}

	ids, err := s.carts.AddToWishlist(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "added to wishlist", map[string]any{"wishlist": ids})
}

func (s *Server) handleWishlistRemove(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, true)
	if !ok {
		return
	}

	ids, err := s.carts.RemoveFromWishlist(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "removed from wishlist", map[string]any{"wishlist": ids})
}

func (s *Server) handleWishlistMoveToCart(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCartRequest(w, r, true)
	if !ok {
		return
	}

	items, err := s.carts.MoveToCart(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "moved to cart", map[string]any{"cart": items})
}

func (s *Server) handleWishlistGet(w http.ResponseWriter, r *http.Request) {
	userID := chirouter.URLParam(r, "userID")
	ids, err := s.carts.GetWishlist(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeSuccess(w, http.StatusOK, "ok", map[string]any{"wishlist": ids})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// envelope is the uniform response body.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, kind, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: kind, Message: message, Data: data})
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, "success", message, data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, "error", message, nil)
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrInvalidQuantity,
		domain.ErrRetrievalFailed,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, msg)
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, msg)
	case errors.Is(err, domain.ErrRetrievalFailed):
		writeError(w, http.StatusBadGateway, msg)
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
