package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"product-catalog-browser/internal/catalog"
	"product-catalog-browser/internal/domain"
	"product-catalog-browser/internal/query"
)

// CatalogService is the read side of the catalog used by the transports.
type CatalogService interface {
	Query(ctx context.Context, p domain.QueryParams) (*domain.ListResponse, error)
	Lookup(ctx context.Context, id string) (*domain.Product, error)
	Facets(ctx context.Context) (*domain.Facets, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog CatalogService
	parser  *query.Parser
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(cs CatalogService, parser *query.Parser) *HTTPHandler {
	if parser == nil {
		parser = query.NewParser(domain.MaxLimit)
	}
	return &HTTPHandler{
		catalog: cs,
		parser:  parser,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

// respondWithServiceError maps catalog errors that are not part of the
// normal result set onto a status code.
func respondWithServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		respondWithError(w, http.StatusInternalServerError, message)
	}
}

// --- Product Handlers ---

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := h.parser.Parse(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.catalog.Query(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: ListProducts query failed: %v", err)
		respondWithServiceError(w, err, "Failed to retrieve products")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	// chi routes on RawPath when it is set, leaving the segment escaped.
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(productID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}
		productID = unescaped
	}

	product, err := h.catalog.Lookup(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		log.Printf("ERROR: GetProductByID lookup for ID %q failed: %v", productID, err)
		respondWithServiceError(w, err, "Failed to retrieve product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.catalog.Facets(r.Context())
	if err != nil {
		log.Printf("ERROR: GetFacets failed: %v", err)
		respondWithServiceError(w, err, "Failed to retrieve facets")
		return
	}
	respondWithJSON(w, http.StatusOK, facets)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		log.Printf("ERROR: ListCategories failed: %v", err)
		respondWithServiceError(w, err, "Failed to retrieve categories")
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Items []domain.Category `json:"items"`
	}{Items: categories})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories) // GET /categories

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts) // GET /products
		// Registered before {productId} so "facets" is not treated as an ID
		r.Get("/facets", h.GetFacets)
		r.Get("/{productId}", h.GetProductByID)
	})
}

// RegisterHealthCheck adds a liveness endpoint reporting the catalog size.
func RegisterHealthCheck(r chi.Router, serviceName string, catalogSize func() int) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"serviceName": serviceName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"products":    catalogSize(),
		})
	})
}
