package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/precolista/backend/internal/domain"
	"github.com/precolista/backend/internal/infrastructure/sources"
)

// ListCalculator prices a shopping list.
type ListCalculator interface {
	CalculateListPrices(ctx context.Context, cep string, items []domain.ShoppingItemInput) (domain.CalculationResponse, error)
}

// Searcher answers product search terms.
type Searcher interface {
	Search(ctx context.Context, term string) (domain.SearchResponse, error)
}

// Refresher re-fetches cached snapshots.
type Refresher interface {
	RefreshAll(ctx context.Context) (domain.RefreshResult, error)
	LastUpdate() *time.Time
}

// SnapshotCounter exposes the cache size for the status endpoint.
type SnapshotCounter interface {
	Size() int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	list       ListCalculator
	search     Searcher
	refresh    Refresher
	cache      SnapshotCounter
	defaultCEP string
}

// NewHandler creates a new HTTP handler
func NewHandler(list ListCalculator, search Searcher, refresh Refresher, cache SnapshotCounter, defaultCEP string) *Handler {
	return &Handler{
		list:       list,
		search:     search,
		refresh:    refresh,
		cache:      cache,
		defaultCEP: defaultCEP,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "precolista-backend",
		"version": "1.0.0",
	})
}

// calculateRequest is the calculate endpoint body. Items are filtered, not
// validated: invalid entries are dropped by the list service.
type calculateRequest struct {
	CEP   string                     `json:"cep"`
	Items []domain.ShoppingItemInput `json:"items"`
}

// CalculateList prices a shopping list across every source.
func (h *Handler) CalculateList(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cep := req.CEP
	if cep == "" {
		cep = h.defaultCEP
	}

	result, err := h.list.CalculateListPrices(c.Request.Context(), cep, req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to calculate list prices"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Search returns ranked product suggestions for a term.
func (h *Handler) Search(c *gin.Context) {
	term := c.Query("term")

	result, err := h.search.Search(c.Request.Context(), term)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "term query parameter is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Refresh re-fetches every cached snapshot.
func (h *Handler) Refresh(c *gin.Context) {
	result, err := h.refresh.RefreshAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status reports cache freshness and the configured sources.
func (h *Handler) Status(c *gin.Context) {
	var lastUpdate interface{}
	if at := h.refresh.LastUpdate(); at != nil {
		lastUpdate = at.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"lastUpdate":      lastUpdate,
		"cachedSnapshots": h.cache.Size(),
		"sources":         domain.AllSources,
	})
}

// Categories lists each retailer's store sections.
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": sources.Categories})
}
