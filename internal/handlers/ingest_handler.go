package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"florders/internal/service"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	service service.IngestService
}

func NewIngestHandler(service service.IngestService) *IngestHandler {
	return &IngestHandler{service: service}
}

// TriggerIngest запускает синхронизацию с RSS-лентой. Тело опционально и
// может переопределить адрес ленты, категорию и лимит записей.
func (h *IngestHandler) TriggerIngest(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		FeedURL     string `json:"feed_url"`
		Category    *int   `json:"category"`
		Subcategory *int   `json:"subcategory"`
		Limit       *int   `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	inserted, updated, err := h.service.IngestRSS(ctx, service.IngestOptions{
		FeedURL:     req.FeedURL,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Limit:       req.Limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeedInvalid):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to parse RSS feed"})
		case errors.Is(err, service.ErrFeedUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch RSS feed"})
		default:
			log.Printf("RSS ingest failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest RSS feed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"inserted": inserted,
		"updated":  updated,
	})
}
