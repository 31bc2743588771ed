package handlers

import (
	"errors"
	"log"
	"net/http"

	"florders/internal/clients"

	"github.com/gin-gonic/gin"
)

type StagehandHandler struct {
	client clients.StagehandClient
}

func NewStagehandHandler(client clients.StagehandClient) *StagehandHandler {
	return &StagehandHandler{client: client}
}

// ParseSite проксирует запрос на разбор страницы во внешний Stagehand-сервис
// и транслирует его ответ как есть. Ключ site принимается как синоним url.
func (h *StagehandHandler) ParseSite(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		URL  string `json:"url"`
		Site string `json:"site"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	target := req.URL
	if target == "" {
		target = req.Site
	}
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	result, err := h.client.ParseSite(ctx, target)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrStagehandUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Stagehand service unavailable"})
		case errors.Is(err, clients.ErrStagehandBadResponse):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid response from Stagehand service"})
		default:
			log.Printf("Stagehand request for %s failed: %v", target, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse site"})
		}
		return
	}

	if result.StatusCode >= http.StatusBadRequest {
		detail := result.Error
		if detail == "" {
			detail = "Stagehand request failed"
		}
		c.JSON(result.StatusCode, gin.H{"error": detail})
		return
	}
	if !result.Success {
		detail := result.Error
		if detail == "" {
			detail = "Stagehand responded with failure"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": detail})
		return
	}

	c.JSON(http.StatusOK, result.Payload)
}
