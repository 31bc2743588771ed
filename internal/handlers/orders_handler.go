package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"florders/internal/repository"
	"florders/internal/service"

	"github.com/gin-gonic/gin"
)

// exportLimit задает потолок строк в выгрузке, пагинация на экспорт не действует.
const exportLimit = 500

type OrdersHandler struct {
	orders service.OrderService
	export service.ExportService
}

func NewOrdersHandler(orders service.OrderService, export service.ExportService) *OrdersHandler {
	return &OrdersHandler{orders: orders, export: export}
}

func (h *OrdersHandler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()

	opts := repository.ListOptions{Limit: 50}
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l >= 1 && l <= 500 {
			opts.Limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			opts.Offset = o
		}
	}
	opts.Query = c.Query("q")
	if hasStr := c.Query("has_attachments"); hasStr != "" {
		if has, err := strconv.ParseBool(hasStr); err == nil {
			opts.HasAttachments = &has
		}
	}

	orders, err := h.orders.List(ctx, opts)
	if err != nil {
		log.Printf("Failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  orders,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

func (h *OrdersHandler) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()

	externalID, err := strconv.ParseInt(c.Param("external_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid external_id"})
		return
	}

	order, err := h.orders.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("Order with external_id %d not found", externalID),
			})
			return
		}
		log.Printf("Failed to get order %d: %v", externalID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrdersHandler) ExportOrders(c *gin.Context) {
	ctx := c.Request.Context()

	format := c.DefaultQuery("format", "csv")

	opts := repository.ListOptions{Limit: exportLimit, Query: c.Query("q")}
	if hasStr := c.Query("has_attachments"); hasStr != "" {
		if has, err := strconv.ParseBool(hasStr); err == nil {
			opts.HasAttachments = &has
		}
	}

	path, err := h.export.ExportOrders(ctx, format, opts)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format, use 'csv' or 'xlsx'"})
			return
		}
		log.Printf("Failed to export orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export orders"})
		return
	}

	// Определяем Content-Type
	var contentType string
	switch format {
	case "excel", "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		contentType = "text/csv"
	}

	// Отправляем файл
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(path))
	c.File(path)
}
