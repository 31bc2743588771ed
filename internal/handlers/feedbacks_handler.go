package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"florders/internal/models"
	"florders/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FeedbacksHandler struct {
	service service.FeedbackService
}

func NewFeedbacksHandler(service service.FeedbackService) *FeedbacksHandler {
	return &FeedbacksHandler{service: service}
}

func (h *FeedbacksHandler) CreateFeedback(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		OrderID      int64  `json:"order_id"`
		UserID       string `json:"user_id"`
		FeedbackText string `json:"feedback_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}
	if strings.TrimSpace(req.FeedbackText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback_text is required"})
		return
	}

	feedback, err := h.service.Create(ctx, req.OrderID, userID, req.FeedbackText)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Order %d not found", req.OrderID)})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found", userID)})
		case errors.Is(err, service.ErrDuplicateFeedback):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("User %s already left feedback for order %d", userID, req.OrderID),
			})
		default:
			log.Printf("Failed to create feedback: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbacksHandler) ListByOrder(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}
	limit, offset := parsePagination(c)

	feedbacks, err := h.service.ListByOrder(ctx, orderID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Order %d not found", orderID)})
			return
		}
		log.Printf("Failed to list feedbacks for order %d: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedbacks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  feedbacks,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *FeedbacksHandler) ListByUser(c *gin.Context) {
	ctx := c.Request.Context()

	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid uid"})
		return
	}
	limit, offset := parsePagination(c)

	feedbacks, err := h.service.ListByUser(ctx, uid, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found", uid)})
			return
		}
		log.Printf("Failed to list feedbacks for user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedbacks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  feedbacks,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *FeedbacksHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback id"})
		return
	}
	status := c.Query("status")

	feedback, err := h.service.UpdateStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid status: %s. Must be one of: %s",
					status, strings.Join(models.FeedbackStatuses, ", ")),
			})
		case errors.Is(err, service.ErrFeedbackNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Feedback %d not found", id)})
		default:
			log.Printf("Failed to update feedback %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbacksHandler) DeleteFeedback(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback id"})
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Feedback %d not found", id)})
			return
		}
		log.Printf("Failed to delete feedback %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Feedback %d deleted", id),
	})
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l >= 1 && l <= 500 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
