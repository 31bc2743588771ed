package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"florders/internal/service"
	"florders/internal/storage"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service     service.UploadService
	maxUploadMB int
}

func NewUploadHandler(service service.UploadService, maxUploadMB int) *UploadHandler {
	return &UploadHandler{service: service, maxUploadMB: maxUploadMB}
}

// HandleUpload принимает запрос агента обогащения: multipart с файлом,
// JSON с метаданными или url-encoded форму. Обе точки входа (/api/upload и
// /api/upload_file) ведут сюда.
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	result, err := h.service.Process(ctx, c.GetHeader("Content-Type"), body)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	switch result.Mode {
	case service.UploadModeAttachment:
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"mode":   result.Mode,
			"file": gin.H{
				"filename":   result.Saved.Filename,
				"size_bytes": result.Saved.SizeBytes,
				"sha256":     result.Saved.SHA256,
			},
			"order": gin.H{
				"id":          result.Order.ID,
				"external_id": result.Order.ExternalID,
			},
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"mode":   result.Mode,
			"order": gin.H{
				"id":          result.Order.ID,
				"external_id": result.Order.ExternalID,
				"link":        result.Order.Link,
			},
		})
	}
}

func (h *UploadHandler) respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNothingToProcess):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: nothing to process"})
	case errors.Is(err, service.ErrAttachmentRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attachment file is required"})
	case errors.Is(err, service.ErrInvalidJSONBody):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid JSON in request body"})
	case errors.Is(err, service.ErrInvalidProjectData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid JSON in projectData"})
	case errors.Is(err, service.ErrProjectDataType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "projectData must be object/array or JSON string"})
	case errors.Is(err, storage.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Uploaded file exceeds allowed size (%dMB)", h.maxUploadMB),
		})
	case errors.Is(err, storage.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded file is empty"})
	default:
		log.Printf("Upload processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process upload"})
	}
}
