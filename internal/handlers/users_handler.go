package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"florders/internal/service"
	"florders/internal/storage"
	"florders/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsersHandler struct {
	service     service.UserService
	maxUploadMB int
}

func NewUsersHandler(service service.UserService, maxUploadMB int) *UsersHandler {
	return &UsersHandler{service: service, maxUploadMB: maxUploadMB}
}

func (h *UsersHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	// Тело опционально: пустое тело означает пользователя без метаданных.
	var meta map[string]interface{}
	if len(bytes.TrimSpace(body)) > 0 {
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return
		}
		if rawMeta, ok := payload["meta"]; ok && rawMeta != nil {
			metaObject, ok := rawMeta.(map[string]interface{})
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "meta must be an object"})
				return
			}
			meta = metaObject
		}
	}

	user, err := h.service.Create(ctx, meta)
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": user.UID})
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()

	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid uid"})
		return
	}

	user, err := h.service.GetDetail(ctx, uid)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found", uid)})
			return
		}
		log.Printf("Failed to get user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid uid"})
		return
	}

	var req struct {
		CompetenciesText *string   `json:"competencies_text"`
		Categories       *[]string `json:"categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	user, err := h.service.Update(ctx, uid, service.UserPatch{
		CompetenciesText: req.CompetenciesText,
		Categories:       req.Categories,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found", uid)})
			return
		}
		log.Printf("Failed to update user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadFiles принимает multipart с файлами в полях files и/или files[].
// Разбор тот же, что у диспетчера загрузок: штатный парсер со страховкой
// в виде ручного разбора по границе.
func (h *UsersHandler) UploadFiles(c *gin.Context) {
	ctx := c.Request.Context()

	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid uid"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	form, err := utils.ParseForm(body, c.GetHeader("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	var files []*utils.FormFile
	files = append(files, form.Files["files"]...)
	files = append(files, form.Files["files[]"]...)
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	uploads := make([]service.UserFileUpload, 0, len(files))
	for _, file := range files {
		uploads = append(uploads, service.UserFileUpload{
			Filename:    file.Filename,
			ContentType: file.ContentType,
			Reader:      bytes.NewReader(file.Data),
		})
	}

	records, err := h.service.AddAttachments(ctx, uid, uploads)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User %s not found", uid)})
		case errors.Is(err, storage.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Uploaded file exceeds allowed size (%dMB)", h.maxUploadMB),
			})
		case errors.Is(err, storage.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded file is empty"})
		default:
			log.Printf("Failed to store files for user %s: %v", uid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store files"})
		}
		return
	}

	c.JSON(http.StatusOK, records)
}
