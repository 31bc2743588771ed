package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"florders/internal/models"
	"florders/internal/repository"
	"florders/internal/storage"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserPatch описывает частичное обновление профиля, nil означает "поле не прислано".
type UserPatch struct {
	CompetenciesText *string
	Categories       *[]string
}

// UserFileUpload представляет один файл из запроса загрузки.
type UserFileUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type UserService interface {
	Create(ctx context.Context, meta map[string]interface{}) (*models.User, error)
	GetDetail(ctx context.Context, uid uuid.UUID) (*models.User, error)
	Update(ctx context.Context, uid uuid.UUID, patch UserPatch) (*models.User, error)
	AddAttachments(ctx context.Context, uid uuid.UUID, uploads []UserFileUpload) ([]models.UserAttachment, error)
}

type userService struct {
	repo  repository.UserRepository
	store *storage.FileStore
}

func NewUserService(repo repository.UserRepository, store *storage.FileStore) UserService {
	return &userService{
		repo:  repo,
		store: store,
	}
}

func (s *userService) Create(ctx context.Context, meta map[string]interface{}) (*models.User, error) {
	user := &models.User{UID: uuid.New()}
	if meta != nil {
		user.Meta = datatypes.JSONMap(meta)
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Printf("Created user %s", user.UID)
	return user, nil
}

func (s *userService) GetDetail(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetWithAttachments(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, uid uuid.UUID, patch UserPatch) (*models.User, error) {
	user, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if patch.CompetenciesText != nil {
		user.CompetenciesText = patch.CompetenciesText
	}
	if patch.Categories != nil {
		user.Categories = datatypes.JSONSlice[string](NormalizeCategories(*patch.Categories))
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return s.GetDetail(ctx, uid)
}

func (s *userService) AddAttachments(ctx context.Context, uid uuid.UUID, uploads []UserFileUpload) ([]models.UserAttachment, error) {
	user, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	attachments := make([]models.UserAttachment, 0, len(uploads))
	for _, upload := range uploads {
		name := upload.Filename
		if name == "" {
			name = "file"
		}
		saved, err := s.store.SaveUserFile(upload.Reader, uid, name, upload.ContentType)
		if err != nil {
			return nil, err
		}

		attachment := models.UserAttachment{
			UserUID:    uid,
			Filename:   saved.Filename,
			StoredPath: saved.StoredPath,
			Size:       saved.SizeBytes,
			SHA256:     saved.SHA256,
		}
		if saved.ContentType != "" {
			contentType := saved.ContentType
			attachment.ContentType = &contentType
		}
		if err := s.repo.AddAttachment(ctx, &attachment); err != nil {
			return nil, fmt.Errorf("save user attachment record: %w", err)
		}
		attachments = append(attachments, attachment)
	}

	log.Printf("Stored %d files for user %s", len(attachments), uid)
	return attachments, nil
}

// NormalizeCategories чистит список категорий: обрезает пробелы и приводит
// к нижнему регистру, затем выкидывает пустые строки и дубликаты. Порядок
// первых вхождений сохраняется.
func NormalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, category := range categories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
