package repository

import (
	"context"
	"errors"

	"florders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository работает с пользователями и их файлами. Методы Get*
// возвращают (nil, nil), когда записи нет.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	GetByUID(ctx context.Context, uid uuid.UUID) (*models.User, error)
	GetWithAttachments(ctx context.Context, uid uuid.UUID) (*models.User, error)
	AddAttachment(ctx context.Context, attachment *models.UserAttachment) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) GetByUID(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetWithAttachments(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&user, "uid = ?", uid).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Attachments == nil {
		user.Attachments = []models.UserAttachment{}
	}
	return &user, nil
}

func (r *userRepository) AddAttachment(ctx context.Context, attachment *models.UserAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&count).
		Error
	return count, err
}
