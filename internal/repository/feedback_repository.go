package repository

import (
	"context"
	"errors"

	"florders/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackRepository работает с откликами на заказы. Методы Get* и Find*
// возвращают (nil, nil), когда записи нет.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.OrderFeedback) error
	Save(ctx context.Context, feedback *models.OrderFeedback) error
	GetByID(ctx context.Context, id int64) (*models.OrderFeedback, error)
	FindByOrderAndUser(ctx context.Context, orderID int64, userID uuid.UUID) (*models.OrderFeedback, error)
	ListByOrder(ctx context.Context, orderID int64, limit, offset int) ([]models.OrderFeedback, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OrderFeedback, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.OrderFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) Save(ctx context.Context, feedback *models.OrderFeedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

func (r *feedbackRepository) GetByID(ctx context.Context, id int64) (*models.OrderFeedback, error) {
	var feedback models.OrderFeedback
	err := r.db.WithContext(ctx).First(&feedback, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) FindByOrderAndUser(ctx context.Context, orderID int64, userID uuid.UUID) (*models.OrderFeedback, error) {
	var feedback models.OrderFeedback
	err := r.db.WithContext(ctx).
		First(&feedback, "order_id = ? AND user_id = ?", orderID, userID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) ListByOrder(ctx context.Context, orderID int64, limit, offset int) ([]models.OrderFeedback, error) {
	limit, offset = clampPage(limit, offset)

	var feedbacks []models.OrderFeedback
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&feedbacks).
		Error
	return feedbacks, err
}

func (r *feedbackRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OrderFeedback, error) {
	limit, offset = clampPage(limit, offset)

	var feedbacks []models.OrderFeedback
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&feedbacks).
		Error
	return feedbacks, err
}

func clampPage(limit, offset int) (int, int) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (r *feedbackRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.OrderFeedback{}, "id = ?", id).Error
}

func (r *feedbackRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderFeedback{}).
		Count(&count).
		Error
	return count, err
}
