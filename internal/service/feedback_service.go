package service

import (
	"context"
	"fmt"
	"log"

	"florders/internal/models"
	"florders/internal/repository"

	"github.com/google/uuid"
)

type FeedbackService interface {
	Create(ctx context.Context, orderID int64, userID uuid.UUID, text string) (*models.OrderFeedback, error)
	ListByOrder(ctx context.Context, orderID int64, limit, offset int) ([]models.OrderFeedback, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OrderFeedback, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.OrderFeedback, error)
	Delete(ctx context.Context, id int64) error
}

type feedbackService struct {
	feedbacks repository.FeedbackRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
}

func NewFeedbackService(feedbacks repository.FeedbackRepository, orders repository.OrderRepository, users repository.UserRepository) FeedbackService {
	return &feedbackService{
		feedbacks: feedbacks,
		orders:    orders,
		users:     users,
	}
}

// Create проверяет существование заказа и пользователя и отсекает повторный
// отклик той же пары до вставки; уникальный индекс в базе страхует от гонок.
func (s *feedbackService) Create(ctx context.Context, orderID int64, userID uuid.UUID, text string) (*models.OrderFeedback, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("check order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	user, err := s.users.GetByUID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.feedbacks.FindByOrderAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing feedback: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateFeedback
	}

	feedback := &models.OrderFeedback{
		OrderID:      orderID,
		UserID:       userID,
		FeedbackText: text,
		Status:       models.FeedbackStatusPending,
	}
	if err := s.feedbacks.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	log.Printf("User %s left feedback %d for order %d", userID, feedback.ID, orderID)
	return feedback, nil
}

func (s *feedbackService) ListByOrder(ctx context.Context, orderID int64, limit, offset int) ([]models.OrderFeedback, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("check order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	feedbacks, err := s.feedbacks.ListByOrder(ctx, orderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list feedbacks by order: %w", err)
	}
	return feedbacks, nil
}

func (s *feedbackService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OrderFeedback, error) {
	user, err := s.users.GetByUID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	feedbacks, err := s.feedbacks.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list feedbacks by user: %w", err)
	}
	return feedbacks, nil
}

func (s *feedbackService) UpdateStatus(ctx context.Context, id int64, status string) (*models.OrderFeedback, error) {
	if !models.ValidFeedbackStatus(status) {
		return nil, ErrInvalidStatus
	}

	feedback, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	if feedback == nil {
		return nil, ErrFeedbackNotFound
	}

	feedback.Status = status
	if err := s.feedbacks.Save(ctx, feedback); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	return feedback, nil
}

func (s *feedbackService) Delete(ctx context.Context, id int64) error {
	feedback, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get feedback: %w", err)
	}
	if feedback == nil {
		return ErrFeedbackNotFound
	}
	if err := s.feedbacks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return nil
}
