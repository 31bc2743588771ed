package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FeedbackStatusPending  = "pending"
	FeedbackStatusAccepted = "accepted"
	FeedbackStatusRejected = "rejected"
)

// FeedbackStatuses перечисляет допустимые статусы отклика.
var FeedbackStatuses = []string{FeedbackStatusPending, FeedbackStatusAccepted, FeedbackStatusRejected}

func ValidFeedbackStatus(status string) bool {
	for _, s := range FeedbackStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type OrderFeedback struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	OrderID      int64     `gorm:"not null;uniqueIndex:uq_order_feedbacks_order_user" json:"order_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_order_feedbacks_order_user" json:"user_id"`
	FeedbackText string    `gorm:"type:text;not null" json:"feedback_text"`
	Status       string    `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
