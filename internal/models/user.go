package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	UID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"uid"`
	CompetenciesText *string                     `gorm:"type:text" json:"competencies_text"`
	Categories       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"categories"`
	Meta             datatypes.JSONMap           `gorm:"type:jsonb" json:"-"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	Attachments      []UserAttachment            `gorm:"foreignKey:UserUID;references:UID;constraint:OnDelete:CASCADE" json:"attachments"`
	Feedbacks        []OrderFeedback             `gorm:"foreignKey:UserID;references:UID;constraint:OnDelete:CASCADE" json:"-"`
}

type UserAttachment struct {
	ID          int64             `gorm:"primaryKey" json:"id"`
	UserUID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	Filename    string            `gorm:"size:512;not null" json:"filename"`
	StoredPath  string            `gorm:"size:1024;not null" json:"stored_path"`
	Size        int64             `gorm:"not null" json:"size"`
	SHA256      string            `gorm:"column:sha256;size:64;not null" json:"sha256"`
	ContentType *string           `gorm:"size:255" json:"content_type"`
	Meta        datatypes.JSONMap `gorm:"type:jsonb" json:"-"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}
