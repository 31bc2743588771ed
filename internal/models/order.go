package models

import (
	"time"

	"gorm.io/datatypes"
)

type Order struct {
	ID          int64             `gorm:"primaryKey" json:"-"`
	ExternalID  *int64            `gorm:"uniqueIndex" json:"external_id"`
	Link        string            `gorm:"type:text;uniqueIndex;not null" json:"link"`
	Title       string            `gorm:"type:text;not null" json:"title"`
	Summary     *string           `gorm:"type:text" json:"summary"`
	PubDate     *time.Time        `json:"pub_date"`
	RSSRaw      datatypes.JSONMap `gorm:"column:rss_raw;type:jsonb;not null" json:"rss_raw"`
	Enriched    datatypes.JSONMap `gorm:"column:enriched_json;type:jsonb;not null;default:'{}'" json:"enriched"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	Attachments []Attachment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"attachments"`
	Feedbacks   []OrderFeedback   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

type Attachment struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"-"`
	Filename    string    `gorm:"type:text;not null" json:"filename"`
	StoredPath  string    `gorm:"type:text;not null" json:"-"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	MimeType    *string   `gorm:"type:text" json:"mime_type"`
	OriginalURL *string   `gorm:"type:text" json:"original_url"`
	PageURL     *string   `gorm:"type:text" json:"page_url"`
	SHA256      *string   `gorm:"column:sha256;type:text" json:"sha256"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
}
