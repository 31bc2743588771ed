package database

import (
	"fmt"
	"log"
	"time"

	"florders/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	URL string
}

func Connect(config Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Настройка пула соединений
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Включаем расширения
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		return fmt.Errorf("failed to create pg_trgm extension: %w", err)
	}

	// Автомиграция моделей
	err := db.AutoMigrate(
		&models.Order{},
		&models.Attachment{},
		&models.User{},
		&models.UserAttachment{},
		&models.OrderFeedback{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Создаем индексы
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	// Индексы для Order: лента отдается по убыванию updated_at, поиск
	// по подстроке идет через триграммы.
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_updated_at ON orders(updated_at DESC)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_title ON orders USING gin(title gin_trgm_ops)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_summary ON orders USING gin(summary gin_trgm_ops)").Error; err != nil {
		return err
	}

	// Индексы для Attachment
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_attachments_order_created ON attachments(order_id, created_at)").Error; err != nil {
		return err
	}

	// Индексы для UserAttachment
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_user_attachments_uid ON user_attachments(user_uid, created_at)").Error; err != nil {
		return err
	}

	// Индексы для OrderFeedback
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_order_feedbacks_order_created ON order_feedbacks(order_id, created_at DESC)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_order_feedbacks_user_created ON order_feedbacks(user_id, created_at DESC)").Error; err != nil {
		return err
	}

	return nil
}
