package repository

import (
	"context"
	"errors"

	"florders/internal/models"

	"gorm.io/gorm"
)

// ListOptions задает фильтры выборки заказов.
type ListOptions struct {
	Limit          int
	Offset         int
	Query          string
	HasAttachments *bool
}

// OrderRepository работает с заказами и их вложениями. Методы Find* и Get*
// возвращают (nil, nil), когда записи нет.
type OrderRepository interface {
	Transaction(ctx context.Context, fn func(OrderRepository) error) error
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindForFeed(ctx context.Context, externalID *int64, link string) (*models.Order, error)
	FindByExternalID(ctx context.Context, externalID int64) (*models.Order, error)
	FindByLink(ctx context.Context, link string) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetWithAttachments(ctx context.Context, externalID int64) (*models.Order, error)
	List(ctx context.Context, opts ListOptions) ([]models.Order, error)
	AddAttachment(ctx context.Context, attachment *models.Attachment) error
	Count(ctx context.Context) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Transaction(ctx context.Context, fn func(OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepository{db: tx})
	})
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// FindForFeed ищет заказ по паре ключей ленты: при известном external_id
// совпадением считается любой из ключей, иначе ищем только по ссылке.
func (r *orderRepository) FindForFeed(ctx context.Context, externalID *int64, link string) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if externalID != nil {
		query = query.Where("external_id = ? OR link = ?", *externalID, link)
	} else {
		query = query.Where("link = ?", link)
	}

	var order models.Order
	err := query.First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByExternalID(ctx context.Context, externalID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByLink(ctx context.Context, link string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "link = ?", link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetWithAttachments(ctx context.Context, externalID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "external_id = ?", externalID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if order.Attachments == nil {
		order.Attachments = []models.Attachment{}
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, opts ListOptions) ([]models.Order, error) {
	if opts.Limit < 1 || opts.Limit > 500 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("updated_at DESC")

	if opts.Query != "" {
		pattern := "%" + opts.Query + "%"
		query = query.Where("title ILIKE ? OR summary ILIKE ?", pattern, pattern)
	}
	if opts.HasAttachments != nil {
		sub := "EXISTS (SELECT 1 FROM attachments WHERE attachments.order_id = orders.id)"
		if !*opts.HasAttachments {
			sub = "NOT " + sub
		}
		query = query.Where(sub)
	}

	var orders []models.Order
	err := query.
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&orders).
		Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Attachments == nil {
			orders[i].Attachments = []models.Attachment{}
		}
	}
	return orders, nil
}

func (r *orderRepository) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Count(&count).
		Error
	return count, err
}
