package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"florders/internal/models"
	"florders/internal/repository"

	"gorm.io/datatypes"
)

type OrderService interface {
	IngestBatch(ctx context.Context, candidates []models.Order) (inserted int, updated int, err error)
	EnsureOrder(ctx context.Context, externalID *int64, link, title string, summary *string) (*models.Order, error)
	MergeEnriched(ctx context.Context, order *models.Order, payload map[string]interface{}) error
	AddAttachment(ctx context.Context, attachment *models.Attachment) error
	List(ctx context.Context, opts repository.ListOptions) ([]models.Order, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.Order, error)
}

type orderService struct {
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

// IngestBatch применяет пачку заказов из ленты в одной транзакции.
// Существующая запись ищется по external_id или по ссылке; у найденной
// обновляются данные ленты, external_id дозаполняется, если раньше его не
// было. Ручное обогащение (enriched_json) при этом не трогается.
func (s *orderService) IngestBatch(ctx context.Context, candidates []models.Order) (int, int, error) {
	var inserted, updated int
	err := s.repo.Transaction(ctx, func(tx repository.OrderRepository) error {
		for i := range candidates {
			candidate := candidates[i]

			existing, err := tx.FindForFeed(ctx, candidate.ExternalID, candidate.Link)
			if err != nil {
				return fmt.Errorf("lookup order %s: %w", candidate.Link, err)
			}

			if existing == nil {
				if candidate.RSSRaw == nil {
					candidate.RSSRaw = datatypes.JSONMap{}
				}
				if candidate.Enriched == nil {
					candidate.Enriched = datatypes.JSONMap{}
				}
				if err := tx.Create(ctx, &candidate); err != nil {
					return fmt.Errorf("insert order %s: %w", candidate.Link, err)
				}
				inserted++
				continue
			}

			existing.Title = candidate.Title
			existing.Summary = candidate.Summary
			existing.PubDate = candidate.PubDate
			existing.RSSRaw = candidate.RSSRaw
			if existing.ExternalID == nil && candidate.ExternalID != nil {
				existing.ExternalID = candidate.ExternalID
			}
			if err := tx.Save(ctx, existing); err != nil {
				return fmt.Errorf("update order %s: %w", existing.Link, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// EnsureOrder возвращает существующий заказ по external_id или ссылке, а при
// отсутствии создает заготовку, к которой позже привяжутся обогащение и файлы.
func (s *orderService) EnsureOrder(ctx context.Context, externalID *int64, link, title string, summary *string) (*models.Order, error) {
	if externalID != nil {
		order, err := s.repo.FindByExternalID(ctx, *externalID)
		if err != nil {
			return nil, fmt.Errorf("find order by external id: %w", err)
		}
		if order != nil {
			return order, nil
		}
	}
	if link != "" {
		order, err := s.repo.FindByLink(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("find order by link: %w", err)
		}
		if order != nil {
			return order, nil
		}
	}

	if link == "" {
		// Ссылки нет совсем, ставим синтетический уникальный ключ
		link = fmt.Sprintf("unknown://%d", time.Now().UnixNano())
	}
	order := &models.Order{
		ExternalID: externalID,
		Link:       link,
		Title:      title,
		Summary:    summary,
		RSSRaw:     datatypes.JSONMap{},
		Enriched:   datatypes.JSONMap{},
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	log.Printf("Created placeholder order %d for link %s", order.ID, order.Link)
	return order, nil
}

func (s *orderService) MergeEnriched(ctx context.Context, order *models.Order, payload map[string]interface{}) error {
	merged := DeepMerge(map[string]interface{}(order.Enriched), payload)
	order.Enriched = datatypes.JSONMap(merged)
	if err := s.repo.Save(ctx, order); err != nil {
		return fmt.Errorf("save enriched order: %w", err)
	}
	return nil
}

func (s *orderService) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	if err := s.repo.AddAttachment(ctx, attachment); err != nil {
		return fmt.Errorf("save attachment record: %w", err)
	}
	return nil
}

func (s *orderService) List(ctx context.Context, opts repository.ListOptions) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) GetByExternalID(ctx context.Context, externalID int64) (*models.Order, error) {
	order, err := s.repo.GetWithAttachments(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
