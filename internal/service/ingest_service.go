package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"florders/internal/clients"
	"florders/internal/models"
	"florders/internal/utils"

	"github.com/mmcdole/gofeed"
	"gorm.io/datatypes"
)

// RSSConfig хранит настройки ленты по умолчанию, параметры запроса могут их
// переопределить.
type RSSConfig struct {
	FeedURL     string
	Category    *int
	Subcategory *int
}

type IngestOptions struct {
	FeedURL     string
	Category    *int
	Subcategory *int
	Limit       *int
}

type IngestService interface {
	IngestRSS(ctx context.Context, opts IngestOptions) (inserted int, updated int, err error)
	BuildFeedURL(opts IngestOptions) (string, error)
}

type ingestService struct {
	orders OrderService
	feed   clients.FeedClient
	cfg    RSSConfig
}

func NewIngestService(orders OrderService, feed clients.FeedClient, cfg RSSConfig) IngestService {
	return &ingestService{
		orders: orders,
		feed:   feed,
		cfg:    cfg,
	}
}

// BuildFeedURL собирает адрес ленты: базовый URL из опций или конфигурации,
// поверх него категория и подкатегория. Уже присутствующие в URL параметры
// запроса сохраняются.
func (s *ingestService) BuildFeedURL(opts IngestOptions) (string, error) {
	base := s.cfg.FeedURL
	if opts.FeedURL != "" {
		base = opts.FeedURL
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %q: %w", base, err)
	}

	category := s.cfg.Category
	if opts.Category != nil {
		category = opts.Category
	}
	subcategory := s.cfg.Subcategory
	if opts.Subcategory != nil {
		subcategory = opts.Subcategory
	}

	query := parsed.Query()
	if category != nil {
		query.Set("category", strconv.Itoa(*category))
	}
	if subcategory != nil {
		query.Set("subcategory", strconv.Itoa(*subcategory))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *ingestService) IngestRSS(ctx context.Context, opts IngestOptions) (int, int, error) {
	feedURL, err := s.BuildFeedURL(opts)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	feed, err := s.feed.Fetch(ctx, feedURL)
	if err != nil {
		if errors.Is(err, clients.ErrFeedParse) {
			return 0, 0, fmt.Errorf("%w: %v", ErrFeedInvalid, err)
		}
		return 0, 0, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	items := feed.Items
	if opts.Limit != nil && *opts.Limit >= 0 && *opts.Limit < len(items) {
		items = items[:*opts.Limit]
	}

	candidates := make([]models.Order, 0, len(items))
	for _, item := range items {
		order, ok := feedItemToOrder(item)
		if !ok {
			log.Printf("Skipping feed entry without link or title: %q", item.Title)
			continue
		}
		candidates = append(candidates, *order)
	}

	inserted, updated, err := s.orders.IngestBatch(ctx, candidates)
	if err != nil {
		return 0, 0, fmt.Errorf("apply feed batch: %w", err)
	}
	log.Printf("RSS ingest finished: %d inserted, %d updated (%s)", inserted, updated, feedURL)
	return inserted, updated, nil
}

func feedItemToOrder(item *gofeed.Item) (*models.Order, bool) {
	link := strings.TrimSpace(item.Link)
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return nil, false
	}

	summaryText := item.Description
	if summaryText == "" {
		summaryText = item.Content
	}
	var summary *string
	if summaryText != "" {
		summary = &summaryText
	}

	var pubDate *time.Time
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		pubDate = &t
	} else if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		pubDate = &t
	}

	return &models.Order{
		ExternalID: utils.ExtractExternalID(link),
		Link:       link,
		Title:      title,
		Summary:    summary,
		PubDate:    pubDate,
		RSSRaw:     datatypes.JSONMap(flattenFeedItem(item)),
		Enriched:   datatypes.JSONMap{},
	}, true
}

// flattenFeedItem раскладывает запись ленты в плоскую карту для rss_raw.
func flattenFeedItem(item *gofeed.Item) map[string]interface{} {
	raw := map[string]interface{}{
		"title": item.Title,
		"link":  item.Link,
	}
	if item.Description != "" {
		raw["description"] = item.Description
	}
	if item.Content != "" {
		raw["content"] = item.Content
	}
	if item.Published != "" {
		raw["published"] = item.Published
	}
	if item.Updated != "" {
		raw["updated"] = item.Updated
	}
	if item.GUID != "" {
		raw["guid"] = item.GUID
	}
	if len(item.Categories) > 0 {
		raw["categories"] = item.Categories
	}
	if item.Author != nil && item.Author.Name != "" {
		raw["author"] = item.Author.Name
	}
	if len(item.Links) > 1 {
		raw["links"] = item.Links
	}
	for key, value := range item.Custom {
		raw[key] = value
	}
	return raw
}
