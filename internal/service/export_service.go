package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"florders/internal/models"
	"florders/internal/repository"
	"florders/internal/utils"
)

type ExportService interface {
	ExportOrders(ctx context.Context, format string, opts repository.ListOptions) (string, error)
}

type exportService struct {
	repo      repository.OrderRepository
	outputDir string
}

func NewExportService(repo repository.OrderRepository, outputDir string) ExportService {
	if outputDir == "" {
		outputDir = "./exports"
	}

	// Создаем директорию если не существует
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Failed to create export directory: %v", err)
	}

	return &exportService{
		repo:      repo,
		outputDir: outputDir,
	}
}

func (s *exportService) ExportOrders(ctx context.Context, format string, opts repository.ListOptions) (string, error) {
	orders, err := s.repo.List(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("list orders for export: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case "csv":
		filename := fmt.Sprintf("orders_%s.csv", timestamp)
		path := filepath.Join(s.outputDir, filename)

		if err := s.saveToCSV(path, orders); err != nil {
			return "", fmt.Errorf("failed to save CSV: %w", err)
		}

		log.Printf("Exported %d orders to %s", len(orders), filename)
		return path, nil

	case "excel", "xlsx":
		filename := fmt.Sprintf("orders_%s.xlsx", timestamp)
		path := filepath.Join(s.outputDir, filename)

		if err := utils.CreateOrdersExcel(path, orders); err != nil {
			return "", fmt.Errorf("failed to create Excel file: %w", err)
		}

		log.Printf("Exported %d orders to %s", len(orders), filename)
		return path, nil

	default:
		return "", ErrUnsupportedFormat
	}
}

func (s *exportService) saveToCSV(path string, orders []models.Order) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Записываем заголовок
	header := []string{"external_id", "link", "title", "summary", "pub_date", "attachments", "created_at", "updated_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Записываем данные
	for _, order := range orders {
		externalID := ""
		if order.ExternalID != nil {
			externalID = strconv.FormatInt(*order.ExternalID, 10)
		}
		summary := ""
		if order.Summary != nil {
			summary = *order.Summary
		}
		pubDate := ""
		if order.PubDate != nil {
			pubDate = order.PubDate.Format("2006-01-02 15:04:05")
		}

		row := []string{
			externalID,
			order.Link,
			order.Title,
			summary,
			pubDate,
			strconv.Itoa(len(order.Attachments)),
			order.CreatedAt.Format("2006-01-02 15:04:05"),
			order.UpdatedAt.Format("2006-01-02 15:04:05"),
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}
