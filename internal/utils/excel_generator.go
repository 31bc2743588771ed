package utils

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"florders/internal/models"
)

const ordersSheet = "Orders"

// CreateOrdersExcel создает Excel файл со сводкой по заказам
func CreateOrdersExcel(filepath string, orders []models.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	// Создаем новый лист
	index, err := f.NewSheet(ordersSheet)
	if err != nil {
		return err
	}

	// Устанавливаем заголовки
	headers := []string{"External ID", "Link", "Title", "Summary", "Published At", "Attachments", "Created At", "Updated At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ordersSheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	f.SetCellStyle(ordersSheet, "A1", "H1", headerStyle)

	// Заполняем данные
	for rowIdx, order := range orders {
		rowNum := rowIdx + 2 // Заголовок в первой строке

		if order.ExternalID != nil {
			f.SetCellValue(ordersSheet, fmt.Sprintf("A%d", rowNum), *order.ExternalID)
		}
		f.SetCellValue(ordersSheet, fmt.Sprintf("B%d", rowNum), order.Link)
		f.SetCellValue(ordersSheet, fmt.Sprintf("C%d", rowNum), order.Title)
		if order.Summary != nil {
			f.SetCellValue(ordersSheet, fmt.Sprintf("D%d", rowNum), *order.Summary)
		}
		if order.PubDate != nil {
			f.SetCellValue(ordersSheet, fmt.Sprintf("E%d", rowNum),
				order.PubDate.Format("2006-01-02 15:04:05"))
		}
		f.SetCellValue(ordersSheet, fmt.Sprintf("F%d", rowNum), len(order.Attachments))
		f.SetCellValue(ordersSheet, fmt.Sprintf("G%d", rowNum),
			order.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(ordersSheet, fmt.Sprintf("H%d", rowNum),
			order.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	// Ширина колонок под ссылки и длинные тексты
	f.SetColWidth(ordersSheet, "A", "A", 14)
	f.SetColWidth(ordersSheet, "B", "B", 50)
	f.SetColWidth(ordersSheet, "C", "D", 40)
	f.SetColWidth(ordersSheet, "E", "H", 20)

	// Создаем информационный лист
	createOrdersInfoSheet(f, orders)

	// Устанавливаем активный лист
	f.SetActiveSheet(index)

	// Сохраняем файл
	if err := f.SaveAs(filepath); err != nil {
		return err
	}

	return nil
}

func createOrdersInfoSheet(f *excelize.File, orders []models.Order) {
	// Создаем лист с информацией
	f.NewSheet("Info")

	withAttachments := 0
	totalAttachments := 0
	for _, order := range orders {
		if len(order.Attachments) > 0 {
			withAttachments++
		}
		totalAttachments += len(order.Attachments)
	}

	rows := []struct {
		key   string
		value interface{}
	}{
		{"Report Generated", time.Now().UTC().Format("2006-01-02 15:04:05")},
		{"Total Orders", len(orders)},
		{"Orders With Attachments", withAttachments},
		{"Total Attachments", totalAttachments},
	}
	for i, row := range rows {
		f.SetCellValue("Info", fmt.Sprintf("A%d", i+1), row.key)
		f.SetCellValue("Info", fmt.Sprintf("B%d", i+1), row.value)
	}
}
