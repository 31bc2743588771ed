package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"florders/internal/models"
	"florders/internal/storage"
	"florders/internal/utils"

	"github.com/tidwall/gjson"
)

const (
	UploadModeMetadata   = "metadata"
	UploadModeAttachment = "attachment"
)

// UploadResult описывает итог обработки запроса от агента обогащения.
type UploadResult struct {
	Mode       string
	Order      *models.Order
	Saved      *storage.SavedFile
	Attachment *models.Attachment
}

type UploadService interface {
	Process(ctx context.Context, contentType string, body []byte) (*UploadResult, error)
}

type uploadService struct {
	orders OrderService
	store  *storage.FileStore
}

func NewUploadService(orders OrderService, store *storage.FileStore) UploadService {
	return &uploadService{
		orders: orders,
		store:  store,
	}
}

// uploadFields хранит поля запроса, извлеченные одной из стратегий разбора.
// projectData отличает отсутствие поля (nil) от пустого значения.
type uploadFields struct {
	projectData *string
	typeValue   string
	projectID   string
	pageURL     string
	originalURL string
	filename    string
	file        *utils.FormFile
}

// Process разбирает тело запроса по его Content-Type и решает, что прислал
// клиент: файл вложения или метаданные заказа. Файл (или type=attachment)
// имеет приоритет над projectData.
func (s *uploadService) Process(ctx context.Context, contentType string, body []byte) (*UploadResult, error) {
	fields, err := s.extractFields(contentType, body)
	if err != nil {
		return nil, err
	}

	switch {
	case fields.file != nil || fields.typeValue == "attachment":
		return s.handleAttachment(ctx, fields)
	case fields.projectData != nil && *fields.projectData != "":
		return s.handleMetadata(ctx, *fields.projectData)
	default:
		return nil, ErrNothingToProcess
	}
}

func (s *uploadService) extractFields(contentType string, body []byte) (*uploadFields, error) {
	ctype := strings.ToLower(contentType)
	switch {
	case strings.Contains(ctype, "multipart/form-data"):
		return fieldsFromMultipart(body, contentType), nil
	case strings.Contains(ctype, "application/json"):
		return fieldsFromJSON(body)
	default:
		return fieldsFromURLEncoded(body), nil
	}
}

func fieldsFromMultipart(body []byte, contentType string) *uploadFields {
	if len(body) == 0 {
		return &uploadFields{}
	}
	form, err := utils.ParseForm(body, contentType)
	if err != nil {
		log.Printf("Failed to parse multipart upload body: %v", err)
		return &uploadFields{}
	}
	return fieldsFromForm(form)
}

func fieldsFromForm(form *utils.ParsedForm) *uploadFields {
	fields := &uploadFields{}
	if value, ok := form.FirstValue("projectData", "project_data"); ok {
		fields.projectData = &value
	}
	if value, ok := form.FirstValue("type"); ok {
		fields.typeValue = strings.ToLower(strings.TrimSpace(value))
	}
	fields.projectID, _ = form.FirstValue("project_id", "projectId")
	fields.pageURL, _ = form.FirstValue("page_url", "pageUrl")
	fields.originalURL, _ = form.FirstValue("original_url", "originalUrl")
	fields.filename, _ = form.FirstValue("filename")
	fields.file = form.FirstFile("file")
	return fields
}

func fieldsFromJSON(body []byte) (*uploadFields, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONBody, err)
	}

	fields := &uploadFields{}

	payload, ok := data["projectData"]
	if !ok {
		// Ключа нет, метаданными считается все тело
		payload = data
	}
	switch v := payload.(type) {
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProjectData, err)
		}
		text := string(raw)
		fields.projectData = &text
	case string:
		text := v
		fields.projectData = &text
	default:
		return nil, ErrProjectDataType
	}

	if v, ok := data["type"].(string); ok {
		fields.typeValue = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := data["filename"].(string); ok {
		fields.filename = v
	}
	fields.projectID = jsonScalar(data, "project_id", "projectId")
	fields.pageURL = jsonScalar(data, "page_url", "pageUrl")
	fields.originalURL = jsonScalar(data, "original_url", "originalUrl")
	return fields, nil
}

// jsonScalar возвращает первое непустое значение по списку псевдонимов,
// приводя числа и булевы к строке, как это делают клиенты с нестрогой типизацией.
func jsonScalar(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		value, ok := data[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func fieldsFromURLEncoded(body []byte) *uploadFields {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		// ParseQuery отдает уже разобранные пары даже при ошибке
		log.Printf("Failed to parse urlencoded upload body: %v", err)
	}

	fields := &uploadFields{}
	for _, key := range []string{"projectData", "project_data"} {
		if vals, ok := values[key]; ok && len(vals) > 0 {
			fields.projectData = &vals[0]
			break
		}
	}
	fields.typeValue = strings.ToLower(strings.TrimSpace(queryFirst(values, "type")))
	fields.projectID = queryFirst(values, "project_id", "projectId")
	fields.pageURL = queryFirst(values, "page_url", "pageUrl")
	fields.originalURL = queryFirst(values, "original_url", "originalUrl")
	fields.filename = queryFirst(values, "filename")
	return fields
}

func queryFirst(values url.Values, keys ...string) string {
	for _, key := range keys {
		if vals, ok := values[key]; ok && len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return ""
}

func (s *uploadService) handleMetadata(ctx context.Context, raw string) (*UploadResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProjectData, err)
	}

	pageURL := gjson.Get(raw, "url").String()
	title := gjson.Get(raw, "title").String()
	var summary *string
	if res := gjson.Get(raw, "summary"); res.Exists() && res.Type == gjson.String {
		text := res.String()
		summary = &text
	}

	order, err := s.orders.EnsureOrder(ctx, metadataExternalID(raw, pageURL), pageURL, title, summary)
	if err != nil {
		return nil, err
	}
	if err := s.orders.MergeEnriched(ctx, order, payload); err != nil {
		return nil, err
	}

	log.Printf("Merged metadata payload into order %d (external_id=%v)", order.ID, formatExternalID(order.ExternalID))
	return &UploadResult{Mode: UploadModeMetadata, Order: order}, nil
}

// metadataExternalID берет идентификатор проекта из поля id (число или строка
// из цифр), иначе пытается достать его из URL страницы.
func metadataExternalID(raw, pageURL string) *int64 {
	idRes := gjson.Get(raw, "id")
	switch idRes.Type {
	case gjson.Number:
		if idRes.Num == float64(int64(idRes.Num)) {
			id := idRes.Int()
			return &id
		}
	case gjson.String:
		if id := utils.ParseDigits(idRes.Str); id != nil {
			return id
		}
	}
	return utils.ExtractExternalID(pageURL)
}

func (s *uploadService) handleAttachment(ctx context.Context, fields *uploadFields) (*UploadResult, error) {
	if fields.file == nil {
		return nil, ErrAttachmentRequired
	}

	externalID := utils.ParseDigits(fields.projectID)
	if externalID == nil {
		externalID = utils.ExtractExternalID(fields.pageURL)
	}
	if externalID == nil {
		externalID = utils.ExtractExternalID(fields.originalURL)
	}

	link := fields.pageURL
	if link == "" {
		link = fields.originalURL
	}

	order, err := s.orders.EnsureOrder(ctx, externalID, link, "", nil)
	if err != nil {
		return nil, err
	}

	name := fields.filename
	if name == "" {
		name = fields.file.Filename
	}
	if name == "" {
		name = "file"
	}

	saved, err := s.store.SaveProjectFile(bytes.NewReader(fields.file.Data), order.ExternalID, name, fields.file.ContentType)
	if err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		OrderID:    order.ID,
		Filename:   saved.Filename,
		StoredPath: saved.StoredPath,
		SizeBytes:  saved.SizeBytes,
		SHA256:     &saved.SHA256,
	}
	if saved.ContentType != "" {
		attachment.MimeType = &saved.ContentType
	}
	if fields.originalURL != "" {
		attachment.OriginalURL = &fields.originalURL
	}
	if fields.pageURL != "" {
		attachment.PageURL = &fields.pageURL
	}
	if err := s.orders.AddAttachment(ctx, attachment); err != nil {
		return nil, err
	}

	log.Printf("Stored attachment %s (%d bytes) for order %d", saved.Filename, saved.SizeBytes, order.ID)
	return &UploadResult{Mode: UploadModeAttachment, Order: order, Saved: saved, Attachment: attachment}, nil
}

func formatExternalID(id *int64) string {
	if id == nil {
		return "none"
	}
	return strconv.FormatInt(*id, 10)
}
