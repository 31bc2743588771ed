package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"florders/internal/clients"
	"florders/internal/handlers"
	"florders/internal/models"
	"florders/internal/repository"
	"florders/internal/service"
	"florders/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// fakeUploadService возвращает заранее заданный результат обработки.
type fakeUploadService struct {
	result         *service.UploadResult
	err            error
	gotContentType string
	gotBody        []byte
}

func (f *fakeUploadService) Process(ctx context.Context, contentType string, body []byte) (*service.UploadResult, error) {
	f.gotContentType = contentType
	f.gotBody = body
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeOrderService struct {
	orders []models.Order
	order  *models.Order
	err    error
}

func (f *fakeOrderService) IngestBatch(ctx context.Context, candidates []models.Order) (int, int, error) {
	return 0, 0, nil
}

func (f *fakeOrderService) EnsureOrder(ctx context.Context, externalID *int64, link, title string, summary *string) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) MergeEnriched(ctx context.Context, order *models.Order, payload map[string]interface{}) error {
	return f.err
}

func (f *fakeOrderService) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	return f.err
}

func (f *fakeOrderService) List(ctx context.Context, opts repository.ListOptions) ([]models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeOrderService) GetByExternalID(ctx context.Context, externalID int64) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

type fakeExportService struct {
	path      string
	err       error
	gotFormat string
}

func (f *fakeExportService) ExportOrders(ctx context.Context, format string, opts repository.ListOptions) (string, error) {
	f.gotFormat = format
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeUserService struct {
	user    *models.User
	records []models.UserAttachment
	err     error

	gotMeta    map[string]interface{}
	gotPatch   service.UserPatch
	gotUploads []service.UserFileUpload
}

func (f *fakeUserService) Create(ctx context.Context, meta map[string]interface{}) (*models.User, error) {
	f.gotMeta = meta
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) GetDetail(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) Update(ctx context.Context, uid uuid.UUID, patch service.UserPatch) (*models.User, error) {
	f.gotPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) AddAttachments(ctx context.Context, uid uuid.UUID, uploads []service.UserFileUpload) ([]models.UserAttachment, error) {
	f.gotUploads = uploads
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeFeedbackService struct {
	feedback  *models.OrderFeedback
	feedbacks []models.OrderFeedback
	err       error
}

func (f *fakeFeedbackService) Create(ctx context.Context, orderID int64, userID uuid.UUID, text string) (*models.OrderFeedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.feedback, nil
}

func (f *fakeFeedbackService) ListByOrder(ctx context.Context, orderID int64, limit, offset int) ([]models.OrderFeedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.feedbacks, nil
}

func (f *fakeFeedbackService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OrderFeedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.feedbacks, nil
}

func (f *fakeFeedbackService) UpdateStatus(ctx context.Context, id int64, status string) (*models.OrderFeedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.feedback, nil
}

func (f *fakeFeedbackService) Delete(ctx context.Context, id int64) error {
	return f.err
}

type fakeIngestService struct {
	inserted int
	updated  int
	err      error
	gotOpts  service.IngestOptions
}

func (f *fakeIngestService) IngestRSS(ctx context.Context, opts service.IngestOptions) (int, int, error) {
	f.gotOpts = opts
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.inserted, f.updated, nil
}

func (f *fakeIngestService) BuildFeedURL(opts service.IngestOptions) (string, error) {
	return "", nil
}

type fakeStagehand struct {
	result    *clients.StagehandResult
	err       error
	gotTarget string
}

func (f *fakeStagehand) ParseSite(ctx context.Context, targetURL string) (*clients.StagehandResult, error) {
	f.gotTarget = targetURL
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestUploadHandlerMetadataResponse(t *testing.T) {
	externalID := int64(123456)
	fake := &fakeUploadService{result: &service.UploadResult{
		Mode: service.UploadModeMetadata,
		Order: &models.Order{
			ID:         7,
			ExternalID: &externalID,
			Link:       "https://www.fl.ru/projects/123456/job.html",
		},
	}}
	router := newTestRouter()
	router.POST("/api/upload", handlers.NewUploadHandler(fake, 250).HandleUpload)

	w := doJSON(t, router, http.MethodPost, "/api/upload", `{"projectData": {"title": "x"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Mode   string `json:"mode"`
		Order  struct {
			ID         int64  `json:"id"`
			ExternalID *int64 `json:"external_id"`
			Link       string `json:"link"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.Equal(t, "metadata", resp.Mode)
	require.Equal(t, int64(7), resp.Order.ID)
	require.NotNil(t, resp.Order.ExternalID)
	require.Equal(t, externalID, *resp.Order.ExternalID)
	require.Equal(t, "application/json", fake.gotContentType)
}

func TestUploadHandlerAttachmentResponse(t *testing.T) {
	externalID := int64(555555)
	fake := &fakeUploadService{result: &service.UploadResult{
		Mode:  service.UploadModeAttachment,
		Order: &models.Order{ID: 3, ExternalID: &externalID},
		Saved: &storage.SavedFile{Filename: "brief.pdf", SizeBytes: 42, SHA256: "abc"},
	}}
	router := newTestRouter()
	router.POST("/api/upload", handlers.NewUploadHandler(fake, 250).HandleUpload)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "brief.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"mode":"attachment"`)
	require.Contains(t, w.Body.String(), `"sha256":"abc"`)
}

func TestUploadHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"nothing to process", service.ErrNothingToProcess, http.StatusBadRequest, "Invalid request: nothing to process"},
		{"attachment required", service.ErrAttachmentRequired, http.StatusBadRequest, "Attachment file is required"},
		{"invalid json body", service.ErrInvalidJSONBody, http.StatusUnprocessableEntity, "Invalid JSON in request body"},
		{"invalid projectData", service.ErrInvalidProjectData, http.StatusUnprocessableEntity, "Invalid JSON in projectData"},
		{"wrong projectData type", service.ErrProjectDataType, http.StatusUnprocessableEntity, "projectData must be object/array or JSON string"},
		{"file too large", storage.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "Uploaded file exceeds allowed size (250MB)"},
		{"empty file", storage.ErrEmptyFile, http.StatusBadRequest, "Uploaded file is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			router.POST("/api/upload", handlers.NewUploadHandler(&fakeUploadService{err: tt.err}, 250).HandleUpload)

			w := doJSON(t, router, http.MethodPost, "/api/upload", `{}`)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantDetail)
		})
	}
}

func TestListOrdersResponse(t *testing.T) {
	externalID := int64(111)
	fake := &fakeOrderService{orders: []models.Order{{
		ExternalID: &externalID,
		Link:       "https://www.fl.ru/projects/111/a.html",
		Title:      "Сверстать лендинг",
		RSSRaw:     datatypes.JSONMap{},
		Enriched:   datatypes.JSONMap{},
	}}}
	router := newTestRouter()
	router.GET("/api/orders", handlers.NewOrdersHandler(fake, &fakeExportService{}).ListOrders)

	w := doJSON(t, router, http.MethodGet, "/api/orders?limit=10&offset=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Сверстать лендинг")
	require.Contains(t, w.Body.String(), `"limit":10`)
	require.Contains(t, w.Body.String(), `"offset":5`)
}

func TestGetOrderNotFound(t *testing.T) {
	fake := &fakeOrderService{err: service.ErrOrderNotFound}
	router := newTestRouter()
	router.GET("/api/orders/:external_id", handlers.NewOrdersHandler(fake, &fakeExportService{}).GetOrder)

	w := doJSON(t, router, http.MethodGet, "/api/orders/424242", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Order with external_id 424242 not found")
}

func TestGetOrderInvalidID(t *testing.T) {
	router := newTestRouter()
	router.GET("/api/orders/:external_id", handlers.NewOrdersHandler(&fakeOrderService{}, &fakeExportService{}).GetOrder)

	w := doJSON(t, router, http.MethodGet, "/api/orders/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportOrdersServesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders_test.csv")
	require.NoError(t, os.WriteFile(path, []byte("external_id,link\n"), 0o644))

	fake := &fakeExportService{path: path}
	router := newTestRouter()
	router.GET("/api/orders/export", handlers.NewOrdersHandler(&fakeOrderService{}, fake).ExportOrders)

	w := doJSON(t, router, http.MethodGet, "/api/orders/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "csv", fake.gotFormat)
	require.Contains(t, w.Body.String(), "external_id,link")
	require.Contains(t, w.Header().Get("Content-Disposition"), "orders_test.csv")
}

func TestExportOrdersUnsupportedFormat(t *testing.T) {
	fake := &fakeExportService{err: service.ErrUnsupportedFormat}
	router := newTestRouter()
	router.GET("/api/orders/export", handlers.NewOrdersHandler(&fakeOrderService{}, fake).ExportOrders)

	w := doJSON(t, router, http.MethodGet, "/api/orders/export?format=pdf", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "unsupported format")
}

func TestCreateUserReturnsUID(t *testing.T) {
	uid := uuid.New()
	fake := &fakeUserService{user: &models.User{UID: uid}}
	router := newTestRouter()
	router.POST("/api/users", handlers.NewUsersHandler(fake, 250).CreateUser)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{"meta": {"source": "bot"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), uid.String())
	require.Equal(t, "bot", fake.gotMeta["source"])
}

func TestCreateUserEmptyBody(t *testing.T) {
	fake := &fakeUserService{user: &models.User{UID: uuid.New()}}
	router := newTestRouter()
	router.POST("/api/users", handlers.NewUsersHandler(fake, 250).CreateUser)

	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, fake.gotMeta)
}

func TestCreateUserRejectsScalarMeta(t *testing.T) {
	router := newTestRouter()
	router.POST("/api/users", handlers.NewUsersHandler(&fakeUserService{}, 250).CreateUser)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{"meta": "yes"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "meta must be an object")
}

func TestGetUserNotFound(t *testing.T) {
	fake := &fakeUserService{err: service.ErrUserNotFound}
	router := newTestRouter()
	router.GET("/api/users/:uid", handlers.NewUsersHandler(fake, 250).GetUser)

	uid := uuid.New()
	w := doJSON(t, router, http.MethodGet, "/api/users/"+uid.String(), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "User "+uid.String()+" not found")
}

func TestGetUserInvalidUID(t *testing.T) {
	router := newTestRouter()
	router.GET("/api/users/:uid", handlers.NewUsersHandler(&fakeUserService{}, 250).GetUser)

	w := doJSON(t, router, http.MethodGet, "/api/users/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUserPassesPatch(t *testing.T) {
	uid := uuid.New()
	fake := &fakeUserService{user: &models.User{UID: uid}}
	router := newTestRouter()
	router.PATCH("/api/users/:uid", handlers.NewUsersHandler(fake, 250).UpdateUser)

	w := doJSON(t, router, http.MethodPatch, "/api/users/"+uid.String(),
		`{"competencies_text": "Верстка", "categories": ["Web", "SEO"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, fake.gotPatch.CompetenciesText)
	require.Equal(t, "Верстка", *fake.gotPatch.CompetenciesText)
	require.NotNil(t, fake.gotPatch.Categories)
	require.Equal(t, []string{"Web", "SEO"}, *fake.gotPatch.Categories)
}

func TestUploadUserFilesCollectsBothFieldNames(t *testing.T) {
	uid := uuid.New()
	fake := &fakeUserService{records: []models.UserAttachment{{ID: 1, Filename: "a.txt"}}}
	router := newTestRouter()
	router.POST("/api/users/:uid/files", handlers.NewUsersHandler(fake, 250).UploadFiles)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "a.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("first"))
	require.NoError(t, err)
	part, err = mw.CreateFormFile("files[]", "b.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/"+uid.String()+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.gotUploads, 2)
	require.Equal(t, "a.txt", fake.gotUploads[0].Filename)
	require.Equal(t, "b.txt", fake.gotUploads[1].Filename)
}

func TestUploadUserFilesNoneUploaded(t *testing.T) {
	uid := uuid.New()
	router := newTestRouter()
	router.POST("/api/users/:uid/files", handlers.NewUsersHandler(&fakeUserService{}, 250).UploadFiles)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("comment", "no files here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/"+uid.String()+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "No files uploaded")
}

func TestCreateFeedbackDuplicate(t *testing.T) {
	fake := &fakeFeedbackService{err: service.ErrDuplicateFeedback}
	router := newTestRouter()
	router.POST("/api/feedbacks", handlers.NewFeedbacksHandler(fake).CreateFeedback)

	uid := uuid.New()
	w := doJSON(t, router, http.MethodPost, "/api/feedbacks",
		`{"order_id": 5, "user_id": "`+uid.String()+`", "feedback_text": "hi"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already left feedback for order 5")
}

func TestCreateFeedbackMissingText(t *testing.T) {
	router := newTestRouter()
	router.POST("/api/feedbacks", handlers.NewFeedbacksHandler(&fakeFeedbackService{}).CreateFeedback)

	uid := uuid.New()
	w := doJSON(t, router, http.MethodPost, "/api/feedbacks",
		`{"order_id": 5, "user_id": "`+uid.String()+`", "feedback_text": "  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "feedback_text is required")
}

func TestUpdateFeedbackStatusInvalidValue(t *testing.T) {
	fake := &fakeFeedbackService{err: service.ErrInvalidStatus}
	router := newTestRouter()
	router.PATCH("/api/feedbacks/:id/status", handlers.NewFeedbacksHandler(fake).UpdateStatus)

	w := doJSON(t, router, http.MethodPatch, "/api/feedbacks/9/status?status=approved", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid status: approved. Must be one of: pending, accepted, rejected")
}

func TestDeleteFeedbackResponse(t *testing.T) {
	router := newTestRouter()
	router.DELETE("/api/feedbacks/:id", handlers.NewFeedbacksHandler(&fakeFeedbackService{}).DeleteFeedback)

	w := doJSON(t, router, http.MethodDelete, "/api/feedbacks/12", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Feedback 12 deleted")
}

func TestDeleteFeedbackNotFound(t *testing.T) {
	fake := &fakeFeedbackService{err: service.ErrFeedbackNotFound}
	router := newTestRouter()
	router.DELETE("/api/feedbacks/:id", handlers.NewFeedbacksHandler(fake).DeleteFeedback)

	w := doJSON(t, router, http.MethodDelete, "/api/feedbacks/12", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Feedback 12 not found")
}

func TestTriggerIngest(t *testing.T) {
	fake := &fakeIngestService{inserted: 3, updated: 2}
	router := newTestRouter()
	router.POST("/api/rss/ingest", handlers.NewIngestHandler(fake).TriggerIngest)

	w := doJSON(t, router, http.MethodPost, "/api/rss/ingest", `{"category": 5, "limit": 10}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"inserted":3`)
	require.Contains(t, w.Body.String(), `"updated":2`)
	require.NotNil(t, fake.gotOpts.Category)
	require.Equal(t, 5, *fake.gotOpts.Category)
	require.NotNil(t, fake.gotOpts.Limit)
	require.Equal(t, 10, *fake.gotOpts.Limit)
}

func TestTriggerIngestEmptyBody(t *testing.T) {
	fake := &fakeIngestService{inserted: 1}
	router := newTestRouter()
	router.POST("/api/rss/ingest", handlers.NewIngestHandler(fake).TriggerIngest)

	req := httptest.NewRequest(http.MethodPost, "/api/rss/ingest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "", fake.gotOpts.FeedURL)
}

func TestTriggerIngestFeedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail string
	}{
		{"fetch failed", service.ErrFeedUnavailable, "Failed to fetch RSS feed"},
		{"parse failed", service.ErrFeedInvalid, "Failed to parse RSS feed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			router.POST("/api/rss/ingest", handlers.NewIngestHandler(&fakeIngestService{err: tt.err}).TriggerIngest)

			w := doJSON(t, router, http.MethodPost, "/api/rss/ingest", `{}`)
			require.Equal(t, http.StatusBadGateway, w.Code)
			require.Contains(t, w.Body.String(), tt.wantDetail)
		})
	}
}

func TestParseSitePassthrough(t *testing.T) {
	fake := &fakeStagehand{result: &clients.StagehandResult{
		StatusCode: http.StatusOK,
		Success:    true,
		Payload:    map[string]interface{}{"success": true, "title": "Проект"},
	}}
	router := newTestRouter()
	router.POST("/api/parse-site", handlers.NewStagehandHandler(fake).ParseSite)

	w := doJSON(t, router, http.MethodPost, "/api/parse-site", `{"site": "https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Проект")
	require.Equal(t, "https://example.com", fake.gotTarget)
}

func TestParseSiteMissingURL(t *testing.T) {
	router := newTestRouter()
	router.POST("/api/parse-site", handlers.NewStagehandHandler(&fakeStagehand{}).ParseSite)

	w := doJSON(t, router, http.MethodPost, "/api/parse-site", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "url is required")
}

func TestParseSiteUnavailable(t *testing.T) {
	fake := &fakeStagehand{err: clients.ErrStagehandUnavailable}
	router := newTestRouter()
	router.POST("/api/parse-site", handlers.NewStagehandHandler(fake).ParseSite)

	w := doJSON(t, router, http.MethodPost, "/api/parse-site", `{"url": "https://example.com"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "Stagehand service unavailable")
}

func TestParseSiteUpstreamError(t *testing.T) {
	fake := &fakeStagehand{result: &clients.StagehandResult{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Error:      "browser crashed",
	}}
	router := newTestRouter()
	router.POST("/api/parse-site", handlers.NewStagehandHandler(fake).ParseSite)

	w := doJSON(t, router, http.MethodPost, "/api/parse-site", `{"url": "https://example.com"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "browser crashed")
}

func TestParseSiteUpstreamFailureFlag(t *testing.T) {
	fake := &fakeStagehand{result: &clients.StagehandResult{
		StatusCode: http.StatusOK,
		Success:    false,
	}}
	router := newTestRouter()
	router.POST("/api/parse-site", handlers.NewStagehandHandler(fake).ParseSite)

	w := doJSON(t, router, http.MethodPost, "/api/parse-site", `{"url": "https://example.com"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "Stagehand responded with failure")
}

// Проверяем, что структуры ответов listing-эндпоинтов сериализуются с
// ожидаемыми ключами пагинации.
func TestListFeedbacksPaginationEcho(t *testing.T) {
	now := time.Now().UTC()
	fake := &fakeFeedbackService{feedbacks: []models.OrderFeedback{{
		ID: 1, OrderID: 2, UserID: uuid.New(), FeedbackText: "text",
		Status: models.FeedbackStatusPending, CreatedAt: now, UpdatedAt: now,
	}}}
	router := newTestRouter()
	router.GET("/api/feedbacks/order/:id", handlers.NewFeedbacksHandler(fake).ListByOrder)

	w := doJSON(t, router, http.MethodGet, "/api/feedbacks/order/2?limit=7&offset=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"limit":7`)
	require.Contains(t, w.Body.String(), `"offset":3`)
	require.Contains(t, w.Body.String(), `"status":"pending"`)
}
