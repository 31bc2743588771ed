package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"florders/internal/models"
	"florders/internal/repository"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
)

var (
	_ repository.OrderRepository    = (*fakeOrderRepo)(nil)
	_ repository.UserRepository     = (*fakeUserRepo)(nil)
	_ repository.FeedbackRepository = (*fakeFeedbackRepo)(nil)
)

// fakeOrderRepo держит заказы в памяти, повторяя контракт репозитория.
type fakeOrderRepo struct {
	mu          sync.Mutex
	nextID      int64
	orders      map[int64]models.Order
	attachments []models.Attachment
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[int64]models.Order)}
}

func (r *fakeOrderRepo) Transaction(ctx context.Context, fn func(repository.OrderRepository) error) error {
	return fn(r)
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.UpdatedAt = time.Now().UTC()
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) FindForFeed(ctx context.Context, externalID *int64, link string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if externalID != nil {
			if order.ExternalID != nil && *order.ExternalID == *externalID {
				found := order
				return &found, nil
			}
			if order.Link == link {
				found := order
				return &found, nil
			}
			continue
		}
		if order.Link == link {
			found := order
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByExternalID(ctx context.Context, externalID int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.ExternalID != nil && *order.ExternalID == externalID {
			found := order
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByLink(ctx context.Context, link string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.Link == link {
			found := order
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		found := order
		return &found, nil
	}
	return nil, nil
}

func (r *fakeOrderRepo) GetWithAttachments(ctx context.Context, externalID int64) (*models.Order, error) {
	order, err := r.FindByExternalID(ctx, externalID)
	if err != nil || order == nil {
		return order, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order.Attachments = []models.Attachment{}
	for _, att := range r.attachments {
		if att.OrderID == order.ID {
			order.Attachments = append(order.Attachments, att)
		}
	}
	return order, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, opts repository.ListOptions) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		order.Attachments = []models.Attachment{}
		for _, att := range r.attachments {
			if att.OrderID == order.ID {
				order.Attachments = append(order.Attachments, att)
			}
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].UpdatedAt.After(orders[j].UpdatedAt)
	})
	return orders, nil
}

func (r *fakeOrderRepo) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = int64(len(r.attachments) + 1)
	attachment.CreatedAt = time.Now().UTC()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeOrderRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

// fakeUserRepo держит пользователей в памяти.
type fakeUserRepo struct {
	mu          sync.Mutex
	nextAttID   int64
	users       map[uuid.UUID]models.User
	attachments []models.UserAttachment
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextAttID: 1, users: make(map[uuid.UUID]models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.UID] = *user
	return nil
}

func (r *fakeUserRepo) Save(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.UpdatedAt = time.Now().UTC()
	r.users[user.UID] = *user
	return nil
}

func (r *fakeUserRepo) GetByUID(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[uid]; ok {
		found := user
		return &found, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetWithAttachments(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	user, err := r.GetByUID(ctx, uid)
	if err != nil || user == nil {
		return user, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Attachments = []models.UserAttachment{}
	for _, att := range r.attachments {
		if att.UserUID == uid {
			user.Attachments = append(user.Attachments, att)
		}
	}
	return user, nil
}

func (r *fakeUserRepo) AddAttachment(ctx context.Context, attachment *models.UserAttachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = r.nextAttID
	r.nextAttID++
	attachment.CreatedAt = time.Now().UTC()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// fakeFeedbackRepo держит отклики в памяти.
type fakeFeedbackRepo struct {
	mu        sync.Mutex
	nextID    int64
	feedbacks map[int64]models.OrderFeedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{nextID: 1, feedbacks: make(map[int64]models.OrderFeedback)}
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, feedback *models.OrderFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	feedback.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now
	r.feedbacks[feedback.ID] = *feedback
	return nil
}

func (r *fakeFeedbackRepo) Save(ctx context.Context, feedback *models.OrderFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	feedback.UpdatedAt = time.Now().UTC()
	r.feedbacks[feedback.ID] = *feedback
	return nil
}

func (r *fakeFeedbackRepo) GetByID(ctx context.Context, id int64) (*models.OrderFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if feedback, ok := r.feedbacks[id]; ok {
		found := feedback
		return &found, nil
	}
	return nil, nil
}

func (r *fakeFeedbackRepo) FindByOrderAndUser(ctx context.Context, orderID int64, userID uuid.UUID) (*models.OrderFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, feedback := range r.feedbacks {
		if feedback.OrderID == orderID && feedback.UserID == userID {
			found := feedback
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeFeedbackRepo) ListByOrder(ctx context.Context, orderID int64, limit, offset int) ([]models.OrderFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OrderFeedback
	for _, feedback := range r.feedbacks {
		if feedback.OrderID == orderID {
			out = append(out, feedback)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeFeedbackRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OrderFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OrderFeedback
	for _, feedback := range r.feedbacks {
		if feedback.UserID == userID {
			out = append(out, feedback)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeFeedbackRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.feedbacks, id)
	return nil
}

func (r *fakeFeedbackRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.feedbacks)), nil
}

// fakeFeedClient отдает заранее подготовленную ленту.
type fakeFeedClient struct {
	feed    *gofeed.Feed
	err     error
	lastURL string
}

func (c *fakeFeedClient) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	c.lastURL = feedURL
	if c.err != nil {
		return nil, c.err
	}
	return c.feed, nil
}
