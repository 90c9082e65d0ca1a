package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tradepulse/backend/internal/billing"
	"github.com/tradepulse/backend/internal/domain/feedback"
	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/domain/shortlink"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/trade"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[int64]*user.User
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[int64]*user.User),
		NextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	u.ID = m.NextID
	m.NextID++
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("user")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.NotFound("user")
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, errors.NotFound("user")
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Users[u.ID]; !ok {
		return errors.NotFound("user")
	}
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	var result []*user.User
	for _, u := range m.Users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *MockUserRepository) CountByFunnelStage(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, u := range m.Users {
		counts[u.FunnelStage]++
	}
	return counts, nil
}

// MockSubscriptionRepository is a mock implementation of subscription.Repository
type MockSubscriptionRepository struct {
	Subs        map[int64]*subscription.Subscription
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		Subs:   make(map[int64]*subscription.Subscription),
		NextID: 1,
	}
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	sub.ID = m.NextID
	m.NextID++
	m.Subs[sub.ID] = sub
	return sub.ID, nil
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	s, ok := m.Subs[id]
	if !ok {
		return nil, errors.NotFound("subscription")
	}
	return s, nil
}

func (m *MockSubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	// Newest non-terminal row wins, matching the SQL ORDER BY id DESC.
	var current *subscription.Subscription
	for _, s := range m.Subs {
		if s.UserID != userID {
			continue
		}
		if s.Status != subscription.StatusPending && s.Status != subscription.StatusActive {
			continue
		}
		if current == nil || s.ID > current.ID {
			current = s
		}
	}
	if current == nil {
		return nil, errors.NotFound("subscription")
	}
	return current, nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Subs[sub.ID]; !ok {
		return errors.NotFound("subscription")
	}
	m.Subs[sub.ID] = sub
	return nil
}

func (m *MockSubscriptionRepository) List(ctx context.Context, filter subscription.Filter, limit, offset int) ([]*subscription.Subscription, int64, error) {
	var result []*subscription.Subscription
	for _, s := range m.Subs {
		if filter.Tier != "" && s.Tier != filter.Tier {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *MockSubscriptionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	var result []*subscription.Subscription
	for _, s := range m.Subs {
		if s.Status == subscription.StatusActive && s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSubscriptionRepository) CountActiveByTier(ctx context.Context) (map[subscription.Tier]int64, error) {
	counts := make(map[subscription.Tier]int64)
	for _, s := range m.Subs {
		if s.Status == subscription.StatusActive {
			counts[s.Tier]++
		}
	}
	return counts, nil
}

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	Payments    map[string]*payment.Payment
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments: make(map[string]*payment.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Payments[id]
	if !ok {
		return nil, errors.NotFound("payment")
	}
	return p, nil
}

func (m *MockPaymentRepository) GetByExternalID(ctx context.Context, externalID string) (*payment.Payment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, p := range m.Payments {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, errors.NotFound("payment")
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Payments[p.ID]; !ok {
		return errors.NotFound("payment")
	}
	m.Payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Payment, int64, error) {
	var result []*payment.Payment
	for _, p := range m.Payments {
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Provider != "" && p.Provider != filter.Provider {
			continue
		}
		if filter.From != nil && p.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && p.CreatedAt.After(*filter.To) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *MockPaymentRepository) Aggregate(ctx context.Context, filter payment.Filter) (*payment.Stats, error) {
	stats := &payment.Stats{CountByStatus: make(map[string]int64)}
	for _, p := range m.Payments {
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		stats.CountByStatus[p.Status]++
		switch p.Status {
		case payment.StatusCompleted:
			stats.RevenueCents += p.AmountCents
		case payment.StatusRefunded:
			stats.RefundedCents += p.AmountCents
		}
	}
	return stats, nil
}

// MockTradeRepository is a mock implementation of trade.Repository
type MockTradeRepository struct {
	Trades      map[int64]*trade.Outcome
	NextID      int64
	CreateError error
	ListError   error
}

func NewMockTradeRepository() *MockTradeRepository {
	return &MockTradeRepository{
		Trades: make(map[int64]*trade.Outcome),
		NextID: 1,
	}
}

func (m *MockTradeRepository) Create(ctx context.Context, o *trade.Outcome) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	o.ID = m.NextID
	m.NextID++
	m.Trades[o.ID] = o
	return o.ID, nil
}

func (m *MockTradeRepository) GetByID(ctx context.Context, userID, id int64) (*trade.Outcome, error) {
	o, ok := m.Trades[id]
	if !ok || o.UserID != userID {
		return nil, errors.NotFound("trade")
	}
	return o, nil
}

func (m *MockTradeRepository) Delete(ctx context.Context, userID, id int64) error {
	o, ok := m.Trades[id]
	if !ok || o.UserID != userID {
		return errors.NotFound("trade")
	}
	delete(m.Trades, id)
	return nil
}

func (m *MockTradeRepository) matches(o *trade.Outcome, filter trade.Filter) bool {
	if filter.Origin != "" && o.Origin != filter.Origin {
		return false
	}
	if filter.Result != "" && o.Result != filter.Result {
		return false
	}
	if filter.From != nil && o.ClosedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && o.ClosedAt.After(*filter.To) {
		return false
	}
	return true
}

func (m *MockTradeRepository) List(ctx context.Context, userID int64, filter trade.Filter, limit, offset int) ([]*trade.Outcome, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	all, err := m.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return all, int64(len(all)), nil
}

func (m *MockTradeRepository) ListForUser(ctx context.Context, userID int64, filter trade.Filter) ([]*trade.Outcome, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*trade.Outcome
	for _, o := range m.Trades {
		if o.UserID == userID && m.matches(o, filter) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClosedAt.Before(result[j].ClosedAt) })
	return result, nil
}

func (m *MockTradeRepository) ListAll(ctx context.Context, filter trade.Filter) ([]*trade.Outcome, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*trade.Outcome
	for _, o := range m.Trades {
		if m.matches(o, filter) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClosedAt.Before(result[j].ClosedAt) })
	return result, nil
}

// MockShortLinkRepository is a mock implementation of shortlink.Repository.
// Click writes happen off the request goroutine, so access is locked and
// reads hand out copies.
type MockShortLinkRepository struct {
	mu          sync.Mutex
	Links       map[string]*shortlink.ShortLink
	NextID      int64
	CreateError error
}

func NewMockShortLinkRepository() *MockShortLinkRepository {
	return &MockShortLinkRepository{
		Links:  make(map[string]*shortlink.ShortLink),
		NextID: 1,
	}
}

func (m *MockShortLinkRepository) Create(ctx context.Context, link *shortlink.ShortLink) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Links[link.Slug]; ok {
		return 0, errors.Conflict(fmt.Sprintf("slug %q already exists", link.Slug))
	}
	link.ID = m.NextID
	m.NextID++
	m.Links[link.Slug] = link
	return link.ID, nil
}

func (m *MockShortLinkRepository) GetBySlug(ctx context.Context, slug string) (*shortlink.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.Links[slug]
	if !ok {
		return nil, errors.NotFound("short link")
	}
	cp := *link
	return &cp, nil
}

func (m *MockShortLinkRepository) Update(ctx context.Context, link *shortlink.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Links[link.Slug]; !ok {
		return errors.NotFound("short link")
	}
	m.Links[link.Slug] = link
	return nil
}

func (m *MockShortLinkRepository) Delete(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Links[slug]; !ok {
		return errors.NotFound("short link")
	}
	delete(m.Links, slug)
	return nil
}

func (m *MockShortLinkRepository) List(ctx context.Context, limit, offset int) ([]*shortlink.ShortLink, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*shortlink.ShortLink
	for _, link := range m.Links {
		cp := *link
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *MockShortLinkRepository) IncrementClicks(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.Links[slug]
	if !ok {
		return errors.NotFound("short link")
	}
	link.Clicks++
	return nil
}

// MockFeedbackRepository is a mock implementation of feedback.Repository
type MockFeedbackRepository struct {
	Entries     []*feedback.Feedback
	NextID      int64
	CreateError error
}

func NewMockFeedbackRepository() *MockFeedbackRepository {
	return &MockFeedbackRepository{NextID: 1}
}

func (m *MockFeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	f.ID = m.NextID
	m.NextID++
	m.Entries = append(m.Entries, f)
	return f.ID, nil
}

func (m *MockFeedbackRepository) List(ctx context.Context, limit, offset int) ([]*feedback.Feedback, int64, error) {
	return m.Entries, int64(len(m.Entries)), nil
}

// MockBillingProvider is a fake billing.Provider recording calls
type MockBillingProvider struct {
	NextSessionID string
	NextURL       string
	CreateError   error
	CancelError   error
	Canceled      []string
	Created       int
}

func NewMockBillingProvider() *MockBillingProvider {
	return &MockBillingProvider{
		NextSessionID: "cs_test_1",
		NextURL:       "https://checkout.example.com/cs_test_1",
	}
}

func (m *MockBillingProvider) CreateCheckout(ctx context.Context, userID int64, description string, amountCents int64, currency string) (*billing.CheckoutSession, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.Created++
	return &billing.CheckoutSession{ID: m.NextSessionID, URL: m.NextURL}, nil
}

func (m *MockBillingProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	if m.CancelError != nil {
		return m.CancelError
	}
	m.Canceled = append(m.Canceled, subscriptionID)
	return nil
}
