package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory db.Querier that mirrors the SQL semantics of the
// subscription queries closely enough to exercise whole passes.
type memStore struct {
	mu        sync.Mutex
	rows      map[string]db.Subscription
	users     map[string]string // lower(email) -> user id
	profiles  map[string]string
	orphans   map[string]db.UpsertOrphanedSubscriptionParams
	writes    int
	tick      int
	failWrite map[string]error
	failList  error
}

func newMemStore() *memStore {
	return &memStore{
		rows:      make(map[string]db.Subscription),
		users:     make(map[string]string),
		profiles:  make(map[string]string),
		orphans:   make(map[string]db.UpsertOrphanedSubscriptionParams),
		failWrite: make(map[string]error),
	}
}

func (s *memStore) put(row db.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.UserID] = row
}

func (s *memStore) get(userID string) (db.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[userID]
	return row, ok
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memStore) touch(row *db.Subscription) {
	s.tick++
	s.writes++
	row.UpdatedAt = pgtype.Timestamptz{Time: testNow.Add(time.Duration(s.tick) * time.Second), Valid: true}
}

func (s *memStore) AdvisoryUnlock(ctx context.Context, key int64) (bool, error) {
	return true, nil
}

func (s *memStore) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	return true, nil
}

func (s *memStore) CancelSubscription(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failWrite[userID]; err != nil {
		return 0, err
	}
	row, ok := s.rows[userID]
	if !ok || row.Status == "free" || row.Status == "cancelled" {
		return 0, nil
	}
	row.Status = "cancelled"
	row.PlanType = helpers.StringToPgText("free")
	row.ProviderSubscriptionID = pgtype.Text{}
	s.touch(&row)
	s.rows[userID] = row
	return 1, nil
}

func (s *memStore) ResetSubscriptionCustomer(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failWrite[userID]; err != nil {
		return 0, err
	}
	row, ok := s.rows[userID]
	if !ok {
		return 0, nil
	}
	row.Status = "free"
	row.PlanType = helpers.StringToPgText("free")
	row.ProviderCustomerID = pgtype.Text{}
	row.ProviderSubscriptionID = pgtype.Text{}
	row.TrialEndsAt = pgtype.Timestamptz{}
	row.CurrentPeriodEnd = pgtype.Timestamptz{}
	row.MonthlyAmountDue = decimal.NullDecimal{}
	row.HasDiscount = false
	row.CouponID = pgtype.Text{}
	s.touch(&row)
	s.rows[userID] = row
	return 1, nil
}

func (s *memStore) findOne(match func(db.Subscription) bool) (db.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.sortedIDs() {
		if row := s.rows[id]; match(row) {
			return row, nil
		}
	}
	return db.Subscription{}, pgx.ErrNoRows
}

func (s *memStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *memStore) GetSubscriptionByEmail(ctx context.Context, email string) (db.Subscription, error) {
	return s.findOne(func(r db.Subscription) bool {
		return r.UserEmail.Valid && strings.EqualFold(r.UserEmail.String, email)
	})
}

func (s *memStore) GetSubscriptionByProviderCustomerID(ctx context.Context, id pgtype.Text) (db.Subscription, error) {
	return s.findOne(func(r db.Subscription) bool {
		return r.ProviderCustomerID.Valid && r.ProviderCustomerID.String == id.String
	})
}

func (s *memStore) GetSubscriptionByProviderSubscriptionID(ctx context.Context, id pgtype.Text) (db.Subscription, error) {
	return s.findOne(func(r db.Subscription) bool {
		return r.ProviderSubscriptionID.Valid && r.ProviderSubscriptionID.String == id.String
	})
}

func (s *memStore) GetSubscriptionByUserID(ctx context.Context, userID string) (db.Subscription, error) {
	if row, ok := s.get(userID); ok {
		return row, nil
	}
	return db.Subscription{}, pgx.ErrNoRows
}

func (s *memStore) GetUserIDByEmail(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.users[strings.ToLower(email)]; ok {
		return id, nil
	}
	return "", pgx.ErrNoRows
}

func (s *memStore) ListSubscriptionsWithCustomer(ctx context.Context, arg db.ListSubscriptionsWithCustomerParams) ([]db.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []db.Subscription
	for _, id := range s.sortedIDs() {
		row := s.rows[id]
		if !row.ProviderCustomerID.Valid || id <= arg.AfterUserID {
			continue
		}
		out = append(out, row)
		if int32(len(out)) == arg.RowLimit {
			break
		}
	}
	return out, nil
}

func (s *memStore) UpsertOrphanedSubscription(ctx context.Context, arg db.UpsertOrphanedSubscriptionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orphans[arg.ProviderSubscriptionID] = arg
	return nil
}

func (s *memStore) UpsertSubscription(ctx context.Context, arg db.UpsertSubscriptionParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failWrite[arg.UserID]; err != nil {
		return 0, err
	}

	next := db.Subscription{
		UserID:                 arg.UserID,
		UserEmail:              arg.UserEmail,
		Status:                 arg.Status,
		PlanType:               arg.PlanType,
		ProviderCustomerID:     arg.ProviderCustomerID,
		ProviderSubscriptionID: arg.ProviderSubscriptionID,
		TrialEndsAt:            arg.TrialEndsAt,
		CurrentPeriodEnd:       arg.CurrentPeriodEnd,
		MonthlyAmountDue:       arg.MonthlyAmountDue,
		HasDiscount:            arg.HasDiscount,
		CouponID:               arg.CouponID,
	}

	if prev, ok := s.rows[arg.UserID]; ok {
		if !next.UserEmail.Valid {
			next.UserEmail = prev.UserEmail
		}
		next.CreatedAt = prev.CreatedAt
		next.UpdatedAt = prev.UpdatedAt
		if sameState(prev, next) {
			return 0, nil
		}
	} else {
		next.CreatedAt = pgtype.Timestamptz{Time: testNow, Valid: true}
	}

	s.touch(&next)
	s.rows[arg.UserID] = next
	return 1, nil
}

func (s *memStore) UpsertUserProfileCustomer(ctx context.Context, arg db.UpsertUserProfileCustomerParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[arg.UserID] = helpers.PgTextToString(arg.ProviderCustomerID)
	return nil
}

func sameState(a, b db.Subscription) bool {
	return a.UserEmail == b.UserEmail &&
		a.Status == b.Status &&
		a.PlanType == b.PlanType &&
		a.ProviderCustomerID == b.ProviderCustomerID &&
		a.ProviderSubscriptionID == b.ProviderSubscriptionID &&
		sameTime(a.TrialEndsAt, b.TrialEndsAt) &&
		sameTime(a.CurrentPeriodEnd, b.CurrentPeriodEnd) &&
		a.MonthlyAmountDue.Valid == b.MonthlyAmountDue.Valid &&
		a.MonthlyAmountDue.Decimal.Equal(b.MonthlyAmountDue.Decimal) &&
		a.HasDiscount == b.HasDiscount &&
		a.CouponID == b.CouponID
}

func sameTime(a, b pgtype.Timestamptz) bool {
	return a.Valid == b.Valid && a.Time.Equal(b.Time)
}

// memProvider is an in-memory payment_sync.Provider.
type memProvider struct {
	mu            sync.Mutex
	customers     map[string]ps.Customer
	subs          []ps.Subscription
	missing       map[string]bool
	customerErr   map[string]error
	listErr       map[string]error
	customerCalls int
}

func newMemProvider() *memProvider {
	return &memProvider{
		customers:   make(map[string]ps.Customer),
		missing:     make(map[string]bool),
		customerErr: make(map[string]error),
		listErr:     make(map[string]error),
	}
}

func (p *memProvider) addCustomer(c ps.Customer) {
	p.customers[c.ExternalID] = c
}

func (p *memProvider) addSub(s ps.Subscription) {
	p.subs = append(p.subs, s)
}

func (p *memProvider) GetServiceName() string { return "mem" }

func (p *memProvider) CheckConnection(ctx context.Context) error { return nil }

func (p *memProvider) GetCustomer(ctx context.Context, id string) (ps.Customer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customerCalls++
	if err := p.customerErr[id]; err != nil {
		return ps.Customer{}, err
	}
	c, ok := p.customers[id]
	if !ok || p.missing[id] {
		return ps.Customer{}, fmt.Errorf("customer %s: %w", id, ps.ErrCustomerNotFound)
	}
	return c, nil
}

func (p *memProvider) ListCustomerSubscriptions(ctx context.Context, customerID string) ([]ps.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.customerErr[customerID]; err != nil {
		return nil, err
	}
	if p.missing[customerID] {
		return nil, fmt.Errorf("customer %s: %w", customerID, ps.ErrCustomerNotFound)
	}
	var out []ps.Subscription
	for _, s := range p.subs {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *memProvider) ListSubscriptions(ctx context.Context, params ps.ListSubscriptionsParams) (ps.SubscriptionPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.listErr[params.Status]; err != nil {
		return ps.SubscriptionPage{}, err
	}

	var matching []ps.Subscription
	for _, s := range p.subs {
		if params.Status == "all" || s.Status == params.Status {
			matching = append(matching, s)
		}
	}

	start := 0
	if params.StartingAfter != "" {
		for i, s := range matching {
			if s.ExternalID == params.StartingAfter {
				start = i + 1
				break
			}
		}
	}

	limit := int(params.Limit)
	if limit <= 0 {
		limit = 10
	}
	end := start + limit
	if end > len(matching) {
		end = len(matching)
	}

	page := ps.SubscriptionPage{Subscriptions: matching[start:end], HasMore: end < len(matching)}
	if page.HasMore {
		page.NextCursor = matching[end-1].ExternalID
	}
	return page, nil
}

func monthlySub(id, customerID, status string, cents int64) ps.Subscription {
	return ps.Subscription{
		ExternalID: id,
		CustomerID: customerID,
		Status:     status,
		Items: []ps.SubscriptionItem{{
			ExternalID: "si_" + id,
			Price: ps.Price{
				ExternalID: "price_monthly",
				UnitAmount: cents,
				Currency:   "usd",
				Recurring:  &ps.RecurringInterval{Interval: "month", IntervalCount: 1},
			},
			Quantity: 1,
		}},
		Created: testNow.Add(-30 * 24 * time.Hour),
	}
}

func localRow(userID, email, status, customerID, subscriptionID string) db.Subscription {
	plan := "lunary_plus"
	if status == "free" || status == "cancelled" {
		plan = "free"
	}
	return db.Subscription{
		UserID:                 userID,
		UserEmail:              helpers.StringToPgText(email),
		Status:                 status,
		PlanType:               helpers.StringToPgText(plan),
		ProviderCustomerID:     helpers.StringToPgText(customerID),
		ProviderSubscriptionID: helpers.StringToPgText(subscriptionID),
		UpdatedAt:              pgtype.Timestamptz{Time: testNow.Add(-time.Hour), Valid: true},
	}
}

func fixedNow() time.Time { return testNow }

var (
	_ db.Querier  = (*memStore)(nil)
	_ ps.Provider = (*memProvider)(nil)
)
