package payment_sync

import (
	"context"
	"errors"
	"time"
)

// ErrCustomerNotFound is returned when the provider reports that a customer
// does not exist or has been deleted. It is authoritative, not transient.
var ErrCustomerNotFound = errors.New("payment_sync: customer not found")

// Customer represents a customer as seen by the payment provider.
type Customer struct {
	ExternalID string
	Email      string
	Name       string
	Metadata   map[string]string
}

// RecurringInterval describes how often a recurring price bills.
type RecurringInterval struct {
	Interval      string // "day", "week", "month" or "year"
	IntervalCount int64
}

// Price is the priced portion of a subscription line item.
type Price struct {
	ExternalID string
	UnitAmount int64  // In the smallest currency unit (e.g., cents)
	Currency   string // ISO currency code (e.g., "usd")
	Recurring  *RecurringInterval
	Metadata   map[string]string
}

// SubscriptionItem is a single priced line on a subscription.
type SubscriptionItem struct {
	ExternalID string
	Price      Price
	Quantity   int64
}

// Discount is a coupon applied to a subscription.
type Discount struct {
	ExternalID string
	CouponID   string
	PercentOff float64 // 0 when the coupon is a fixed amount
	AmountOff  int64   // In the smallest currency unit, 0 when the coupon is a percentage
	End        *time.Time
}

// ActiveAt reports whether the discount still applies at t.
func (d Discount) ActiveAt(t time.Time) bool {
	return d.End == nil || d.End.After(t)
}

// Subscription is the typed, read-only view of a provider subscription.
// Optional fields are nil when the provider did not report them.
type Subscription struct {
	ExternalID       string
	CustomerID       string
	Customer         *Customer // Set when the provider returned the customer inline
	Status           string
	Items            []SubscriptionItem
	TrialEnd         *time.Time
	CurrentPeriodEnd *time.Time
	Discounts        []Discount
	Created          time.Time
	Metadata         map[string]string
}

// PrimaryPrice returns the price of the first line item, if any.
func (s Subscription) PrimaryPrice() (Price, bool) {
	if len(s.Items) == 0 {
		return Price{}, false
	}
	return s.Items[0].Price, true
}

// ListSubscriptionsParams filters a single page of subscriptions.
type ListSubscriptionsParams struct {
	Status        string // A provider status or "all"
	CustomerID    string
	StartingAfter string
	Limit         int64
}

// SubscriptionPage is one page of a subscription listing.
type SubscriptionPage struct {
	Subscriptions []Subscription
	HasMore       bool
	NextCursor    string
}

// Provider is the read-only view of the payment provider used by reconciliation.
type Provider interface {
	// GetServiceName returns a unique identifier for the provider (e.g., "stripe").
	GetServiceName() string

	// CheckConnection verifies connectivity and credentials.
	CheckConnection(ctx context.Context) error

	// GetCustomer retrieves a customer by external ID. Returns an error wrapping
	// ErrCustomerNotFound when the customer is missing or deleted.
	GetCustomer(ctx context.Context, externalID string) (Customer, error)

	// ListSubscriptions returns one page of subscriptions matching params.
	ListSubscriptions(ctx context.Context, params ListSubscriptionsParams) (SubscriptionPage, error)

	// ListCustomerSubscriptions returns every subscription of any status for a customer.
	// Returns an error wrapping ErrCustomerNotFound when the customer is missing.
	ListCustomerSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
}
