package reconcile

import (
	"testing"
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"

	"github.com/stretchr/testify/assert"
)

func priced(cents int64, interval string, count int64, discounts ...ps.Discount) ps.Subscription {
	sub := ps.Subscription{
		ExternalID: "sub_1",
		Items: []ps.SubscriptionItem{{
			Price: ps.Price{ExternalID: "price_1", UnitAmount: cents},
		}},
		Discounts: discounts,
	}
	if interval != "" {
		sub.Items[0].Price.Recurring = &ps.RecurringInterval{Interval: interval, IntervalCount: count}
	}
	return sub
}

func TestMonthlyAmount(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	tests := []struct {
		name     string
		sub      ps.Subscription
		expected string
	}{
		{"monthly", priced(999, "month", 1), "9.99"},
		{"yearly divided by twelve", priced(11988, "year", 1), "9.99"},
		{"weekly", priced(1000, "week", 1), "43.33"},
		{"daily", priced(100, "day", 1), "30.42"},
		{"every two months", priced(2000, "month", 2), "10.00"},
		{"one-off price", priced(1500, "", 0), "15.00"},
		{"no items", ps.Subscription{}, "0.00"},
		{"percent discount", priced(2000, "month", 1, ps.Discount{CouponID: "QUARTER", PercentOff: 25}), "15.00"},
		{"fixed discount", priced(999, "month", 1, ps.Discount{CouponID: "FIVE", AmountOff: 500}), "4.99"},
		{"fixed discount floors at zero", priced(999, "month", 1, ps.Discount{CouponID: "BIG", AmountOff: 2000}), "0.00"},
		{"full percent discount", priced(999, "month", 1, ps.Discount{CouponID: "FREE", PercentOff: 100}), "0.00"},
		{"expired discount ignored", priced(999, "month", 1, ps.Discount{CouponID: "OLD", PercentOff: 50, End: &past}), "9.99"},
		{"discount with future end applies", priced(2000, "month", 1, ps.Discount{CouponID: "SOON", PercentOff: 50, End: &future}), "10.00"},
		{"percent then fixed", priced(2000, "month", 1,
			ps.Discount{CouponID: "HALF", PercentOff: 50},
			ps.Discount{CouponID: "ONE", AmountOff: 100}), "9.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyAmount(tt.sub, testNow)
			assert.Equal(t, tt.expected, got.StringFixed(2))
			assert.False(t, got.IsNegative())
		})
	}
}

func TestHasActiveDiscount(t *testing.T) {
	past := testNow.Add(-time.Minute)

	has, coupon := HasActiveDiscount(priced(999, "month", 1), testNow)
	assert.False(t, has)
	assert.Empty(t, coupon)

	has, coupon = HasActiveDiscount(priced(999, "month", 1,
		ps.Discount{CouponID: "EXPIRED", PercentOff: 10, End: &past},
		ps.Discount{CouponID: "LIVE", PercentOff: 10}), testNow)
	assert.True(t, has)
	assert.Equal(t, "LIVE", coupon)
}
