package reconcile

import (
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
	weeksInYear  = decimal.NewFromInt(52)
	daysInYear   = decimal.NewFromInt(365)
)

// MonthlyAmount returns the subscription's price normalized to a monthly rate
// in major currency units, after every discount active at now. The result is
// never negative and is rounded to cents.
func MonthlyAmount(sub ps.Subscription, now time.Time) decimal.Decimal {
	price, ok := sub.PrimaryPrice()
	if !ok {
		return decimal.Zero
	}

	amount := decimal.New(price.UnitAmount, -2)
	if price.Recurring != nil {
		amount = toMonthly(amount, price.Recurring.Interval, price.Recurring.IntervalCount)
	}

	for _, d := range sub.Discounts {
		if !d.ActiveAt(now) {
			continue
		}
		if d.PercentOff > 0 {
			pct := decimal.NewFromFloat(d.PercentOff)
			amount = amount.Mul(decimal.NewFromInt(1).Sub(pct.Div(hundred)))
		}
		if d.AmountOff > 0 {
			amount = amount.Sub(decimal.New(d.AmountOff, -2))
		}
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

func toMonthly(amount decimal.Decimal, interval string, count int64) decimal.Decimal {
	switch interval {
	case "year":
		amount = amount.Div(monthsInYear)
	case "week":
		amount = amount.Mul(weeksInYear).Div(monthsInYear)
	case "day":
		amount = amount.Mul(daysInYear).Div(monthsInYear)
	}
	if count > 1 {
		amount = amount.Div(decimal.NewFromInt(count))
	}
	return amount
}

// HasActiveDiscount reports whether any discount applies at now, and returns
// the coupon id of the first one.
func HasActiveDiscount(sub ps.Subscription, now time.Time) (bool, string) {
	for _, d := range sub.Discounts {
		if d.ActiveAt(now) {
			return true, d.CouponID
		}
	}
	return false, ""
}
