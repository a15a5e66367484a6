package stripe

import (
	"context"
	"fmt"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/constants"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const maxPageSize = 100

// mapStripePriceToPSPrice converts a Stripe Price to ps.Price.
func mapStripePriceToPSPrice(stripePrice *stripe.Price) ps.Price {
	if stripePrice == nil {
		return ps.Price{}
	}

	var recurring *ps.RecurringInterval
	if stripePrice.Recurring != nil {
		recurring = &ps.RecurringInterval{
			Interval:      string(stripePrice.Recurring.Interval),
			IntervalCount: stripePrice.Recurring.IntervalCount,
		}
	}

	return ps.Price{
		ExternalID: stripePrice.ID,
		UnitAmount: stripePrice.UnitAmount,
		Currency:   string(stripePrice.Currency),
		Recurring:  recurring,
		Metadata:   stripePrice.Metadata,
	}
}

// mapStripeDiscountToPSDiscount converts a Stripe Discount to ps.Discount.
func mapStripeDiscountToPSDiscount(stripeDiscount *stripe.Discount) ps.Discount {
	d := ps.Discount{
		ExternalID: stripeDiscount.ID,
		End:        unixToTime(stripeDiscount.End),
	}
	if stripeDiscount.Coupon != nil {
		d.CouponID = stripeDiscount.Coupon.ID
		d.PercentOff = stripeDiscount.Coupon.PercentOff
		d.AmountOff = stripeDiscount.Coupon.AmountOff
	}
	return d
}

// mapStripeSubscriptionToPSSubscription converts a Stripe Subscription object to the canonical ps.Subscription.
func mapStripeSubscriptionToPSSubscription(stripeSub *stripe.Subscription) ps.Subscription {
	if stripeSub == nil {
		return ps.Subscription{}
	}

	sub := ps.Subscription{
		ExternalID: stripeSub.ID,
		Status:     string(stripeSub.Status),
		TrialEnd:   unixToTime(stripeSub.TrialEnd),
		Metadata:   stripeSub.Metadata,
	}
	if created := unixToTime(stripeSub.Created); created != nil {
		sub.Created = *created
	}

	if stripeSub.Customer != nil {
		sub.CustomerID = stripeSub.Customer.ID
		// An unexpanded customer carries only its ID.
		if stripeSub.Customer.Created > 0 && !stripeSub.Customer.Deleted {
			c := mapStripeCustomerToPSCustomer(stripeSub.Customer)
			sub.Customer = &c
		}
	}

	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 {
		sub.Items = make([]ps.SubscriptionItem, 0, len(stripeSub.Items.Data))
		for _, item := range stripeSub.Items.Data {
			if item == nil {
				continue
			}
			sub.Items = append(sub.Items, ps.SubscriptionItem{
				ExternalID: item.ID,
				Price:      mapStripePriceToPSPrice(item.Price),
				Quantity:   item.Quantity,
			})
		}
		if first := stripeSub.Items.Data[0]; first != nil {
			sub.CurrentPeriodEnd = unixToTime(first.CurrentPeriodEnd)
		}
	}

	for _, d := range stripeSub.Discounts {
		if d == nil {
			continue
		}
		sub.Discounts = append(sub.Discounts, mapStripeDiscountToPSDiscount(d))
	}

	return sub
}

func newSubscriptionListParams(params ps.ListSubscriptionsParams) *stripe.SubscriptionListParams {
	stripeParams := &stripe.SubscriptionListParams{}
	stripeParams.Limit = stripe.Int64(clampPageSize(params.Limit))

	if params.Status != "" {
		stripeParams.Status = stripe.String(params.Status)
	}
	if params.CustomerID != "" {
		stripeParams.Customer = stripe.String(params.CustomerID)
	}
	if params.StartingAfter != "" {
		stripeParams.StartingAfter = stripe.String(params.StartingAfter)
	}

	stripeParams.AddExpand("data.customer")
	stripeParams.AddExpand("data.discounts")
	return stripeParams
}

func clampPageSize(limit int64) int64 {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// ListSubscriptions returns a single page of subscriptions. HasMore is set
// only when the listing yields a subscription past the page limit; the
// iterator fetches the next page only when Stripe reports one.
func (s *StripeService) ListSubscriptions(ctx context.Context, params ps.ListSubscriptionsParams) (ps.SubscriptionPage, error) {
	limit := clampPageSize(params.Limit)
	stripeParams := newSubscriptionListParams(params)

	var page ps.SubscriptionPage
	err := s.call(ctx, "ListSubscriptions", func() error {
		page = ps.SubscriptionPage{}
		for stripeSub, err := range s.api.ListSubscriptions(ctx, stripeParams) {
			if err != nil {
				return err
			}
			if stripeSub == nil {
				continue
			}
			if int64(len(page.Subscriptions)) >= limit {
				page.HasMore = true
				break
			}
			page.Subscriptions = append(page.Subscriptions, mapStripeSubscriptionToPSSubscription(stripeSub))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Error listing Stripe subscriptions",
			zap.String("status", params.Status),
			zap.String("starting_after", params.StartingAfter),
			zap.Error(err))
		return ps.SubscriptionPage{}, fmt.Errorf("stripe_service.ListSubscriptions: error during iteration: %w", err)
	}

	if page.HasMore {
		page.NextCursor = page.Subscriptions[len(page.Subscriptions)-1].ExternalID
	}
	return page, nil
}

// ListCustomerSubscriptions returns all subscriptions, of any status, for one customer.
func (s *StripeService) ListCustomerSubscriptions(ctx context.Context, customerID string) ([]ps.Subscription, error) {
	stripeParams := newSubscriptionListParams(ps.ListSubscriptionsParams{
		Status:     constants.ProviderStatusAll,
		CustomerID: customerID,
	})

	var subs []ps.Subscription
	err := s.call(ctx, "ListCustomerSubscriptions", func() error {
		subs = nil
		for stripeSub, err := range s.api.ListSubscriptions(ctx, stripeParams) {
			if err != nil {
				return err
			}
			if stripeSub != nil {
				subs = append(subs, mapStripeSubscriptionToPSSubscription(stripeSub))
			}
		}
		return nil
	})
	if err != nil {
		if IsResourceMissing(err) {
			return nil, fmt.Errorf("stripe_service.ListCustomerSubscriptions: customer %s: %w", customerID, ps.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("stripe_service.ListCustomerSubscriptions: customer %s: %w", customerID, err)
	}
	return subs, nil
}
