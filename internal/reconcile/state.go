package reconcile

import (
	"time"
)

// stateFromCandidate builds the desired local row for a winning candidate.
func stateFromCandidate(c Candidate, plans PlanResolver, now time.Time) SubscriptionState {
	sub := c.Subscription
	amount := c.MonthlyAmount
	hasDiscount, couponID := HasActiveDiscount(sub, now)

	customerID := sub.CustomerID
	if customerID == "" {
		customerID = c.Customer.ExternalID
	}

	return SubscriptionState{
		UserID:                 c.UserID,
		UserEmail:              c.Customer.Email,
		Status:                 MapProviderStatus(sub.Status),
		PlanType:               plans.PlanType(sub),
		ProviderCustomerID:     customerID,
		ProviderSubscriptionID: sub.ExternalID,
		TrialEndsAt:            sub.TrialEnd,
		CurrentPeriodEnd:       sub.CurrentPeriodEnd,
		MonthlyAmountDue:       &amount,
		HasDiscount:            hasDiscount,
		CouponID:               couponID,
	}
}
