package stripe

import (
	"context"
	"fmt"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"

	"github.com/patrickmn/go-cache"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// mapStripeCustomerToPSCustomer converts a Stripe Customer object to the canonical ps.Customer.
func mapStripeCustomerToPSCustomer(stripeCust *stripe.Customer) ps.Customer {
	if stripeCust == nil {
		return ps.Customer{}
	}
	return ps.Customer{
		ExternalID: stripeCust.ID,
		Email:      stripeCust.Email,
		Name:       stripeCust.Name,
		Metadata:   stripeCust.Metadata,
	}
}

// GetCustomer retrieves a customer by ID. Missing and deleted customers are
// reported as ps.ErrCustomerNotFound. Results are cached for the lifetime of the service.
func (s *StripeService) GetCustomer(ctx context.Context, externalID string) (ps.Customer, error) {
	if cached, ok := s.customers.Get(externalID); ok {
		switch v := cached.(type) {
		case ps.Customer:
			return v, nil
		case string:
			if v == missingCustomerMarker {
				return ps.Customer{}, fmt.Errorf("stripe_service.GetCustomer: customer %s: %w", externalID, ps.ErrCustomerNotFound)
			}
		}
	}

	var stripeCust *stripe.Customer
	err := s.call(ctx, "GetCustomer", func() error {
		var err error
		stripeCust, err = s.api.RetrieveCustomer(ctx, externalID, &stripe.CustomerRetrieveParams{})
		return err
	})
	if err != nil {
		if IsResourceMissing(err) {
			s.customers.Set(externalID, missingCustomerMarker, cache.DefaultExpiration)
			s.logger.Warn("Stripe customer does not exist", zap.String("stripe_customer_id", externalID))
			return ps.Customer{}, fmt.Errorf("stripe_service.GetCustomer: customer %s: %w", externalID, ps.ErrCustomerNotFound)
		}
		s.logger.Error("Failed to fetch Stripe customer", zap.Error(err), zap.String("stripe_customer_id", externalID))
		return ps.Customer{}, fmt.Errorf("stripe_service.GetCustomer: failed to fetch customer %s: %w", externalID, err)
	}

	if stripeCust == nil || stripeCust.Deleted {
		s.customers.Set(externalID, missingCustomerMarker, cache.DefaultExpiration)
		s.logger.Warn("Fetched Stripe customer is marked as deleted", zap.String("stripe_customer_id", externalID))
		return ps.Customer{}, fmt.Errorf("stripe_service.GetCustomer: customer %s is deleted: %w", externalID, ps.ErrCustomerNotFound)
	}

	mapped := mapStripeCustomerToPSCustomer(stripeCust)
	s.customers.Set(externalID, mapped, cache.DefaultExpiration)
	return mapped, nil
}
