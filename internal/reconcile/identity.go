package reconcile

import (
	"context"
	"errors"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrUnresolved is returned when no resolver step maps a provider
// subscription to a local user.
var ErrUnresolved = errors.New("identity unresolved")

// IdentitySource names the resolver step that produced a match.
type IdentitySource string

const (
	IdentityFromMetadata          IdentitySource = "metadata"
	IdentityFromSubscriptionID    IdentitySource = "subscription_id"
	IdentityFromCustomerID        IdentitySource = "customer_id"
	IdentityFromSubscriptionEmail IdentitySource = "subscription_email"
	IdentityFromUserEmail         IdentitySource = "user_email"
)

// IdentityResolver maps a provider subscription and its customer to a local user id.
type IdentityResolver struct {
	queries db.Querier
	logger  *zap.Logger
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(queries db.Querier, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{queries: queries, logger: logger}
}

type identityStep struct {
	source IdentitySource
	lookup func(ctx context.Context) (string, error)
}

// Resolve tries, in order: an explicit user id in subscription or customer
// metadata, a local row holding the subscription id, a local row holding the
// customer id, a case-insensitive email match on local rows, then on the user
// table. A failing step is logged and skipped. Returns ErrUnresolved when
// nothing matches.
func (r *IdentityResolver) Resolve(ctx context.Context, sub ps.Subscription, customer ps.Customer) (string, IdentitySource, error) {
	customerID := sub.CustomerID
	if customerID == "" {
		customerID = customer.ExternalID
	}
	email := helpers.NormalizeEmail(customer.Email)

	steps := []identityStep{
		{IdentityFromMetadata, func(ctx context.Context) (string, error) {
			if id := helpers.FirstNonEmpty(sub.Metadata, constants.UserIDMetadataKeys...); id != "" {
				return id, nil
			}
			return helpers.FirstNonEmpty(customer.Metadata, constants.UserIDMetadataKeys...), nil
		}},
		{IdentityFromSubscriptionID, func(ctx context.Context) (string, error) {
			if sub.ExternalID == "" {
				return "", nil
			}
			row, err := r.queries.GetSubscriptionByProviderSubscriptionID(ctx, helpers.StringToPgText(sub.ExternalID))
			return row.UserID, err
		}},
		{IdentityFromCustomerID, func(ctx context.Context) (string, error) {
			if customerID == "" {
				return "", nil
			}
			row, err := r.queries.GetSubscriptionByProviderCustomerID(ctx, helpers.StringToPgText(customerID))
			return row.UserID, err
		}},
		{IdentityFromSubscriptionEmail, func(ctx context.Context) (string, error) {
			if email == "" {
				return "", nil
			}
			row, err := r.queries.GetSubscriptionByEmail(ctx, email)
			return row.UserID, err
		}},
		{IdentityFromUserEmail, func(ctx context.Context) (string, error) {
			if email == "" {
				return "", nil
			}
			return r.queries.GetUserIDByEmail(ctx, email)
		}},
	}

	for _, step := range steps {
		userID, err := step.lookup(ctx)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				if ctx.Err() != nil {
					return "", "", ctx.Err()
				}
				r.logger.Warn("Identity lookup step failed, trying next",
					zap.String("step", string(step.source)),
					zap.String("subscription_id", sub.ExternalID),
					zap.String("customer_id", customerID),
					zap.Error(err))
			}
			continue
		}
		if userID != "" {
			return userID, step.source, nil
		}
	}

	return "", "", ErrUnresolved
}
