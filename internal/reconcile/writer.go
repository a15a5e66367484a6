package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubscriptionState is the desired local row for one user.
type SubscriptionState struct {
	UserID                 string
	UserEmail              string // Empty keeps the stored email
	Status                 string
	PlanType               string
	ProviderCustomerID     string
	ProviderSubscriptionID string
	TrialEndsAt            *time.Time
	CurrentPeriodEnd       *time.Time
	MonthlyAmountDue       *decimal.Decimal
	HasDiscount            bool
	CouponID               string
}

// OrphanRecord describes a provider subscription no local user could be matched to.
type OrphanRecord struct {
	ProviderSubscriptionID string
	ProviderCustomerID     string
	CustomerEmail          string
	Status                 string
	PlanType               string
}

// Writer performs every local store mutation made by reconciliation.
// In dry-run mode it logs the intended write and touches nothing.
type Writer struct {
	queries db.Querier
	logger  *zap.Logger
	dryRun  bool
}

// NewWriter creates a new Writer.
func NewWriter(queries db.Querier, logger *zap.Logger, dryRun bool) *Writer {
	return &Writer{queries: queries, logger: logger, dryRun: dryRun}
}

// DryRun reports whether writes are suppressed.
func (w *Writer) DryRun() bool {
	return w.dryRun
}

// Upsert inserts or updates the row for state.UserID in a single statement.
// A stored email is never replaced by an empty one. Returns false when the
// stored row already matched and nothing was written.
func (w *Writer) Upsert(ctx context.Context, state SubscriptionState) (bool, error) {
	params := upsertParams(state)

	if w.dryRun {
		w.logger.Info("Dry run: would upsert subscription",
			zap.String("user_id", params.UserID),
			zap.String("status", params.Status),
			zap.String("plan_type", helpers.PgTextToString(params.PlanType)),
			zap.String("provider_subscription_id", helpers.PgTextToString(params.ProviderSubscriptionID)))
		return true, nil
	}

	rows, err := w.queries.UpsertSubscription(ctx, params)
	if err != nil {
		return false, fmt.Errorf("failed to upsert subscription for user %s: %w", state.UserID, err)
	}
	return rows > 0, nil
}

// Cancel marks a row cancelled on the free plan and clears its subscription id.
// Rows already free or cancelled are left alone.
func (w *Writer) Cancel(ctx context.Context, userID string) (bool, error) {
	if w.dryRun {
		w.logger.Info("Dry run: would cancel subscription", zap.String("user_id", userID))
		return true, nil
	}

	rows, err := w.queries.CancelSubscription(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to cancel subscription for user %s: %w", userID, err)
	}
	return rows > 0, nil
}

// ResetCustomer resets a row whose provider customer no longer exists to the
// free plan with no customer and no subscription.
func (w *Writer) ResetCustomer(ctx context.Context, userID string) (bool, error) {
	if w.dryRun {
		w.logger.Info("Dry run: would reset ghost customer", zap.String("user_id", userID))
		return true, nil
	}

	rows, err := w.queries.ResetSubscriptionCustomer(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to reset customer for user %s: %w", userID, err)
	}
	return rows > 0, nil
}

// UpsertProfile stores the provider customer reference on the user profile.
func (w *Writer) UpsertProfile(ctx context.Context, userID, customerID string) error {
	if w.dryRun {
		w.logger.Debug("Dry run: would upsert user profile customer",
			zap.String("user_id", userID),
			zap.String("provider_customer_id", customerID))
		return nil
	}

	err := w.queries.UpsertUserProfileCustomer(ctx, db.UpsertUserProfileCustomerParams{
		UserID:             userID,
		ProviderCustomerID: helpers.StringToPgText(customerID),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", userID, err)
	}
	return nil
}

// RecordOrphan stores an unresolved provider subscription for manual follow-up.
func (w *Writer) RecordOrphan(ctx context.Context, orphan OrphanRecord) error {
	if w.dryRun {
		return nil
	}

	err := w.queries.UpsertOrphanedSubscription(ctx, db.UpsertOrphanedSubscriptionParams{
		ProviderSubscriptionID: orphan.ProviderSubscriptionID,
		ProviderCustomerID:     orphan.ProviderCustomerID,
		CustomerEmail:          helpers.StringToPgText(orphan.CustomerEmail),
		Status:                 orphan.Status,
		PlanType:               helpers.StringToPgText(orphan.PlanType),
	})
	if err != nil {
		return fmt.Errorf("failed to record orphaned subscription %s: %w", orphan.ProviderSubscriptionID, err)
	}
	return nil
}

func upsertParams(state SubscriptionState) db.UpsertSubscriptionParams {
	subscriptionID := state.ProviderSubscriptionID
	if state.Status == constants.StatusFree {
		subscriptionID = ""
	}

	var amount decimal.NullDecimal
	if state.MonthlyAmountDue != nil {
		amount = decimal.NullDecimal{Decimal: *state.MonthlyAmountDue, Valid: true}
	}

	return db.UpsertSubscriptionParams{
		UserID:                 state.UserID,
		UserEmail:              helpers.StringToPgText(strings.TrimSpace(state.UserEmail)),
		Status:                 state.Status,
		PlanType:               helpers.StringToPgText(state.PlanType),
		ProviderCustomerID:     helpers.StringToPgText(state.ProviderCustomerID),
		ProviderSubscriptionID: helpers.StringToPgText(subscriptionID),
		TrialEndsAt:            timeToPg(state.TrialEndsAt),
		CurrentPeriodEnd:       timeToPg(state.CurrentPeriodEnd),
		MonthlyAmountDue:       amount,
		HasDiscount:            state.HasDiscount,
		CouponID:               helpers.StringToPgText(state.CouponID),
	}
}

func timeToPg(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
