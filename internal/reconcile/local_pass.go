package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LocalPass walks every local row that references a provider customer and
// aligns it with that customer's subscriptions at the provider.
type LocalPass struct {
	queries     db.Querier
	provider    ps.Provider
	writer      *Writer
	plans       PlanResolver
	exclusions  ExclusionSet
	logger      *zap.Logger
	pageSize    int32
	concurrency int
	now         func() time.Time
}

// LocalPassConfig holds the collaborators of a LocalPass.
type LocalPassConfig struct {
	Queries     db.Querier
	Provider    ps.Provider
	Writer      *Writer
	Plans       PlanResolver
	Exclusions  ExclusionSet
	Logger      *zap.Logger
	PageSize    int
	Concurrency int
	Now         func() time.Time
}

// NewLocalPass creates a new LocalPass.
func NewLocalPass(cfg LocalPassConfig) *LocalPass {
	p := &LocalPass{
		queries:     cfg.Queries,
		provider:    cfg.Provider,
		writer:      cfg.Writer,
		plans:       cfg.Plans,
		exclusions:  cfg.Exclusions,
		logger:      cfg.Logger,
		pageSize:    int32(cfg.PageSize),
		concurrency: cfg.Concurrency,
		now:         cfg.Now,
	}
	if p.pageSize <= 0 {
		p.pageSize = 100
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Run processes every local row with a provider customer. Per-row failures
// are counted and never stop the pass. When ctx expires the pass stops
// between rows and returns the partial counts with a nil error; a non-nil
// error means the local store could not be read.
func (p *LocalPass) Run(ctx context.Context) (LocalPassStats, error) {
	counter := &localCounter{}
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	after := ""
	var readErr error
	for ctx.Err() == nil {
		rows, err := p.queries.ListSubscriptionsWithCustomer(ctx, db.ListSubscriptionsWithCustomerParams{
			AfterUserID: after,
			RowLimit:    p.pageSize,
		})
		if err != nil {
			if ctx.Err() == nil {
				readErr = fmt.Errorf("failed to list local subscriptions after %q: %w", after, err)
			}
			break
		}

		for _, row := range rows {
			if ctx.Err() != nil {
				break
			}
			row := row
			g.Go(func() error {
				counter.record(p.processRow(ctx, row))
				return nil
			})
		}

		if int32(len(rows)) < p.pageSize {
			break
		}
		after = rows[len(rows)-1].UserID
	}

	_ = g.Wait()
	stats := counter.snapshot()

	if readErr != nil {
		p.logger.Error("Local pass aborted", zap.Error(readErr))
		return stats, readErr
	}

	p.logger.Info("Local pass finished",
		zap.Int("total", stats.Total),
		zap.Int("updated", stats.Updated),
		zap.Int("cancelled", stats.Cancelled),
		zap.Int("invalid_customer_reset", stats.InvalidCustomerReset),
		zap.Int("no_change", stats.NoChange),
		zap.Int("errored", stats.Errored),
		zap.Int("skipped", stats.Skipped),
		zap.Bool("stopped_early", ctx.Err() != nil))
	return stats, nil
}

func (p *LocalPass) processRow(ctx context.Context, row db.Subscription) localOutcome {
	log := p.logger.With(
		zap.String("user_id", row.UserID),
		zap.String("provider_customer_id", helpers.PgTextToString(row.ProviderCustomerID)))

	if p.exclusions.Excludes(helpers.PgTextToString(row.UserEmail), row.UserID) {
		log.Debug("Skipping excluded identity")
		return outcomeSkipped
	}

	customerID := helpers.PgTextToString(row.ProviderCustomerID)
	subs, err := p.provider.ListCustomerSubscriptions(ctx, customerID)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeAborted
		}
		if errors.Is(err, ps.ErrCustomerNotFound) {
			return p.resetGhostCustomer(ctx, log, row)
		}
		log.Warn("Failed to fetch provider subscriptions", zap.Error(err))
		return outcomeErrored
	}

	if p.exclusions.Len() > 0 {
		excluded, err := p.customerExcluded(ctx, customerID, subs)
		if err != nil {
			if ctx.Err() != nil {
				return outcomeAborted
			}
			log.Warn("Failed to fetch provider customer", zap.Error(err))
			return outcomeErrored
		}
		if excluded {
			log.Debug("Skipping row whose provider customer is excluded")
			return outcomeSkipped
		}
	}

	now := p.now()
	var live []Candidate
	for _, sub := range subs {
		if !IsLiveProviderStatus(sub.Status) {
			continue
		}
		live = append(live, Candidate{
			UserID:        row.UserID,
			Subscription:  sub,
			MonthlyAmount: MonthlyAmount(sub, now),
		})
	}

	if len(live) == 0 {
		if row.Status == constants.StatusFree || row.Status == constants.StatusCancelled {
			return outcomeNoChange
		}
		if _, err := p.writer.Cancel(ctx, row.UserID); err != nil {
			if ctx.Err() != nil {
				return outcomeAborted
			}
			log.Error("Failed to cancel subscription", zap.Error(err))
			return outcomeErrored
		}
		log.Info("Cancelled subscription with no live provider subscription",
			zap.String("previous_status", row.Status))
		return outcomeCancelled
	}

	winner, _ := SelectWinner(log, row.UserID, live)
	state := stateFromCandidate(winner, p.plans, now)
	state.ProviderCustomerID = customerID
	// The local email is authoritative for rows reached from the local side.
	state.UserEmail = ""

	if row.Status == state.Status &&
		helpers.PgTextToString(row.PlanType) == state.PlanType &&
		helpers.PgTextToString(row.ProviderSubscriptionID) == state.ProviderSubscriptionID {
		return outcomeNoChange
	}

	if _, err := p.writer.Upsert(ctx, state); err != nil {
		if ctx.Err() != nil {
			return outcomeAborted
		}
		log.Error("Failed to update subscription", zap.Error(err))
		return outcomeErrored
	}

	log.Info("Updated subscription from provider",
		zap.String("previous_status", row.Status),
		zap.String("status", state.Status),
		zap.String("plan_type", state.PlanType),
		zap.String("provider_subscription_id", state.ProviderSubscriptionID))
	return outcomeUpdated
}

// customerExcluded checks the provider customer's email and name against the
// exclusion set. An inline customer on any subscription avoids a lookup.
func (p *LocalPass) customerExcluded(ctx context.Context, customerID string, subs []ps.Subscription) (bool, error) {
	for _, sub := range subs {
		if sub.Customer != nil {
			return p.exclusions.Excludes(sub.Customer.Email, sub.Customer.Name), nil
		}
	}

	customer, err := p.provider.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, ps.ErrCustomerNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.exclusions.Excludes(customer.Email, customer.Name), nil
}

func (p *LocalPass) resetGhostCustomer(ctx context.Context, log *zap.Logger, row db.Subscription) localOutcome {
	if _, err := p.writer.ResetCustomer(ctx, row.UserID); err != nil {
		if ctx.Err() != nil {
			return outcomeAborted
		}
		log.Error("Failed to reset ghost customer", zap.Error(err))
		return outcomeErrored
	}
	log.Warn("Reset row referencing a customer missing at the provider",
		zap.String("previous_status", row.Status))
	return outcomeReset
}
