package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// candidateAccumulator groups candidates by user id across every scanned page.
// Each provider subscription is kept at most once, and users drain in the
// order they were first seen.
type candidateAccumulator struct {
	byUser  map[string][]Candidate
	order   []string
	seenSub map[string]struct{}
}

func newCandidateAccumulator() *candidateAccumulator {
	return &candidateAccumulator{
		byUser:  make(map[string][]Candidate),
		seenSub: make(map[string]struct{}),
	}
}

func (a *candidateAccumulator) add(c Candidate) bool {
	if _, ok := a.seenSub[c.Subscription.ExternalID]; ok {
		return false
	}
	a.seenSub[c.Subscription.ExternalID] = struct{}{}

	if _, ok := a.byUser[c.UserID]; !ok {
		a.order = append(a.order, c.UserID)
	}
	a.byUser[c.UserID] = append(a.byUser[c.UserID], c)
	return true
}

func (a *candidateAccumulator) users() []string {
	return a.order
}

func (a *candidateAccumulator) candidates(userID string) []Candidate {
	return a.byUser[userID]
}

// ProviderPass scans every live provider subscription account-wide and makes
// sure each resolvable one is reflected in the local store.
type ProviderPass struct {
	queries    db.Querier
	provider   ps.Provider
	resolver   *IdentityResolver
	writer     *Writer
	plans      PlanResolver
	exclusions ExclusionSet
	logger     *zap.Logger
	pageSize   int64
	now        func() time.Time
}

// ProviderPassConfig holds the collaborators of a ProviderPass.
type ProviderPassConfig struct {
	Queries    db.Querier
	Provider   ps.Provider
	Resolver   *IdentityResolver
	Writer     *Writer
	Plans      PlanResolver
	Exclusions ExclusionSet
	Logger     *zap.Logger
	PageSize   int
	Now        func() time.Time
}

// NewProviderPass creates a new ProviderPass.
func NewProviderPass(cfg ProviderPassConfig) *ProviderPass {
	p := &ProviderPass{
		queries:    cfg.Queries,
		provider:   cfg.Provider,
		resolver:   cfg.Resolver,
		writer:     cfg.Writer,
		plans:      cfg.Plans,
		exclusions: cfg.Exclusions,
		logger:     cfg.Logger,
		pageSize:   int64(cfg.PageSize),
		now:        cfg.Now,
	}
	if p.resolver == nil {
		p.resolver = NewIdentityResolver(cfg.Queries, cfg.Logger)
	}
	if p.pageSize <= 0 {
		p.pageSize = 100
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Run scans active, trialing and past_due subscriptions, groups them by
// resolved user, then writes one winning state per user. Nothing is written
// unless every scan completed. A non-nil error means a scan page could not be
// fetched; an expired ctx returns the partial counts with a nil error.
func (p *ProviderPass) Run(ctx context.Context) (ProviderPassStats, error) {
	var stats ProviderPassStats
	acc := newCandidateAccumulator()
	now := p.now()

	for _, status := range LiveProviderStatuses {
		if err := p.scan(ctx, status, now, acc, &stats); err != nil {
			if ctx.Err() != nil {
				p.logger.Warn("Provider pass stopped during scan, no writes issued",
					zap.String("status", status),
					zap.Int("total_scanned", stats.TotalScanned))
				return stats, nil
			}
			p.logger.Error("Provider pass aborted during scan, no writes issued",
				zap.String("status", status),
				zap.Error(err))
			return stats, err
		}
	}

	for _, userID := range acc.users() {
		if ctx.Err() != nil {
			p.logger.Warn("Provider pass stopped while writing",
				zap.Int("created", stats.Created),
				zap.Int("updated", stats.Updated))
			break
		}
		cands := acc.candidates(userID)
		if len(cands) > 1 {
			stats.Duplicates++
		}
		p.drainUser(ctx, userID, cands, now, &stats)
	}

	p.logger.Info("Provider pass finished",
		zap.Int("total_scanned", stats.TotalScanned),
		zap.Int("candidates", stats.Candidates),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("unresolved", stats.Unresolved),
		zap.Int("duplicates", stats.Duplicates),
		zap.Bool("stopped_early", ctx.Err() != nil))
	return stats, nil
}

func (p *ProviderPass) scan(ctx context.Context, status string, now time.Time, acc *candidateAccumulator, stats *ProviderPassStats) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := p.provider.ListSubscriptions(ctx, ps.ListSubscriptionsParams{
			Status:        status,
			StartingAfter: cursor,
			Limit:         p.pageSize,
		})
		if err != nil {
			return fmt.Errorf("failed to list %s subscriptions after %q: %w", status, cursor, err)
		}

		for _, sub := range page.Subscriptions {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats.TotalScanned++
			p.collect(ctx, sub, now, acc, stats)
		}

		if !page.HasMore || page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

func (p *ProviderPass) collect(ctx context.Context, sub ps.Subscription, now time.Time, acc *candidateAccumulator, stats *ProviderPassStats) {
	log := p.logger.With(
		zap.String("provider_subscription_id", sub.ExternalID),
		zap.String("provider_customer_id", sub.CustomerID))

	customer, err := p.customerFor(ctx, sub)
	if err != nil {
		if ctx.Err() == nil {
			stats.Unresolved++
			log.Warn("Failed to resolve provider customer", zap.Error(err))
		}
		return
	}

	if p.exclusions.Excludes(customer.Email, customer.Name) {
		stats.Skipped++
		log.Debug("Skipping excluded customer")
		return
	}

	userID, source, err := p.resolver.Resolve(ctx, sub, customer)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		stats.Unresolved++
		log.Warn("Could not resolve provider subscription to a local user",
			zap.String("customer_email", customer.Email),
			zap.Error(err))
		if errors.Is(err, ErrUnresolved) {
			p.recordOrphan(ctx, log, sub, customer)
		}
		return
	}

	if p.exclusions.Excludes(userID) {
		stats.Skipped++
		log.Debug("Skipping excluded user", zap.String("user_id", userID))
		return
	}

	added := acc.add(Candidate{
		UserID:         userID,
		Subscription:   sub,
		Customer:       customer,
		MonthlyAmount:  MonthlyAmount(sub, now),
		IdentitySource: source,
	})
	if added {
		stats.Candidates++
	}
}

func (p *ProviderPass) customerFor(ctx context.Context, sub ps.Subscription) (ps.Customer, error) {
	if sub.Customer != nil {
		return *sub.Customer, nil
	}
	if sub.CustomerID == "" {
		return ps.Customer{}, fmt.Errorf("subscription %s has no customer", sub.ExternalID)
	}
	return p.provider.GetCustomer(ctx, sub.CustomerID)
}

func (p *ProviderPass) recordOrphan(ctx context.Context, log *zap.Logger, sub ps.Subscription, customer ps.Customer) {
	err := p.writer.RecordOrphan(ctx, OrphanRecord{
		ProviderSubscriptionID: sub.ExternalID,
		ProviderCustomerID:     sub.CustomerID,
		CustomerEmail:          customer.Email,
		Status:                 sub.Status,
		PlanType:               p.plans.PlanType(sub),
	})
	if err != nil {
		log.Warn("Failed to record orphaned subscription", zap.Error(err))
	}
}

func (p *ProviderPass) drainUser(ctx context.Context, userID string, cands []Candidate, now time.Time, stats *ProviderPassStats) {
	log := p.logger.With(zap.String("user_id", userID))

	winner, ok := SelectWinner(log, userID, cands)
	if !ok {
		return
	}
	state := stateFromCandidate(winner, p.plans, now)
	log = log.With(
		zap.String("provider_subscription_id", state.ProviderSubscriptionID),
		zap.String("identity_source", string(winner.IdentitySource)))

	existing, err := p.queries.GetSubscriptionByUserID(ctx, userID)
	exists := true
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			if ctx.Err() == nil {
				stats.Unresolved++
				log.Error("Failed to read local subscription", zap.Error(err))
			}
			return
		}
		exists = false
	}

	// The stored identity may be excluded even when the provider customer is not.
	if exists && p.exclusions.Excludes(helpers.PgTextToString(existing.UserEmail), existing.UserID) {
		stats.Skipped++
		log.Debug("Skipping excluded local user")
		return
	}

	switch {
	case exists && existing.Status == state.Status &&
		helpers.PgTextToString(existing.ProviderSubscriptionID) == state.ProviderSubscriptionID:
		stats.Skipped++
	default:
		changed, err := p.writer.Upsert(ctx, state)
		if err != nil {
			if ctx.Err() == nil {
				stats.Unresolved++
				log.Error("Failed to write subscription", zap.Error(err))
			}
			return
		}
		switch {
		case !changed:
			stats.Skipped++
		case exists:
			stats.Updated++
			log.Info("Updated subscription from provider",
				zap.String("previous_status", existing.Status),
				zap.String("status", state.Status))
		default:
			stats.Created++
			log.Info("Created subscription found only at provider",
				zap.String("status", state.Status),
				zap.String("plan_type", state.PlanType),
				zap.String("monthly_amount_due", winner.MonthlyAmount.StringFixed(2)))
		}
	}

	if state.ProviderCustomerID != "" {
		if err := p.writer.UpsertProfile(ctx, userID, state.ProviderCustomerID); err != nil {
			log.Warn("Failed to upsert user profile", zap.Error(err))
		}
	}
}
