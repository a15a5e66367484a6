package reconcile

import (
	"sort"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Candidate is a provider subscription considered for one local user.
type Candidate struct {
	UserID        string
	Subscription  ps.Subscription
	Customer      ps.Customer
	MonthlyAmount decimal.Decimal
	// IdentitySource records which resolver step matched.
	IdentitySource IdentitySource
}

// candidateLess orders candidates best first: live status rank, then higher
// monthly amount, then newer creation time. Subscription id breaks any
// remaining tie so the order is total.
func candidateLess(a, b Candidate) bool {
	ra, rb := statusRank(a.Subscription.Status), statusRank(b.Subscription.Status)
	if ra != rb {
		return ra < rb
	}
	if c := a.MonthlyAmount.Cmp(b.MonthlyAmount); c != 0 {
		return c > 0
	}
	if !a.Subscription.Created.Equal(b.Subscription.Created) {
		return a.Subscription.Created.After(b.Subscription.Created)
	}
	return a.Subscription.ExternalID < b.Subscription.ExternalID
}

// RankCandidates returns a copy of cands sorted best first.
func RankCandidates(cands []Candidate) []Candidate {
	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return candidateLess(ranked[i], ranked[j])
	})
	return ranked
}

// SelectWinner picks the best candidate. When more than one exists it logs a
// warning naming every candidate so discarded subscriptions stay visible.
func SelectWinner(logger *zap.Logger, userID string, cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	ranked := RankCandidates(cands)
	winner := ranked[0]

	if len(ranked) > 1 {
		ids := make([]string, len(ranked))
		for i, c := range ranked {
			ids[i] = c.Subscription.ExternalID
		}
		logger.Warn("Multiple live subscriptions for one user",
			zap.String("user_id", userID),
			zap.String("selected_subscription_id", winner.Subscription.ExternalID),
			zap.Strings("candidate_subscription_ids", ids))
	}
	return winner, true
}
