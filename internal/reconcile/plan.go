package reconcile

import (
	"strings"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/helpers"
)

// PlanResolver derives a local plan type from a provider subscription.
type PlanResolver struct {
	priceIDs map[string]string
}

// NewPlanResolver creates a PlanResolver with a price id to plan type map.
func NewPlanResolver(priceIDs map[string]string) PlanResolver {
	m := make(map[string]string, len(priceIDs))
	for k, v := range priceIDs {
		m[k] = v
	}
	return PlanResolver{priceIDs: m}
}

// PlanType resolves the plan from subscription metadata, then price metadata,
// then the configured price id map, then the billing interval.
func (p PlanResolver) PlanType(sub ps.Subscription) string {
	if plan := helpers.FirstNonEmpty(sub.Metadata, constants.PlanMetadataKeys...); plan != "" {
		return NormalizePlanType(plan)
	}

	price, ok := sub.PrimaryPrice()
	if !ok {
		return constants.PlanLunaryPlus
	}

	if plan := helpers.FirstNonEmpty(price.Metadata, constants.PlanMetadataKeys...); plan != "" {
		return NormalizePlanType(plan)
	}
	if plan, ok := p.priceIDs[price.ExternalID]; ok {
		return NormalizePlanType(plan)
	}

	if price.Recurring != nil && price.Recurring.Interval == "year" {
		return constants.PlanLunaryPlusAIAnnual
	}
	return constants.PlanLunaryPlus
}

// NormalizePlanType maps generic plan labels onto the known plan identifiers.
// Unknown values pass through unchanged.
func NormalizePlanType(planType string) string {
	planType = strings.TrimSpace(planType)
	switch planType {
	case "":
		return constants.PlanFree
	case constants.PlanLunaryPlus, constants.PlanLunaryPlusAI, constants.PlanLunaryPlusAIAnnual, constants.PlanFree:
		return planType
	case "yearly", "annual":
		return constants.PlanLunaryPlusAIAnnual
	case "monthly":
		return constants.PlanLunaryPlus
	default:
		return planType
	}
}
