package reconcile

import "github.com/cyphera/billing-reconciler/internal/constants"

// Status ranks used to order candidates. Lower wins.
const (
	rankActive = iota
	rankTrialing
	rankPastDue
	rankOther
)

// LiveProviderStatuses are the provider statuses that grant access and are
// scanned by the provider-first pass, in scan order.
var LiveProviderStatuses = []string{
	constants.ProviderStatusActive,
	constants.ProviderStatusTrialing,
	constants.ProviderStatusPastDue,
}

// MapProviderStatus maps a provider subscription status to a local status.
// Every input maps to exactly one local status; unknown values map to free.
func MapProviderStatus(providerStatus string) string {
	switch providerStatus {
	case constants.ProviderStatusTrialing:
		return constants.StatusTrial
	case constants.ProviderStatusActive:
		return constants.StatusActive
	case constants.ProviderStatusCanceled:
		return constants.StatusCancelled
	case constants.ProviderStatusPastDue:
		return constants.StatusPastDue
	default:
		return constants.StatusFree
	}
}

// IsLiveProviderStatus reports whether the provider status grants access.
func IsLiveProviderStatus(providerStatus string) bool {
	return statusRank(providerStatus) < rankOther
}

func statusRank(providerStatus string) int {
	switch providerStatus {
	case constants.ProviderStatusActive:
		return rankActive
	case constants.ProviderStatusTrialing:
		return rankTrialing
	case constants.ProviderStatusPastDue:
		return rankPastDue
	default:
		return rankOther
	}
}
