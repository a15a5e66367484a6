package constants

// Local subscription statuses.
const (
	StatusFree      = "free"
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusPastDue   = "past_due"
	StatusCancelled = "cancelled"
)

// Provider subscription statuses the engine cares about.
const (
	ProviderStatusTrialing = "trialing"
	ProviderStatusActive   = "active"
	ProviderStatusPastDue  = "past_due"
	ProviderStatusCanceled = "canceled"
	ProviderStatusAll      = "all"
)

// Plan types.
const (
	PlanFree               = "free"
	PlanLunaryPlus         = "lunary_plus"
	PlanLunaryPlusAI       = "lunary_plus_ai"
	PlanLunaryPlusAIAnnual = "lunary_plus_ai_annual"
)

// Metadata keys that may carry an explicit user id or plan hint.
var (
	UserIDMetadataKeys = []string{"userId", "user_id"}
	PlanMetadataKeys   = []string{"plan_id", "planId", "plan_type", "plan"}
)
