package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"

	// Payment providers
	StripeProvider = "stripe"

	// Service name attached to structured logs and reports
	ServiceName = "billing-reconciler"

	// Run triggers
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"

	// EventBridge source for scheduled invocations
	ScheduledEventSource = "aws.events"
)
