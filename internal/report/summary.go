package report

import (
	"fmt"
	"strings"

	"github.com/cyphera/billing-reconciler/internal/reconcile"
)

// Title returns a one-line headline for a run.
func Title(stats reconcile.RunStats) string {
	status := "succeeded"
	switch {
	case !stats.Success:
		status = "FAILED"
	case stats.BudgetExceeded:
		status = "stopped at budget"
	}

	title := fmt.Sprintf("Billing reconciliation %s (%s)", status, stats.Trigger)
	if stats.DryRun {
		title += " [dry run]"
	}
	return title
}

// Summary renders a short plain-text report suitable for chat webhooks and email.
func Summary(stats reconcile.RunStats) string {
	var b strings.Builder
	b.WriteString(Title(stats))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Run %s took %s\n", stats.RunID, stats.Duration().Round(1e6))

	if lp := stats.LocalPass; lp != nil {
		fmt.Fprintf(&b, "Local pass: %d checked, %d updated, %d cancelled, %d ghost customers reset, %d unchanged, %d errored, %d skipped\n",
			lp.Total, lp.Updated, lp.Cancelled, lp.InvalidCustomerReset, lp.NoChange, lp.Errored, lp.Skipped)
	}
	if pp := stats.ProviderPass; pp != nil {
		fmt.Fprintf(&b, "Provider pass: %d scanned, %d candidates, %d created, %d updated, %d skipped, %d unresolved, %d duplicates\n",
			pp.TotalScanned, pp.Candidates, pp.Created, pp.Updated, pp.Skipped, pp.Unresolved, pp.Duplicates)
	}
	for _, e := range stats.Errors {
		fmt.Fprintf(&b, "Error: %s\n", e)
	}
	return strings.TrimRight(b.String(), "\n")
}
