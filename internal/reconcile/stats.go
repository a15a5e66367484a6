package reconcile

import (
	"sync"
	"time"
)

// LocalPassStats counts the outcomes of the local-first pass.
type LocalPassStats struct {
	Total                int `json:"total"`
	Updated              int `json:"updated"`
	Cancelled            int `json:"cancelled"`
	InvalidCustomerReset int `json:"invalid_customer_reset"`
	NoChange             int `json:"no_change"`
	Errored              int `json:"errored"`
	Skipped              int `json:"skipped"`
}

// Writes returns the number of rows the pass changed.
func (s LocalPassStats) Writes() int {
	return s.Updated + s.Cancelled + s.InvalidCustomerReset
}

// ProviderPassStats counts the outcomes of the provider-first pass.
type ProviderPassStats struct {
	TotalScanned int `json:"total_scanned"`
	Candidates   int `json:"candidates"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
	Unresolved   int `json:"unresolved"`
	Duplicates   int `json:"duplicates"`
}

// Writes returns the number of rows the pass changed.
func (s ProviderPassStats) Writes() int {
	return s.Created + s.Updated
}

// RunStats is the combined result of one reconciliation run.
type RunStats struct {
	RunID          string             `json:"run_id"`
	Trigger        string             `json:"trigger"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
	DryRun         bool               `json:"dry_run"`
	BudgetExceeded bool               `json:"budget_exceeded"`
	Success        bool               `json:"success"`
	Errors         []string           `json:"errors,omitempty"`
	LocalPass      *LocalPassStats    `json:"local_pass,omitempty"`
	ProviderPass   *ProviderPassStats `json:"provider_pass,omitempty"`
}

// Duration returns how long the run took.
func (s RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

type localOutcome int

const (
	outcomeAborted localOutcome = iota
	outcomeUpdated
	outcomeCancelled
	outcomeReset
	outcomeNoChange
	outcomeErrored
	outcomeSkipped
)

// localCounter is a concurrency-safe accumulator for LocalPassStats.
type localCounter struct {
	mu    sync.Mutex
	stats LocalPassStats
}

func (c *localCounter) record(o localOutcome) {
	if o == outcomeAborted {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Total++
	switch o {
	case outcomeUpdated:
		c.stats.Updated++
	case outcomeCancelled:
		c.stats.Cancelled++
	case outcomeReset:
		c.stats.InvalidCustomerReset++
	case outcomeNoChange:
		c.stats.NoChange++
	case outcomeErrored:
		c.stats.Errored++
	case outcomeSkipped:
		c.stats.Skipped++
	}
}

func (c *localCounter) snapshot() LocalPassStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
