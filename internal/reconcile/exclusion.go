package reconcile

import (
	"strings"

	"github.com/cyphera/billing-reconciler/internal/helpers"
)

// ExclusionSet is an immutable set of normalized identities that must never
// be written. A value is excluded when it equals an entry or contains one.
type ExclusionSet struct {
	entries []string
}

// NewExclusionSet builds an ExclusionSet, normalizing and de-duplicating entries.
func NewExclusionSet(entries []string) ExclusionSet {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		n := helpers.NormalizeEmail(e)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return ExclusionSet{entries: out}
}

// Len returns the number of entries.
func (e ExclusionSet) Len() int {
	return len(e.entries)
}

// Excludes reports whether any of the given values (emails, customer names,
// user ids) matches an entry.
func (e ExclusionSet) Excludes(values ...string) bool {
	for _, v := range values {
		n := helpers.NormalizeEmail(v)
		if n == "" {
			continue
		}
		for _, entry := range e.entries {
			if n == entry || strings.Contains(n, entry) {
				return true
			}
		}
	}
	return false
}
