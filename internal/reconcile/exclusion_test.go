package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionSet(t *testing.T) {
	set := NewExclusionSet([]string{"Admin@Example.com", "admin@example.com", " ", "house-account"})
	assert.Equal(t, 2, set.Len())

	tests := []struct {
		name     string
		values   []string
		expected bool
	}{
		{"exact email", []string{"admin@example.com"}, true},
		{"email case and spaces", []string{"  ADMIN@example.COM "}, true},
		{"name substring", []string{"", "Lunary House-Account"}, true},
		{"unrelated", []string{"someone@example.com", "Someone"}, false},
		{"empty values", []string{"", ""}, false},
		{"no values", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, set.Excludes(tt.values...))
		})
	}
}

func TestExclusionSet_Empty(t *testing.T) {
	var set ExclusionSet
	assert.Zero(t, set.Len())
	assert.False(t, set.Excludes("anyone@example.com"))
}
