package helpers

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// NormalizeEmail lower-cases and trims an email address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StringToPgText converts a string into a nullable text, treating "" as NULL.
func StringToPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// PgTextToString returns the text value, or "" when NULL.
func PgTextToString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// FirstNonEmpty returns the first non-empty value of the given keys in m.
func FirstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			return v
		}
	}
	return ""
}
