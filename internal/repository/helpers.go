package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// parseNullableString returns the string value or "" for SQL NULL.
func parseNullableString(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

// nullableString converts an empty string to SQL NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// formatTS stores timestamps as UTC RFC3339 so text ordering matches time ordering.
func formatTS(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTS(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// encodeAttributes marshals an opaque attribute map; nil becomes "{}".
func encodeAttributes(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding attributes: %w", err)
	}
	return string(b), nil
}

// decodeAttributes returns nil for an empty object.
func decodeAttributes(s string) (map[string]any, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
