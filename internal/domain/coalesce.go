package domain

import (
	"strconv"

	"github.com/volatiletech/null/v8"
)

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// StringOr returns s when it is set and non-empty, otherwise fallback.
func StringOr(s null.String, fallback string) string {
	if !s.Valid {
		return fallback
	}
	return CoalesceStr(s.String, fallback)
}

// FloatOr formats f without trailing zeros, or returns fallback when unset.
func FloatOr(f null.Float64, fallback string) string {
	if !f.Valid {
		return fallback
	}
	return FormatFloat(f.Float64)
}

// FormatFloat renders f with the fewest digits that round-trip.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
