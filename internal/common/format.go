package common

import "fmt"

// FormatValue renders an optional financial metric for prompt text.
//
// Rules:
//   - nil always renders as "N/A", regardless of the requested format
//   - pct multiplies by 100 and appends "%" with two decimals
//   - a "$" prefix abbreviates at the billion/million boundary:
//     >1e9 -> "$X.XXB", >1e6 -> "$X.XXM", else "$X.XX"
//   - everything else prints with two decimals between prefix and suffix
func FormatValue(v *float64, prefix, suffix string, pct bool) string {
	if v == nil {
		return "N/A"
	}
	if pct {
		return fmt.Sprintf("%.2f%%", *v*100)
	}
	if prefix == "$" && *v > 1e9 {
		return fmt.Sprintf("$%.2fB", *v/1e9)
	}
	if prefix == "$" && *v > 1e6 {
		return fmt.Sprintf("$%.2fM", *v/1e6)
	}
	return fmt.Sprintf("%s%.2f%s", prefix, *v, suffix)
}

// FormatCurrency renders an optional value as an abbreviated dollar amount
func FormatCurrency(v *float64) string {
	return FormatValue(v, "$", "", false)
}

// FormatPct renders an optional fractional value as a percentage
func FormatPct(v *float64) string {
	return FormatValue(v, "", "", true)
}

// FormatRatio renders an optional value with two decimals and no abbreviation
func FormatRatio(v *float64) string {
	return FormatValue(v, "", "", false)
}
