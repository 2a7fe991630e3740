package parser

import (
	"math"
	"strconv"
)

// ParseValue attempts to parse a cell string as a number.
// Returns int64 for integers, float64 for finite decimals, or the original
// string. Spellings such as "NaN" or "+Inf" stay strings.
func ParseValue(s string) interface{} {
	return parseValue(s)
}

func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	// Return as string
	return s
}
