package chartcsv

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// formatNumber renders a float the way the charting host stringifies numbers:
// shortest round-trip decimal, exponent form outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go writes e+07 / e-07; the host writes e+7 / e-7.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatNullable renders a nullable number; nil renders as an empty cell.
func formatNullable(f *float64) string {
	if f == nil {
		return ""
	}
	return formatNumber(*f)
}

// formatDate formats epoch milliseconds with a strftime pattern in UTC.
func formatDate(pattern string, ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return ""
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return strftime.Format(pattern, t)
}
