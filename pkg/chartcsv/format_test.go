package chartcsv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{10, "10"},
		{-2.5, "-2.5"},
		{0.1 + 0.2, "0.30000000000000004"},
		{123456789, "123456789"},
		{100.0 / 3, "33.333333333333336"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "formatNumber(%v)", tt.in)
	}
}

func TestFormatNullable(t *testing.T) {
	assert.Equal(t, "", formatNullable(nil))
	assert.Equal(t, "4", formatNullable(num(4)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-02-29 23:59:59", formatDate(DefaultDateFormat, 1709251199000))
	assert.Equal(t, "1970-01-01", formatDate("%Y-%m-%d", 0))
	assert.Equal(t, "", formatDate(DefaultDateFormat, math.NaN()))
}
