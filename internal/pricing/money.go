package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Number coerces a form value into a float. Anything that does not parse is 0.
func Number(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
		if v == "" {
			return 0
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ApplyGst returns base plus gst percent, rounded. Neither argument is clamped.
func ApplyGst(base, gstPercentage float64) float64 {
	return Round2(base * (1 + gstPercentage/100))
}
