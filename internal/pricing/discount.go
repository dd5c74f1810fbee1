package pricing

import (
	"fmt"
	"strings"
)

// DiscountInput carries the operands of a single discount application.
type DiscountInput struct {
	On            DiscountBase
	Value         float64
	Percentage    float64
	GstPercentage float64
}

// DiscountedAmount applies a percentage discount to Value.
//
// For a display cost base Value is the duration scaled display cost before
// GST, and GstPercentage is applied once after the discount. Pass 0 when GST
// has already been applied upstream. A total price base is already net of
// every GST block, so GstPercentage is ignored. Percentages are not clamped.
func DiscountedAmount(in DiscountInput) float64 {
	discounted := Round2(in.Value - in.Value*in.Percentage/100)
	if in.On == DiscountOnDisplayCost && in.GstPercentage != 0 {
		return ApplyGst(discounted, in.GstPercentage)
	}
	return discounted
}

// DiscountedDisplayCost returns the GST inclusive display cost after a
// display cost discount. Items discounted on total price keep their full
// display cost here.
func DiscountedDisplayCost(item LineItem) float64 {
	if item.DiscountOn == DiscountOnTotalPrice || item.Discount == 0 {
		return TotalDisplayCost(item)
	}
	return DiscountedAmount(DiscountInput{
		On:            DiscountOnDisplayCost,
		Value:         DisplayBase(item),
		Percentage:    item.Discount,
		GstPercentage: item.DisplayCostGstPercentage,
	})
}

// normalizeDiscountBase maps form input onto a discount base. Unknown values
// fall back to the display cost base.
func normalizeDiscountBase(v any) DiscountBase {
	if v == nil {
		return DiscountOnDisplayCost
	}
	if DiscountBase(strings.TrimSpace(fmt.Sprint(v))) == DiscountOnTotalPrice {
		return DiscountOnTotalPrice
	}
	return DiscountOnDisplayCost
}
