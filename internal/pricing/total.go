package pricing

// Breakdown itemises the roll-up behind a line item's total price.
type Breakdown struct {
	Display       float64 `json:"display"`
	Printing      float64 `json:"printing"`
	Mounting      float64 `json:"mounting"`
	Installation  float64 `json:"installation"`
	Monthly       float64 `json:"monthlyAdditional"`
	OtherCharges  float64 `json:"otherCharges"`
	Traded        float64 `json:"traded"`
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	Total         float64 `json:"total"`
}

// PriceBreakdown aggregates every cost block of item from its cached totals.
//
// Bookings treat other charges as a deduction. Proposals quote costs
// exclusive of GST and add other charges as an extra line instead.
// Negative totals are kept.
func PriceBreakdown(item LineItem) Breakdown {
	b := Breakdown{
		Display:      item.TotalDisplayCost,
		Printing:     item.TotalPrintingCost,
		Mounting:     item.TotalMountingCost,
		Installation: item.OneTimeInstallationCost,
		Monthly:      item.MonthlyAdditionalCost,
		OtherCharges: item.OtherCharges,
		Traded:       item.TradedAmount,
	}
	if item.DiscountOn != DiscountOnTotalPrice && item.Discount != 0 {
		b.Display = item.DiscountedDisplayCost
	}

	sum := b.Display + b.Printing + b.Mounting + b.Installation + b.Monthly
	if item.Context == ContextProposal {
		sum += b.OtherCharges
	} else {
		sum -= b.OtherCharges
	}
	sum -= b.Traded
	b.Subtotal = Round2(sum)

	b.Total = b.Subtotal
	if item.DiscountOn == DiscountOnTotalPrice && item.Discount != 0 {
		b.Total = DiscountedAmount(DiscountInput{
			On:         DiscountOnTotalPrice,
			Value:      b.Subtotal,
			Percentage: item.Discount,
		})
		b.TotalDiscount = Round2(b.Subtotal - b.Total)
	}
	return b
}

// TotalPrice returns the aggregated price of item.
func TotalPrice(item LineItem) float64 {
	return PriceBreakdown(item).Total
}
