package booking

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders v as rupees with Indian digit grouping. Display only.
func FormatINR(v float64) string {
	v = pricing.Round2(v)
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	return sign + "₹" + inrPrinter.Sprint(number.Decimal(v, number.Scale(2)))
}

// SummaryLine is the roll-up of one line item.
type SummaryLine struct {
	ItemID    string            `json:"itemId"`
	SpaceName string            `json:"spaceName,omitempty"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Display   string            `json:"display"`
}

// Summary totals a session's selection. Raw numbers are the contract; the
// display strings are for rendering only.
type Summary struct {
	Context       pricing.Context `json:"type"`
	Count         int             `json:"count"`
	Lines         []SummaryLine   `json:"lines"`
	Display       float64         `json:"totalDisplayCost"`
	Printing      float64         `json:"totalPrintingCost"`
	Mounting      float64         `json:"totalMountingCost"`
	TotalDiscount float64         `json:"totalDiscount"`
	Total         float64         `json:"totalAmount"`
	TotalDisplay  string          `json:"totalAmountDisplay"`
}

// Summarize builds the summary of items.
func Summarize(ctx pricing.Context, items []pricing.LineItem) Summary {
	s := Summary{Context: ctx, Count: len(items), Lines: make([]SummaryLine, 0, len(items))}
	for _, item := range items {
		b := pricing.PriceBreakdown(item)
		s.Lines = append(s.Lines, SummaryLine{
			ItemID:    item.ID,
			SpaceName: item.SpaceName,
			Breakdown: b,
			Display:   FormatINR(b.Total),
		})
		s.Display += b.Display
		s.Printing += b.Printing
		s.Mounting += b.Mounting
		s.TotalDiscount += b.TotalDiscount
		s.Total += b.Total
	}
	s.Display = pricing.Round2(s.Display)
	s.Printing = pricing.Round2(s.Printing)
	s.Mounting = pricing.Round2(s.Mounting)
	s.TotalDiscount = pricing.Round2(s.TotalDiscount)
	s.Total = pricing.Round2(s.Total)
	s.TotalDisplay = FormatINR(s.Total)
	return s
}
