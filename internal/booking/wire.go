package booking

import (
	"encoding/json"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

const wireDate = "2006-01-02"

// WireLine is one line item as sent to the submission endpoint. Display
// only fields are dropped and money is rounded to two decimals. The
// discounted display cost is written under the name its context expects.
type WireLine struct {
	Context     pricing.Context `json:"-"`
	ID          string          `json:"lineItemId"`
	InventoryID string          `json:"inventory"`
	Unit        int             `json:"unit"`
	InitialUnit int             `json:"initialUnit,omitempty"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`

	DisplayCostPerMonth      float64              `json:"displayCostPerMonth"`
	DisplayCostPerSqFt       float64              `json:"displayCostPerSqFt"`
	DisplayCostGstPercentage float64              `json:"displayCostGstPercentage"`
	PrintingCostPerSqft      float64              `json:"printingCostPerSqft"`
	PrintingGstPercentage    float64              `json:"printingGstPercentage"`
	MountingCostPerSqft      float64              `json:"mountingCostPerSqft"`
	MountingGstPercentage    float64              `json:"mountingGstPercentage"`
	OneTimeInstallationCost  float64              `json:"oneTimeInstallationCost"`
	MonthlyAdditionalCost    float64              `json:"monthlyAdditionalCost"`
	OtherCharges             float64              `json:"otherCharges"`
	TradedAmount             float64              `json:"tradedAmount"`
	DiscountOn               pricing.DiscountBase `json:"discountOn"`
	Discount                 float64              `json:"discount"`

	TotalDisplayCost      float64 `json:"totalDisplayCost"`
	TotalPrintingCost     float64 `json:"totalPrintingCost"`
	TotalMountingCost     float64 `json:"totalMountingCost"`
	DiscountedDisplayCost float64 `json:"-"`
	TotalPrice            float64 `json:"totalPrice"`

	SubjectToExtension bool `json:"subjectToExtension"`
	PriceChanged       bool `json:"priceChanged"`
}

type wireLine WireLine

type bookingWire struct {
	wireLine
	Discounted float64 `json:"discountedPriceOverDisplayCost"`
}

type proposalWire struct {
	wireLine
	Discounted float64 `json:"discountedDisplayCost"`
}

// DiscountFieldName is the external name of the discounted display cost.
func DiscountFieldName(ctx pricing.Context) string {
	if ctx == pricing.ContextBooking {
		return "discountedPriceOverDisplayCost"
	}
	return "discountedDisplayCost"
}

// MarshalJSON implements json.Marshaler.
func (l WireLine) MarshalJSON() ([]byte, error) {
	if l.Context == pricing.ContextBooking {
		return json.Marshal(bookingWire{wireLine: wireLine(l), Discounted: l.DiscountedDisplayCost})
	}
	return json.Marshal(proposalWire{wireLine: wireLine(l), Discounted: l.DiscountedDisplayCost})
}

// UnmarshalJSON infers the context from whichever discount name is present.
func (l *WireLine) UnmarshalJSON(data []byte) error {
	var aux struct {
		wireLine
		Booking  *float64 `json:"discountedPriceOverDisplayCost"`
		Proposal *float64 `json:"discountedDisplayCost"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = WireLine(aux.wireLine)
	switch {
	case aux.Booking != nil:
		l.Context = pricing.ContextBooking
		l.DiscountedDisplayCost = *aux.Booking
	case aux.Proposal != nil:
		l.Context = pricing.ContextProposal
		l.DiscountedDisplayCost = *aux.Proposal
	}
	return nil
}

// Finalize converts the selection into wire lines for ctx.
func Finalize(ctx pricing.Context, items []pricing.LineItem) []WireLine {
	lines := make([]WireLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, finalizeLine(ctx, item))
	}
	return lines
}

func finalizeLine(ctx pricing.Context, item pricing.LineItem) WireLine {
	r := pricing.Round2
	inventoryID := item.InventoryID
	if inventoryID == "" {
		inventoryID = item.ID
	}
	discountOn := item.DiscountOn
	if discountOn == "" {
		discountOn = pricing.DiscountOnDisplayCost
	}
	line := WireLine{
		Context:     ctx,
		ID:          item.ID,
		InventoryID: inventoryID,
		Unit:        item.Unit,
		InitialUnit: item.InitialUnit,

		DisplayCostPerMonth:      r(item.DisplayCostPerMonth),
		DisplayCostPerSqFt:       r(item.DisplayCostPerSqFt),
		DisplayCostGstPercentage: r(item.DisplayCostGstPercentage),
		PrintingCostPerSqft:      r(item.PrintingCostPerSqft),
		PrintingGstPercentage:    r(item.PrintingGstPercentage),
		MountingCostPerSqft:      r(item.MountingCostPerSqft),
		MountingGstPercentage:    r(item.MountingGstPercentage),
		OneTimeInstallationCost:  r(item.OneTimeInstallationCost),
		MonthlyAdditionalCost:    r(item.MonthlyAdditionalCost),
		OtherCharges:             r(item.OtherCharges),
		TradedAmount:             r(item.TradedAmount),
		DiscountOn:               discountOn,
		Discount:                 r(item.Discount),

		TotalDisplayCost:      r(item.TotalDisplayCost),
		TotalPrintingCost:     r(item.TotalPrintingCost),
		TotalMountingCost:     r(item.TotalMountingCost),
		DiscountedDisplayCost: r(item.DiscountedDisplayCost),
		TotalPrice:            r(item.TotalPrice),

		SubjectToExtension: item.SubjectToExtension,
		PriceChanged:       item.PriceChanged,
	}
	if !item.StartDate.IsZero() {
		line.StartDate = item.StartDate.Format(wireDate)
	}
	if !item.EndDate.IsZero() {
		line.EndDate = item.EndDate.Format(wireDate)
	}
	return line
}

// TotalAmount sums the wire totals.
func TotalAmount(lines []WireLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.TotalPrice
	}
	return pricing.Round2(total)
}
