// Package pricing derives the interdependent money fields of an inventory line item.
package pricing

import "time"

// Context distinguishes the flow that owns a line item.
type Context string

const (
	// ContextBooking is the booking creation flow.
	ContextBooking Context = "bookings"
	// ContextProposal is the proposal builder flow.
	ContextProposal Context = "proposal"
)

// Valid reports whether c is a known context.
func (c Context) Valid() bool {
	return c == ContextBooking || c == ContextProposal
}

// DiscountBase selects what a discount percentage is applied to.
type DiscountBase string

const (
	DiscountOnDisplayCost DiscountBase = "displayCost"
	DiscountOnTotalPrice  DiscountBase = "totalPrice"
)

// AreaBasisUnit marks inventory sold per discrete unit rather than per square foot.
const AreaBasisUnit = "unit"

// Dimension is one width/height pair in feet.
type Dimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LineItem is one priced unit of advertising space within a booking or proposal.
type LineItem struct {
	ID          string      `json:"id"`
	InventoryID string      `json:"inventoryId"`
	Context     Context     `json:"type"`
	SpaceName   string      `json:"spaceName,omitempty"`
	City        string      `json:"city,omitempty"`
	Dimensions  []Dimension `json:"dimension"`
	Unit        int         `json:"unit"`
	InitialUnit int         `json:"initialUnit,omitempty"`
	AreaBasis   string      `json:"areaBasis,omitempty"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`

	DisplayCostPerMonth      float64 `json:"displayCostPerMonth"`
	DisplayCostPerSqFt       float64 `json:"displayCostPerSqFt"`
	DisplayCostGstPercentage float64 `json:"displayCostGstPercentage"`
	PrintingCostPerSqft      float64 `json:"printingCostPerSqft"`
	PrintingGstPercentage    float64 `json:"printingGstPercentage"`
	MountingCostPerSqft      float64 `json:"mountingCostPerSqft"`
	MountingGstPercentage    float64 `json:"mountingGstPercentage"`
	OneTimeInstallationCost  float64 `json:"oneTimeInstallationCost"`
	MonthlyAdditionalCost    float64 `json:"monthlyAdditionalCost"`
	OtherCharges             float64 `json:"otherCharges"`
	TradedAmount             float64 `json:"tradedAmount"`

	DiscountOn                      DiscountBase `json:"discountOn"`
	Discount                        float64      `json:"discount"`
	ApplyDiscountForAll             bool         `json:"applyDiscountForAll"`
	ApplyPrintingMountingCostForAll bool         `json:"applyPrintingMountingCostForAll"`

	TotalDisplayCost      float64 `json:"totalDisplayCost"`
	TotalPrintingCost     float64 `json:"totalPrintingCost"`
	TotalMountingCost     float64 `json:"totalMountingCost"`
	DiscountedDisplayCost float64 `json:"discountedDisplayCost"`
	TotalPrice            float64 `json:"totalPrice"`

	SubjectToExtension bool `json:"subjectToExtension"`
	PriceChanged       bool `json:"priceChanged"`
}

// Field names an editable or derived line item field.
type Field string

const (
	FieldDisplayCostPerMonth      Field = "displayCostPerMonth"
	FieldDisplayCostPerSqFt       Field = "displayCostPerSqFt"
	FieldDisplayCostGstPercentage Field = "displayCostGstPercentage"
	FieldPrintingCostPerSqft      Field = "printingCostPerSqft"
	FieldPrintingGstPercentage    Field = "printingGstPercentage"
	FieldMountingCostPerSqft      Field = "mountingCostPerSqft"
	FieldMountingGstPercentage    Field = "mountingGstPercentage"
	FieldOneTimeInstallationCost  Field = "oneTimeInstallationCost"
	FieldMonthlyAdditionalCost    Field = "monthlyAdditionalCost"
	FieldOtherCharges             Field = "otherCharges"
	FieldTradedAmount             Field = "tradedAmount"
	FieldDiscount                 Field = "discount"
	FieldDiscountOn               Field = "discountOn"
	FieldUnit                     Field = "unit"
	FieldStartDate                Field = "startDate"
	FieldEndDate                  Field = "endDate"

	FieldTotalDisplayCost      Field = "totalDisplayCost"
	FieldTotalPrintingCost     Field = "totalPrintingCost"
	FieldTotalMountingCost     Field = "totalMountingCost"
	FieldDiscountedDisplayCost Field = "discountedDisplayCost"
	FieldTotalPrice            Field = "totalPrice"
)

// Editable reports whether the field accepts user input.
func (f Field) Editable() bool {
	_, ok := editableFields[f]
	return ok
}

var editableFields = map[Field]struct{}{
	FieldDisplayCostPerMonth:      {},
	FieldDisplayCostPerSqFt:       {},
	FieldDisplayCostGstPercentage: {},
	FieldPrintingCostPerSqft:      {},
	FieldPrintingGstPercentage:    {},
	FieldMountingCostPerSqft:      {},
	FieldMountingGstPercentage:    {},
	FieldOneTimeInstallationCost:  {},
	FieldMonthlyAdditionalCost:    {},
	FieldOtherCharges:             {},
	FieldTradedAmount:             {},
	FieldDiscount:                 {},
	FieldDiscountOn:               {},
	FieldUnit:                     {},
	FieldStartDate:                {},
	FieldEndDate:                  {},
}

// HasPricing reports whether any cost input carries a nonzero value.
func (li LineItem) HasPricing() bool {
	return li.DisplayCostPerMonth != 0 ||
		li.DisplayCostPerSqFt != 0 ||
		li.PrintingCostPerSqft != 0 ||
		li.MountingCostPerSqft != 0 ||
		li.OneTimeInstallationCost != 0 ||
		li.MonthlyAdditionalCost != 0 ||
		li.OtherCharges != 0 ||
		li.TradedAmount != 0 ||
		li.Discount != 0
}

// Clone returns a copy that shares no slices with li.
func (li LineItem) Clone() LineItem {
	out := li
	if li.Dimensions != nil {
		out.Dimensions = append([]Dimension(nil), li.Dimensions...)
	}
	return out
}

// Observer receives one notification per recomputation.
type Observer interface {
	ObserveRecompute(field string, updates int)
}
