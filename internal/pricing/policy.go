package pricing

import (
	"strings"
	"time"
)

// Update is one field assignment produced by a recomputation.
type Update struct {
	Field Field `json:"field"`
	Value any   `json:"value"`
}

// Patch is the outcome of a single field edit: the normalised input and the
// derived updates in the order they were computed.
type Patch struct {
	Source  Field    `json:"source"`
	Input   any      `json:"input"`
	Updates []Update `json:"updates"`
}

// Value returns the last update recorded for f.
func (p Patch) Value(f Field) (any, bool) {
	for i := len(p.Updates) - 1; i >= 0; i-- {
		if p.Updates[i].Field == f {
			return p.Updates[i].Value, true
		}
	}
	return nil, false
}

// Fields lists the updated fields in order.
func (p Patch) Fields() []Field {
	out := make([]Field, 0, len(p.Updates))
	for _, u := range p.Updates {
		out = append(out, u.Field)
	}
	return out
}

// Apply returns a copy of item with the input and every update assigned.
func (p Patch) Apply(item LineItem) LineItem {
	next := item.Clone()
	if !p.Source.Editable() {
		return next
	}
	assign(&next, p.Source, p.Input)
	for _, u := range p.Updates {
		assign(&next, u.Field, u.Value)
	}
	next.PriceChanged = true
	return next
}

// dependents maps an edited field to the fields it recomputes, in order.
// A field never appears among its own dependents.
var dependents = map[Field][]Field{
	FieldDisplayCostPerMonth:      {FieldDisplayCostPerSqFt, FieldTotalDisplayCost},
	FieldDisplayCostPerSqFt:       {FieldDisplayCostPerMonth, FieldTotalDisplayCost},
	FieldDisplayCostGstPercentage: {FieldTotalDisplayCost},
	FieldPrintingCostPerSqft:      {FieldTotalPrintingCost},
	FieldPrintingGstPercentage:    {FieldTotalPrintingCost},
	FieldMountingCostPerSqft:      {FieldTotalMountingCost},
	FieldMountingGstPercentage:    {FieldTotalMountingCost},
	FieldUnit:                     {FieldDisplayCostPerSqFt, FieldTotalDisplayCost, FieldTotalPrintingCost, FieldTotalMountingCost},
	FieldStartDate:                {FieldTotalDisplayCost},
	FieldEndDate:                  {FieldTotalDisplayCost},
}

var derivations = map[Field]func(LineItem) float64{
	FieldDisplayCostPerSqFt: func(li LineItem) float64 {
		return PerSqFtFromMonthly(li.DisplayCostPerMonth, TotalArea(li))
	},
	FieldDisplayCostPerMonth: func(li LineItem) float64 {
		return MonthlyFromPerSqFt(li.DisplayCostPerSqFt, TotalArea(li))
	},
	FieldTotalDisplayCost:      TotalDisplayCost,
	FieldTotalPrintingCost:     TotalPrintingCost,
	FieldTotalMountingCost:     TotalMountingCost,
	FieldDiscountedDisplayCost: DiscountedDisplayCost,
	FieldTotalPrice:            TotalPrice,
}

// Dependents returns the fields recomputed, in order, when f is edited.
// The trailing discount output and total price are always included.
func Dependents(f Field) []Field {
	if !f.Editable() {
		return nil
	}
	deps := append([]Field(nil), dependents[f]...)
	if affectsDiscount(f, deps) {
		deps = append(deps, FieldDiscountedDisplayCost)
	}
	return append(deps, FieldTotalPrice)
}

func affectsDiscount(f Field, deps []Field) bool {
	if f == FieldDiscount || f == FieldDiscountOn {
		return true
	}
	for _, d := range deps {
		if d == FieldTotalDisplayCost {
			return true
		}
	}
	return false
}

// OnFieldChange computes the patch for one edit of field to value.
// Values may be numbers or numeric strings; anything unparseable counts as 0.
// Fields that are not editable produce an empty patch.
func OnFieldChange(field Field, value any, item LineItem) Patch {
	p := Patch{Source: field}
	if !field.Editable() {
		return p
	}
	next := item.Clone()
	p.Input = normalize(field, value)
	assign(&next, field, p.Input)

	for _, dep := range Dependents(field) {
		v := derivations[dep](next)
		assign(&next, dep, v)
		p.Updates = append(p.Updates, Update{Field: dep, Value: v})
	}
	return p
}

// Recompute rederives every output of item. The monthly display rate is the
// anchor unless only the per square foot rate is known.
func Recompute(item LineItem) LineItem {
	next := item.Clone()
	if next.DiscountOn == "" {
		next.DiscountOn = DiscountOnDisplayCost
	}
	area := TotalArea(next)
	if next.DisplayCostPerMonth == 0 && next.DisplayCostPerSqFt != 0 {
		next.DisplayCostPerMonth = MonthlyFromPerSqFt(next.DisplayCostPerSqFt, area)
	} else {
		next.DisplayCostPerSqFt = PerSqFtFromMonthly(next.DisplayCostPerMonth, area)
	}
	next.TotalDisplayCost = TotalDisplayCost(next)
	next.TotalPrintingCost = TotalPrintingCost(next)
	next.TotalMountingCost = TotalMountingCost(next)
	next.DiscountedDisplayCost = DiscountedDisplayCost(next)
	next.TotalPrice = TotalPrice(next)
	return next
}

// Engine runs the policy and reports each recomputation to an observer.
type Engine struct {
	observer Observer
}

// NewEngine constructs an Engine. A nil observer is allowed.
func NewEngine(observer Observer) *Engine {
	return &Engine{observer: observer}
}

// OnFieldChange wraps the package level policy.
func (e *Engine) OnFieldChange(field Field, value any, item LineItem) Patch {
	p := OnFieldChange(field, value, item)
	if e != nil && e.observer != nil {
		e.observer.ObserveRecompute(string(field), len(p.Updates))
	}
	return p
}

// Recompute wraps the package level full recomputation.
func (e *Engine) Recompute(item LineItem) LineItem {
	if e != nil && e.observer != nil {
		e.observer.ObserveRecompute("all", len(derivations))
	}
	return Recompute(item)
}

func normalize(f Field, v any) any {
	switch f {
	case FieldDiscountOn:
		return normalizeDiscountBase(v)
	case FieldUnit:
		n := int(Number(v))
		if n < 0 {
			n = 0
		}
		return n
	case FieldStartDate, FieldEndDate:
		return ParseDate(v)
	default:
		return Number(v)
	}
}

// ParseDate accepts a time or a YYYY-MM-DD / RFC 3339 string. Anything else
// is the zero time, which the calculators treat as absent.
func ParseDate(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.Parse("2006-01-02", s); err == nil {
			return d
		}
		if d, err := time.Parse(time.RFC3339, s); err == nil {
			return d
		}
	}
	return time.Time{}
}

func assign(li *LineItem, f Field, v any) {
	switch f {
	case FieldDiscountOn:
		li.DiscountOn = normalizeDiscountBase(v)
		return
	case FieldUnit:
		li.Unit = int(Number(v))
		return
	case FieldStartDate:
		li.StartDate = ParseDate(v)
		return
	case FieldEndDate:
		li.EndDate = ParseDate(v)
		return
	}
	if dst := moneyField(li, f); dst != nil {
		*dst = Number(v)
	}
}

func moneyField(li *LineItem, f Field) *float64 {
	switch f {
	case FieldDisplayCostPerMonth:
		return &li.DisplayCostPerMonth
	case FieldDisplayCostPerSqFt:
		return &li.DisplayCostPerSqFt
	case FieldDisplayCostGstPercentage:
		return &li.DisplayCostGstPercentage
	case FieldPrintingCostPerSqft:
		return &li.PrintingCostPerSqft
	case FieldPrintingGstPercentage:
		return &li.PrintingGstPercentage
	case FieldMountingCostPerSqft:
		return &li.MountingCostPerSqft
	case FieldMountingGstPercentage:
		return &li.MountingGstPercentage
	case FieldOneTimeInstallationCost:
		return &li.OneTimeInstallationCost
	case FieldMonthlyAdditionalCost:
		return &li.MonthlyAdditionalCost
	case FieldOtherCharges:
		return &li.OtherCharges
	case FieldTradedAmount:
		return &li.TradedAmount
	case FieldDiscount:
		return &li.Discount
	case FieldTotalDisplayCost:
		return &li.TotalDisplayCost
	case FieldTotalPrintingCost:
		return &li.TotalPrintingCost
	case FieldTotalMountingCost:
		return &li.TotalMountingCost
	case FieldDiscountedDisplayCost:
		return &li.DiscountedDisplayCost
	case FieldTotalPrice:
		return &li.TotalPrice
	}
	return nil
}
