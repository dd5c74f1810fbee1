package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

// ErrNotFound indicates an inventory id unknown to the feed.
var ErrNotFound = errors.New("inventory: record not found")

// BasicInformation carries the descriptive block of an inventory record.
type BasicInformation struct {
	SpaceName string `json:"spaceName"`
	MediaType string `json:"mediaType,omitempty"`
}

// Location carries the address block of an inventory record.
type Location struct {
	City    string `json:"city"`
	Address string `json:"address,omitempty"`
}

// BookingRange is one booked occupancy window of an inventory.
type BookingRange struct {
	BookingID string    `json:"bookingId,omitempty"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Unit      int       `json:"unit"`
}

// Overlaps reports whether the range intersects [start, end], both inclusive.
func (b BookingRange) Overlaps(start, end time.Time) bool {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return false
	}
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}

// Record is one inventory as served by the feed. It is read only.
type Record struct {
	ID               string              `json:"_id"`
	BasicInformation BasicInformation    `json:"basicInformation"`
	Location         Location            `json:"location"`
	City             string              `json:"city,omitempty"`
	Dimension        []pricing.Dimension `json:"dimension,omitempty"`
	Size             []pricing.Dimension `json:"size,omitempty"`
	Unit             int                 `json:"unit"`
	AreaBasis        string              `json:"areaBasis,omitempty"`
	StartDate        time.Time           `json:"startDate"`
	EndDate          time.Time           `json:"endDate"`
	BookingRange     []BookingRange      `json:"bookingRange,omitempty"`
	Category         string              `json:"category,omitempty"`
	UnderMaintenance bool                `json:"isUnderMaintenance,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// CityName prefers the location block and falls back to the flat field.
func (r Record) CityName() string {
	if c := strings.TrimSpace(r.Location.City); c != "" {
		return c
	}
	return strings.TrimSpace(r.City)
}

// Dimensions prefers dimension and falls back to size.
func (r Record) Dimensions() []pricing.Dimension {
	if len(r.Dimension) > 0 {
		return r.Dimension
	}
	return r.Size
}

// BookedUnits sums the units of booking ranges overlapping [start, end].
// Ranges belonging to excludeBooking are skipped.
func (r Record) BookedUnits(start, end time.Time, excludeBooking string) int {
	booked := 0
	for _, br := range r.BookingRange {
		if excludeBooking != "" && br.BookingID == excludeBooking {
			continue
		}
		if br.Overlaps(start, end) {
			booked += br.Unit
		}
	}
	return booked
}

// AvailableUnits returns the units free across [start, end]. Without dates
// every unit counts as available.
func (r Record) AvailableUnits(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return max(r.Unit, 0)
	}
	return max(r.Unit-r.BookedUnits(start, end, ""), 0)
}

// ToLineItem instantiates a line item for ctx from the record. The item is
// priced at zero and occupies one unit over the record's own dates.
func (r Record) ToLineItem(ctx pricing.Context) pricing.LineItem {
	unit := 1
	if r.Unit < 1 {
		unit = 0
	}
	item := pricing.LineItem{
		ID:          r.ID,
		InventoryID: r.ID,
		Context:     ctx,
		SpaceName:   r.BasicInformation.SpaceName,
		City:        r.CityName(),
		Dimensions:  append([]pricing.Dimension(nil), r.Dimensions()...),
		Unit:        unit,
		AreaBasis:   r.AreaBasis,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		DiscountOn:  pricing.DiscountOnDisplayCost,
	}
	return pricing.Recompute(item)
}

// Filter narrows a feed listing.
type Filter struct {
	City   string
	Search string
	Limit  int
	Offset int
}
