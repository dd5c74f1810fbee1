package pricing

import "time"

// TotalMonths returns the months spanned by an inclusive date range.
//
// Whole calendar months are counted from start; the days left over are a
// fraction of the month that follows. A zero start or end yields 0, as does
// an end before start.
func TotalMonths(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return 0
	}
	stop := end.AddDate(0, 0, 1)

	whole := (stop.Year()-start.Year())*12 + int(stop.Month()-start.Month())
	anchor := addMonths(start, whole)
	for whole > 0 && anchor.After(stop) {
		whole--
		anchor = addMonths(start, whole)
	}
	next := addMonths(start, whole+1)

	span := days(anchor, next)
	if span <= 0 {
		return float64(whole)
	}
	return float64(whole) + days(anchor, stop)/span
}

// TotalArea returns the billable area of an item in square feet, scaled by
// its unit count. Items sold per unit report the unit count instead.
func TotalArea(item LineItem) float64 {
	units := item.Unit
	if units < 0 {
		units = 0
	}
	if item.AreaBasis == AreaBasisUnit {
		return float64(units)
	}
	var area float64
	for _, d := range item.Dimensions {
		if d.Width <= 0 || d.Height <= 0 {
			continue
		}
		area += d.Width * d.Height
	}
	return area * float64(units)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addMonths moves t by n calendar months, clamping to the last day of the
// target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func days(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
