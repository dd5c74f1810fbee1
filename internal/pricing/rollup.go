package pricing

// DisplayBase is the pre-GST display cost of an item across its duration.
func DisplayBase(item LineItem) float64 {
	return item.DisplayCostPerMonth * TotalMonths(item.StartDate, item.EndDate)
}

// TotalDisplayCost returns the GST inclusive display cost across the item's duration.
func TotalDisplayCost(item LineItem) float64 {
	return ApplyGst(DisplayBase(item), item.DisplayCostGstPercentage)
}

// TotalPrintingOrMountingCost prices a per square foot cost over the item's
// area. For items sold per unit the area is the unit count.
func TotalPrintingOrMountingCost(item LineItem, costPerSqft, gstPercentage float64) float64 {
	return ApplyGst(costPerSqft*TotalArea(item), gstPercentage)
}

// TotalPrintingCost prices the printing block of item.
func TotalPrintingCost(item LineItem) float64 {
	return TotalPrintingOrMountingCost(item, item.PrintingCostPerSqft, item.PrintingGstPercentage)
}

// TotalMountingCost prices the mounting block of item.
func TotalMountingCost(item LineItem) float64 {
	return TotalPrintingOrMountingCost(item, item.MountingCostPerSqft, item.MountingGstPercentage)
}

// PerSqFtFromMonthly derives the per square foot display rate. Zero area yields 0.
func PerSqFtFromMonthly(perMonth, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return Round2(perMonth / area)
}

// MonthlyFromPerSqFt derives the monthly display rate from a per square foot rate.
func MonthlyFromPerSqFt(perSqFt, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return Round2(perSqFt * area)
}
