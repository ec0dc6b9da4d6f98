package predict

// Insights are the business ratios shown next to a prediction, in percent.
type Insights struct {
	// InventoryROI is monthly revenue over inventory value, net of the
	// inventory itself. Zero when there is no inventory.
	InventoryROI float64 `json:"inventoryRoi"`
	// MarketingShare is marketing spend as a share of monthly revenue.
	// Zero when revenue is not positive.
	MarketingShare float64 `json:"marketingShare"`
}

// ComputeInsights derives the ratios from predicted sales (thousands of
// naira) and the submitted naira amounts.
func ComputeInsights(thousands, inventory, marketing float64) Insights {
	revenue := thousands * 1000
	var in Insights
	if inventory > 0 {
		in.InventoryROI = (revenue - inventory) / inventory * 100
	}
	if revenue > 0 {
		in.MarketingShare = marketing / revenue * 100
	}
	return in
}
