package models

import "time"

// ClosingCosts itemizes the purchase-side and sale-side closing costs of a
// flip project.
type ClosingCosts struct {
	PurchaseClosing float64 `json:"purchase_closing"`
	AgentCommission float64 `json:"agent_commission"`
	SellerClosing   float64 `json:"seller_closing"`
	Total           float64 `json:"total"`
}

// Deal is the derived financial analysis of one property for one run. Deals
// are recreated, never mutated in place, whenever parameters change and the
// property is reanalyzed.
type Deal struct {
	PropertyID       string       `json:"property_id"`
	Address          string       `json:"address"`
	ListPrice        float64      `json:"list_price"`
	ARV              float64      `json:"arv"`
	RepairCosts      float64      `json:"repair_costs"`
	ClosingCosts     ClosingCosts `json:"closing_costs"`
	HoldingCosts     float64      `json:"holding_costs"`
	TotalProjectCost float64      `json:"total_project_cost"`
	PotentialProfit  float64      `json:"potential_profit"`
	ROI              float64      `json:"roi"`

	MaxPurchasePrice   float64 `json:"max_purchase_price"`
	MeetsCriteria      bool    `json:"meets_criteria"`
	Meets70PercentRule bool    `json:"meets_70_percent_rule"`
	Score              float64 `json:"score"`

	AnalysisDate time.Time `json:"analysis_date"`
	Notes        string    `json:"notes,omitempty"`

	Property PropertySnapshot `json:"property_data"`
}

// Flatten returns the deal as a flat mapping of named fields, the shape
// consumed by tabular display, spreadsheet export and notifications.
func (d *Deal) Flatten() map[string]any {
	return map[string]any{
		"property_id":           d.PropertyID,
		"address":               d.Address,
		"list_price":            d.ListPrice,
		"arv":                   d.ARV,
		"repair_costs":          d.RepairCosts,
		"closing_costs":         d.ClosingCosts.Total,
		"holding_costs":         d.HoldingCosts,
		"total_project_cost":    d.TotalProjectCost,
		"potential_profit":      d.PotentialProfit,
		"roi":                   d.ROI,
		"max_purchase_price":    d.MaxPurchasePrice,
		"meets_criteria":        d.MeetsCriteria,
		"meets_70_percent_rule": d.Meets70PercentRule,
		"score":                 d.Score,
		"analysis_date":         d.AnalysisDate.Format(time.RFC3339),
	}
}
