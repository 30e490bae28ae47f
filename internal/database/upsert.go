package database

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flipfinder/internal/models"
)

// dealRecord is the gorm mapping of the deals table. Batch persistence
// goes through gorm; reads stay on the raw connection.
type dealRecord struct {
	PropertyID         string  `gorm:"column:property_id;primaryKey"`
	RunID              string  `gorm:"column:run_id"`
	Address            string  `gorm:"column:address"`
	ListPrice          float64 `gorm:"column:list_price"`
	ARV                float64 `gorm:"column:arv"`
	RepairCosts        float64 `gorm:"column:repair_costs"`
	ClosingCosts       float64 `gorm:"column:closing_costs"`
	HoldingCosts       float64 `gorm:"column:holding_costs"`
	TotalProjectCost   float64 `gorm:"column:total_project_cost"`
	PotentialProfit    float64 `gorm:"column:potential_profit"`
	ROI                float64 `gorm:"column:roi"`
	MaxPurchasePrice   float64 `gorm:"column:max_purchase_price"`
	MeetsCriteria      bool    `gorm:"column:meets_criteria"`
	Meets70PercentRule bool    `gorm:"column:meets_70_percent_rule"`
	Score              float64 `gorm:"column:score"`
	AnalysisDate       string  `gorm:"column:analysis_date"`
	Notes              string  `gorm:"column:notes"`
	PropertyData       string  `gorm:"column:property_data"`
}

func (dealRecord) TableName() string { return "deals" }

// UpsertDeals writes a batch of deals inside the given transaction,
// replacing any previous analysis of the same property.
func UpsertDeals(tx *gorm.DB, runID string, deals []*models.Deal) error {
	if len(deals) == 0 {
		return nil
	}

	// deals.run_id references analysis_runs, and the run summary may be
	// recorded after the batch lands. Seed the run row here so the insert
	// order never trips the constraint; SaveAnalysisRun fills it in later.
	if err := tx.Exec(
		"INSERT OR IGNORE INTO analysis_runs (id, started_at) VALUES (?, ?)",
		runID, time.Now().UTC().Format(time.RFC3339),
	).Error; err != nil {
		return err
	}

	records := make([]dealRecord, 0, len(deals))
	for _, deal := range deals {
		snapshot, err := json.Marshal(deal.Property)
		if err != nil {
			return err
		}
		records = append(records, dealRecord{
			PropertyID:         deal.PropertyID,
			RunID:              runID,
			Address:            deal.Address,
			ListPrice:          deal.ListPrice,
			ARV:                deal.ARV,
			RepairCosts:        deal.RepairCosts,
			ClosingCosts:       deal.ClosingCosts.Total,
			HoldingCosts:       deal.HoldingCosts,
			TotalProjectCost:   deal.TotalProjectCost,
			PotentialProfit:    deal.PotentialProfit,
			ROI:                deal.ROI,
			MaxPurchasePrice:   deal.MaxPurchasePrice,
			MeetsCriteria:      deal.MeetsCriteria,
			Meets70PercentRule: deal.Meets70PercentRule,
			Score:              deal.Score,
			AnalysisDate:       deal.AnalysisDate.Format(time.RFC3339),
			Notes:              deal.Notes,
			PropertyData:       string(snapshot),
		})
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}},
		UpdateAll: true,
	}).Create(&records).Error
}
