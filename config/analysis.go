package config

import (
	"errors"
	"fmt"
)

// RepairCostTable holds the flat dollar amounts used by the repair models.
type RepairCostTable struct {
	BaseSqftCost float64 `yaml:"base_sqft_cost"`
	Kitchen      float64 `yaml:"kitchen"`
	Bathroom     float64 `yaml:"bathroom"`
	Roof         float64 `yaml:"roof"`
	HVAC         float64 `yaml:"hvac"`
	Foundation   float64 `yaml:"foundation"`
	Electrical   float64 `yaml:"electrical"`
	Plumbing     float64 `yaml:"plumbing"`
}

// RenovationRates are the per-square-foot rates for each renovation level
// used by the detailed estimator.
type RenovationRates struct {
	Cosmetic  float64 `yaml:"cosmetic"`
	Moderate  float64 `yaml:"moderate"`
	Extensive float64 `yaml:"extensive"`
	Complete  float64 `yaml:"complete"`
}

// ItemCostTable holds the line-item costs for the detailed estimator.
type ItemCostTable struct {
	RoofRepair       float64 `yaml:"roof_repair"`
	RoofReplace      float64 `yaml:"roof_replace"`
	HVACRepair       float64 `yaml:"hvac_repair"`
	HVACReplace      float64 `yaml:"hvac_replace"`
	KitchenModerate  float64 `yaml:"kitchen_moderate"`
	KitchenExtensive float64 `yaml:"kitchen_extensive"`
	KitchenHighEnd   float64 `yaml:"kitchen_high_end"`
	BathModerate     float64 `yaml:"bath_moderate"`
	BathExtensive    float64 `yaml:"bath_extensive"`
	BathHighEnd      float64 `yaml:"bath_high_end"`
	ElectricalUpdate float64 `yaml:"electrical_update"`
	PlumbingUpdate   float64 `yaml:"plumbing_update"`
}

// ClosingCostRates are the percentage rates applied to purchase and sale.
type ClosingCostRates struct {
	PurchasePct        float64 `yaml:"purchase_pct"`
	SellerClosingPct   float64 `yaml:"seller_closing_pct"`
	AgentCommissionPct float64 `yaml:"agent_commission_pct"`
}

// HoldingCostRates are annual rates plus a flat monthly utility charge.
type HoldingCostRates struct {
	MortgageRate     float64 `yaml:"mortgage_rate"`
	PropertyTaxRate  float64 `yaml:"property_tax_rate"`
	InsuranceRate    float64 `yaml:"insurance_rate"`
	MonthlyUtilities float64 `yaml:"monthly_utilities"`
}

// ScoringWeights drive the composite deal score.
type ScoringWeights struct {
	Profit              float64 `yaml:"profit"`
	ROI                 float64 `yaml:"roi"`
	RepairCost          float64 `yaml:"repair_cost"`
	DaysOnMarket        float64 `yaml:"days_on_market"`
	OpportunityKeywords float64 `yaml:"opportunity_keywords"`
	Meets70Rule         float64 `yaml:"meets_70_rule"`
}

// ARVConfig controls comp eligibility and the outlier rejection step.
type ARVConfig struct {
	MaxCompDistanceMiles float64 `yaml:"max_comp_distance_miles"`
	MaxCompAgeMonths     int     `yaml:"max_comp_age_months"`
	MinCompSqftPct       float64 `yaml:"min_comp_sqft_pct"`
	MaxCompSqftPct       float64 `yaml:"max_comp_sqft_pct"`
	ExcludeOutliers      bool    `yaml:"exclude_outliers"`
	OutlierStdDevs       float64 `yaml:"outlier_std_devs"`
	OutlierMinSamples    int     `yaml:"outlier_min_samples"`
	MinComps             int     `yaml:"min_comps"`
	FallbackMultiplier   float64 `yaml:"fallback_multiplier"`
}

// AnalysisConfig is the full parameter set for one analysis run. It is a
// plain value passed into every pipeline call, so concurrent what-if runs
// with different parameters cannot interfere with each other.
type AnalysisConfig struct {
	RepairCosts       RepairCostTable  `yaml:"repair_costs"`
	RenovationRates   RenovationRates  `yaml:"renovation_rates"`
	ItemCosts         ItemCostTable    `yaml:"item_costs"`
	ClosingCosts      ClosingCostRates `yaml:"closing_costs"`
	HoldingCosts      HoldingCostRates `yaml:"holding_costs"`
	Scoring           ScoringWeights   `yaml:"scoring"`
	ARV               ARVConfig        `yaml:"arv"`
	AverageFlipMonths float64          `yaml:"average_flip_months"`
	MinROI            float64          `yaml:"min_roi"`
	ContingencyPct    float64          `yaml:"contingency_pct"`
}

// DefaultAnalysisConfig returns the calibrated default parameter table.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		RepairCosts: RepairCostTable{
			BaseSqftCost: 20,
			Kitchen:      15000,
			Bathroom:     7500,
			Roof:         10000,
			HVAC:         8000,
			Foundation:   15000,
			Electrical:   8000,
			Plumbing:     7000,
		},
		RenovationRates: RenovationRates{
			Cosmetic:  15,
			Moderate:  30,
			Extensive: 60,
			Complete:  100,
		},
		ItemCosts: ItemCostTable{
			RoofRepair:       2500,
			RoofReplace:      10000,
			HVACRepair:       1500,
			HVACReplace:      8000,
			KitchenModerate:  15000,
			KitchenExtensive: 15000,
			KitchenHighEnd:   30000,
			BathModerate:     7500,
			BathExtensive:    7500,
			BathHighEnd:      15000,
			ElectricalUpdate: 5000,
			PlumbingUpdate:   5000,
		},
		ClosingCosts: ClosingCostRates{
			PurchasePct:        0.03,
			SellerClosingPct:   0.02,
			AgentCommissionPct: 0.06,
		},
		HoldingCosts: HoldingCostRates{
			MortgageRate:     0.07,
			PropertyTaxRate:  0.015,
			InsuranceRate:    0.005,
			MonthlyUtilities: 200,
		},
		Scoring: ScoringWeights{
			Profit:              40,
			ROI:                 30,
			RepairCost:          15,
			DaysOnMarket:        10,
			OpportunityKeywords: 5,
			Meets70Rule:         5,
		},
		ARV: ARVConfig{
			MaxCompDistanceMiles: 1.0,
			MaxCompAgeMonths:     6,
			MinCompSqftPct:       0.8,
			MaxCompSqftPct:       1.2,
			ExcludeOutliers:      true,
			OutlierStdDevs:       2,
			OutlierMinSamples:    5,
			MinComps:             3,
			FallbackMultiplier:   1.5,
		},
		AverageFlipMonths: 4,
		MinROI:            20,
		ContingencyPct:    0.10,
	}
}

// Validate fails fast on parameter combinations that would produce
// misleading deals rather than letting them flow through scoring.
func (c AnalysisConfig) Validate() error {
	if c.ARV.MinCompSqftPct <= 0 || c.ARV.MaxCompSqftPct <= 0 {
		return errors.New("comp square footage bounds must be positive")
	}
	if c.ARV.MinCompSqftPct > c.ARV.MaxCompSqftPct {
		return fmt.Errorf("inverted comp square footage bounds: min %.2f > max %.2f",
			c.ARV.MinCompSqftPct, c.ARV.MaxCompSqftPct)
	}
	if c.ARV.MaxCompDistanceMiles <= 0 {
		return errors.New("max comp distance must be positive")
	}
	if c.ARV.MaxCompAgeMonths <= 0 {
		return errors.New("max comp age must be positive")
	}
	if c.ARV.MinComps < 1 {
		return errors.New("minimum comp count must be at least 1")
	}
	if c.ARV.FallbackMultiplier <= 0 {
		return errors.New("ARV fallback multiplier must be positive")
	}
	if c.RepairCosts.BaseSqftCost < 0 {
		return errors.New("base repair cost per square foot cannot be negative")
	}
	if c.AverageFlipMonths <= 0 {
		return errors.New("average flip months must be positive")
	}
	if c.MinROI < 0 {
		return errors.New("minimum ROI cannot be negative")
	}
	if c.ContingencyPct < 0 {
		return errors.New("contingency percentage cannot be negative")
	}
	return nil
}
