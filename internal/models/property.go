package models

import (
	"fmt"
	"time"
)

// Address holds the components of a property location.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// String formats the address the way listings display it.
func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.ZipCode)
}

// Comp is a comparable recent sale near a subject property. Comps are
// immutable once produced by the market-data layer; the comp filter only
// selects subsets.
type Comp struct {
	Address       string    `json:"address"`
	SalePrice     float64   `json:"price"`
	SaleDate      time.Time `json:"sale_date"`
	SquareFeet    float64   `json:"square_feet"`
	PricePerSqft  float64   `json:"price_per_sqft"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     float64   `json:"bathrooms"`
	YearBuilt     int       `json:"year_built"`
	DistanceMiles float64   `json:"distance"`
}

// Property is the subject of a flip analysis. It is constructed once per
// listing at ingestion, enriched by the data collaborators (comps, tax and
// neighborhood data), then annotated by the deal evaluator with the
// Estimated* fields as a cache/audit trail.
type Property struct {
	MLSID        string  `json:"mls_id"`
	URL          string  `json:"url,omitempty"`
	Address      Address `json:"address"`
	ListPrice    float64 `json:"list_price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	SquareFeet   float64 `json:"square_feet"`
	LotSize      string  `json:"lot_size"`
	YearBuilt    int     `json:"year_built"`
	DaysOnMarket int     `json:"days_on_market"`
	Description  string  `json:"description"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`

	Photos              []string `json:"photos,omitempty"`
	OpportunityKeywords []string `json:"opportunity_keywords"`

	Comps            []Comp         `json:"comps,omitempty"`
	TaxData          map[string]any `json:"tax_data,omitempty"`
	NeighborhoodData map[string]any `json:"neighborhood_data,omitempty"`

	EstimatedRepairCost float64 `json:"estimated_repair_cost"`
	EstimatedARV        float64 `json:"estimated_arv"`
	EstimatedProfit     float64 `json:"estimated_profit"`
	EstimatedROI        float64 `json:"estimated_roi"`
}

// PricePerSqft returns list price divided by square footage, or 0 when the
// square footage is unknown.
func (p *Property) PricePerSqft() float64 {
	if p.SquareFeet <= 0 {
		return 0
	}
	return p.ListPrice / p.SquareFeet
}

// Age returns the property age relative to now. The second return is false
// when the year built is unknown (zero or negative).
func (p *Property) Age(now time.Time) (int, bool) {
	if p.YearBuilt <= 0 {
		return 0, false
	}
	return now.Year() - p.YearBuilt, true
}

// FullAddress returns the formatted single-line address.
func (p *Property) FullAddress() string {
	return p.Address.String()
}

// PropertySnapshot is the flat, serializable view of a property that gets
// embedded in a Deal for display and export.
type PropertySnapshot struct {
	MLSID               string   `json:"mls_id"`
	Address             string   `json:"address"`
	City                string   `json:"city"`
	State               string   `json:"state"`
	ZipCode             string   `json:"zip_code"`
	ListPrice           float64  `json:"list_price"`
	Bedrooms            int      `json:"bedrooms"`
	Bathrooms           float64  `json:"bathrooms"`
	SquareFeet          float64  `json:"square_feet"`
	LotSize             string   `json:"lot_size"`
	YearBuilt           int      `json:"year_built"`
	Age                 *int     `json:"age"`
	DaysOnMarket        int      `json:"days_on_market"`
	PricePerSqft        float64  `json:"price_per_sqft"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
	OpportunityKeywords []string `json:"opportunity_keywords"`
	EstimatedRepairCost float64  `json:"estimated_repair_cost"`
	EstimatedARV        float64  `json:"estimated_arv"`
	EstimatedProfit     float64  `json:"estimated_profit"`
	EstimatedROI        float64  `json:"estimated_roi"`
}

// Snapshot captures the property's public attributes at analysis time.
func (p *Property) Snapshot(now time.Time) PropertySnapshot {
	var age *int
	if a, ok := p.Age(now); ok {
		age = &a
	}
	return PropertySnapshot{
		MLSID:               p.MLSID,
		Address:             p.Address.Street,
		City:                p.Address.City,
		State:               p.Address.State,
		ZipCode:             p.Address.ZipCode,
		ListPrice:           p.ListPrice,
		Bedrooms:            p.Bedrooms,
		Bathrooms:           p.Bathrooms,
		SquareFeet:          p.SquareFeet,
		LotSize:             p.LotSize,
		YearBuilt:           p.YearBuilt,
		Age:                 age,
		DaysOnMarket:        p.DaysOnMarket,
		PricePerSqft:        p.PricePerSqft(),
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		OpportunityKeywords: p.OpportunityKeywords,
		EstimatedRepairCost: p.EstimatedRepairCost,
		EstimatedARV:        p.EstimatedARV,
		EstimatedProfit:     p.EstimatedProfit,
		EstimatedROI:        p.EstimatedROI,
	}
}
