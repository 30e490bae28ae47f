// Package enrichment fills in the property data the listing feeds do not
// carry: tax records, comparable sales, and neighborhood statistics.
//
// County assessor systems and sales-data vendors differ per market, so
// the providers here generate plausible records locally. Swapping in a
// real vendor only requires replacing the provider implementation.
package enrichment

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"flipfinder/internal/analysis"
	"flipfinder/internal/models"
)

// PublicRecords derives tax and assessment data for a property.
type PublicRecords struct {
	clock  analysis.Clock
	logger *logrus.Logger
}

func NewPublicRecords(clock analysis.Clock, logger *logrus.Logger) *PublicRecords {
	return &PublicRecords{clock: clock, logger: logger}
}

// Enrich populates the property's tax data from assessment heuristics.
// Assessed values trail market prices, so the assessment is pegged below
// the list price.
func (r *PublicRecords) Enrich(p *models.Property) {
	now := r.clock.Now()
	p.TaxData = map[string]any{
		"assessed_value":  p.ListPrice * 0.8,
		"annual_tax":      p.ListPrice * 0.01,
		"last_sale_date":  fmt.Sprintf("%d-01-01", now.Year()-4),
		"last_sale_price": p.ListPrice * 0.7,
		"tax_rate":        0.01,
		"tax_year":        now.Year(),
		"zoning":          "R1",
		"lot_size_sqft":   p.SquareFeet * 2.5,
	}

	r.logger.WithField("address", p.FullAddress()).Debug("Enriched property with public records data")
}
