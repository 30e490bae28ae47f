package analysis

import (
	"flipfinder/config"
	"flipfinder/internal/models"
)

// FilterComps selects the comps eligible for ARV computation: square
// footage within the configured percentage band of the subject, distance
// within the configured radius, and sale date no older than the configured
// number of months. Months are approximated as 30 days. Pure function; the
// property's comp list is never mutated.
func FilterComps(p *models.Property, cfg config.ARVConfig, clock Clock) []models.Comp {
	if len(p.Comps) == 0 {
		return nil
	}

	minSqft := p.SquareFeet * cfg.MinCompSqftPct
	maxSqft := p.SquareFeet * cfg.MaxCompSqftPct
	cutoff := clock.Now().AddDate(0, 0, -cfg.MaxCompAgeMonths*30)

	var filtered []models.Comp
	for _, comp := range p.Comps {
		if comp.SquareFeet >= minSqft &&
			comp.SquareFeet <= maxSqft &&
			comp.DistanceMiles <= cfg.MaxCompDistanceMiles &&
			!comp.SaleDate.Before(cutoff) {
			filtered = append(filtered, comp)
		}
	}
	return filtered
}
