// Package connectors fetches candidate listings from external data sources
// and normalizes them into Property records. The rest of the system
// depends only on the PropertySource interface.
package connectors

import (
	"context"
	"strings"

	"flipfinder/internal/models"
)

// SearchCriteria narrows a listing search.
type SearchCriteria struct {
	// Area is a ZIP code or city name.
	Area string
	// MaxPrice caps the list price; 0 means no cap.
	MaxPrice float64
	// MaxDaysOnMarket restricts to listings at most this many days old.
	MaxDaysOnMarket int
	// PropertyTypes restricts to these listing types.
	PropertyTypes []string
}

// PropertySource produces normalized Property records for a search. The
// connector layer is responsible for delivering clean numeric fields; the
// analysis core assumes prices and square footages are parsed and finite.
type PropertySource interface {
	Name() string
	FetchProperties(ctx context.Context, criteria SearchCriteria) ([]*models.Property, error)
}

// Deduplicate removes properties sharing a full address, keeping the first
// occurrence. Used when combining results from multiple sources.
func Deduplicate(props []*models.Property) []*models.Property {
	seen := make(map[string]bool, len(props))
	unique := make([]*models.Property, 0, len(props))
	for _, p := range props {
		key := strings.ToLower(p.FullAddress())
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}
	return unique
}
