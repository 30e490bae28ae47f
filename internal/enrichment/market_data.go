package enrichment

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"flipfinder/internal/analysis"
	"flipfinder/internal/models"
)

const (
	defaultCompCount = 5
	metersPerMile    = 1609.34
)

// MarketData generates comparable sales and neighborhood statistics for
// a property. Variation is driven by an injected random source so tests
// can seed it.
type MarketData struct {
	rng    *rand.Rand
	clock  analysis.Clock
	logger *logrus.Logger
}

func NewMarketData(rng *rand.Rand, clock analysis.Clock, logger *logrus.Logger) *MarketData {
	return &MarketData{rng: rng, clock: clock, logger: logger}
}

// AddComps attaches comparable sales to the property, newest first.
// Comp prices and sizes vary within 15 percent of the subject property,
// sale dates fall within the past six months, and each comp sits within
// roughly a mile of the subject.
func (m *MarketData) AddComps(p *models.Property, count int) {
	if count <= 0 {
		count = defaultCompCount
	}

	basePricePerSqft := 100.0
	if p.SquareFeet > 0 {
		basePricePerSqft = p.ListPrice / p.SquareFeet
	}

	subject := orb.Point{p.Longitude, p.Latitude}
	comps := make([]models.Comp, 0, count)
	for i := 0; i < count; i++ {
		pricePerSqft := basePricePerSqft * m.uniform(0.85, 1.15)
		sqft := p.SquareFeet * m.uniform(0.85, 1.15)

		daysAgo := 7 + m.rng.Intn(174)
		saleDate := m.clock.Now().AddDate(0, 0, -daysAgo)

		location := m.nearbyPoint(subject)
		distance := geo.Distance(subject, location) / metersPerMile

		comps = append(comps, models.Comp{
			Address:       fmt.Sprintf("Comp %d near %s", i+1, p.Address.Street),
			SaleDate:      saleDate,
			SalePrice:     sqft * pricePerSqft,
			SquareFeet:    sqft,
			PricePerSqft:  pricePerSqft,
			Bedrooms:      maxInt(1, p.Bedrooms+m.rng.Intn(3)-1),
			Bathrooms:     math.Max(1, p.Bathrooms+0.5*float64(m.rng.Intn(3)-1)),
			YearBuilt:     compYearBuilt(p.YearBuilt, m.rng),
			DistanceMiles: distance,
		})
	}

	sort.Slice(comps, func(i, j int) bool {
		return comps[i].SaleDate.After(comps[j].SaleDate)
	})

	p.Comps = comps
	m.logger.WithFields(logrus.Fields{
		"address": p.FullAddress(),
		"count":   len(comps),
	}).Debug("Added comparable sales")
}

// nearbyPoint returns a point offset from the subject by up to roughly
// a mile in each axis. One degree of latitude spans about 69 miles.
func (m *MarketData) nearbyPoint(subject orb.Point) orb.Point {
	const maxOffsetDegrees = 1.0 / 69.0
	lonScale := math.Cos(subject.Lat() * math.Pi / 180)
	if lonScale < 0.1 {
		lonScale = 0.1
	}
	return orb.Point{
		subject.Lon() + m.uniform(-maxOffsetDegrees, maxOffsetDegrees)/lonScale,
		subject.Lat() + m.uniform(-maxOffsetDegrees, maxOffsetDegrees),
	}
}

// AddNeighborhoodData attaches neighborhood statistics to the property.
func (m *MarketData) AddNeighborhoodData(p *models.Property) {
	p.NeighborhoodData = map[string]any{
		"school_rating":     1 + m.rng.Intn(10),
		"crime_index":       1 + m.rng.Intn(100),
		"walk_score":        1 + m.rng.Intn(100),
		"median_income":     40000 + m.rng.Intn(80001),
		"population_growth": m.uniform(-0.02, 0.05),
		"price_trend":       m.uniform(-0.05, 0.1),
	}

	m.logger.WithField("address", p.FullAddress()).Debug("Added neighborhood data")
}

// MarketTrends summarizes current conditions for a ZIP code.
type MarketTrends struct {
	ZipCode                  string  `json:"zip_code,omitempty"`
	AverageDaysOnMarket      int     `json:"average_dom"`
	InventoryMonths          float64 `json:"inventory_months"`
	YearOverYearAppreciation float64 `json:"year_over_year_appreciation"`
	MedianPrice              int     `json:"median_price"`
	PricePerSqftTrend        float64 `json:"price_per_sqft_trend"`
	SellerBuyerIndex         float64 `json:"seller_buyer_index"`
	ForeclosureRate          float64 `json:"foreclosure_rate"`
}

// AnalyzeMarketTrends produces market indicators for a ZIP code. An
// index above 1 marks a seller's market.
func (m *MarketData) AnalyzeMarketTrends(zipCode string) MarketTrends {
	return MarketTrends{
		ZipCode:                  zipCode,
		AverageDaysOnMarket:      10 + m.rng.Intn(51),
		InventoryMonths:          round1(m.uniform(1.0, 8.0)),
		YearOverYearAppreciation: round1(m.uniform(-5.0, 15.0)),
		MedianPrice:              200000 + m.rng.Intn(300001),
		PricePerSqftTrend:        round1(m.uniform(-5.0, 10.0)),
		SellerBuyerIndex:         round2(m.uniform(0.5, 1.5)),
		ForeclosureRate:          round2(m.uniform(0.1, 3.0)),
	}
}

func (m *MarketData) uniform(min, max float64) float64 {
	return min + m.rng.Float64()*(max-min)
}

func compYearBuilt(yearBuilt int, rng *rand.Rand) int {
	if yearBuilt == 0 {
		return 2000
	}
	return yearBuilt + rng.Intn(11) - 5
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
