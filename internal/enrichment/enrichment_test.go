package enrichment

import (
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"flipfinder/internal/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testProperty() *models.Property {
	return &models.Property{
		MLSID: "MLS123",
		Address: models.Address{
			Street: "123 Main St", City: "Springfield", State: "IL", ZipCode: "62704",
		},
		ListPrice:  200000,
		Bedrooms:   3,
		Bathrooms:  2,
		SquareFeet: 1000,
		YearBuilt:  1980,
		Latitude:   39.78,
		Longitude:  -89.65,
	}
}

func TestPublicRecordsEnrich(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	records := NewPublicRecords(clock, testLogger())

	p := testProperty()
	records.Enrich(p)

	assert.Equal(t, 160000.0, p.TaxData["assessed_value"])
	assert.Equal(t, 2000.0, p.TaxData["annual_tax"])
	assert.Equal(t, 140000.0, p.TaxData["last_sale_price"])
	assert.Equal(t, "2020-01-01", p.TaxData["last_sale_date"])
	assert.Equal(t, 2024, p.TaxData["tax_year"])
	assert.Equal(t, 2500.0, p.TaxData["lot_size_sqft"])
}

func TestMarketDataAddComps(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	market := NewMarketData(rand.New(rand.NewSource(42)), clock, testLogger())

	p := testProperty()
	market.AddComps(p, 5)

	assert.Len(t, p.Comps, 5)
	for i, comp := range p.Comps {
		assert.InDelta(t, 1000, comp.SquareFeet, 150, "comp sqft stays within 15%% of subject")
		assert.InDelta(t, 200, comp.PricePerSqft, 30, "comp psf stays within 15%% of subject")
		assert.InDelta(t, comp.SquareFeet*comp.PricePerSqft, comp.SalePrice, 0.01)
		assert.GreaterOrEqual(t, comp.Bedrooms, 1)
		assert.GreaterOrEqual(t, comp.Bathrooms, 1.0)
		assert.Greater(t, comp.DistanceMiles, 0.0)
		assert.Less(t, comp.DistanceMiles, 2.0)

		age := clock.now.Sub(comp.SaleDate)
		assert.GreaterOrEqual(t, age, 7*24*time.Hour)
		assert.LessOrEqual(t, age, 180*24*time.Hour)

		if i > 0 {
			assert.False(t, comp.SaleDate.After(p.Comps[i-1].SaleDate), "comps sorted newest first")
		}
	}
}

func TestMarketDataAddCompsZeroSqft(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	market := NewMarketData(rand.New(rand.NewSource(1)), clock, testLogger())

	p := testProperty()
	p.SquareFeet = 0
	market.AddComps(p, 3)

	// Falls back to a nominal price per square foot instead of dividing
	// by zero, producing zero-priced comps for a zero-sqft subject.
	assert.Len(t, p.Comps, 3)
	for _, comp := range p.Comps {
		assert.Equal(t, 0.0, comp.SquareFeet)
		assert.Equal(t, 0.0, comp.SalePrice)
	}
}

func TestMarketDataAddCompsDefaultCount(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	market := NewMarketData(rand.New(rand.NewSource(1)), clock, testLogger())

	p := testProperty()
	market.AddComps(p, 0)

	assert.Len(t, p.Comps, defaultCompCount)
}

func TestAddNeighborhoodData(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	market := NewMarketData(rand.New(rand.NewSource(7)), clock, testLogger())

	p := testProperty()
	market.AddNeighborhoodData(p)

	rating := p.NeighborhoodData["school_rating"].(int)
	assert.GreaterOrEqual(t, rating, 1)
	assert.LessOrEqual(t, rating, 10)

	income := p.NeighborhoodData["median_income"].(int)
	assert.GreaterOrEqual(t, income, 40000)
	assert.LessOrEqual(t, income, 120000)
}

func TestAnalyzeMarketTrends(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	market := NewMarketData(rand.New(rand.NewSource(7)), clock, testLogger())

	trends := market.AnalyzeMarketTrends("62704")

	assert.Equal(t, "62704", trends.ZipCode)
	assert.GreaterOrEqual(t, trends.AverageDaysOnMarket, 10)
	assert.LessOrEqual(t, trends.AverageDaysOnMarket, 60)
	assert.GreaterOrEqual(t, trends.SellerBuyerIndex, 0.5)
	assert.LessOrEqual(t, trends.SellerBuyerIndex, 1.5)
}
