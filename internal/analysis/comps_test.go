package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flipfinder/config"
	"flipfinder/internal/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testARVConfig() config.ARVConfig {
	return config.DefaultAnalysisConfig().ARV
}

func TestFilterComps_DistanceExcluded(t *testing.T) {
	clock := fixedClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	prop := &models.Property{SquareFeet: 1000}
	prop.Comps = []models.Comp{
		{SquareFeet: 1000, DistanceMiles: 2.0, SaleDate: clock.now.AddDate(0, 0, -10)},
	}

	cfg := testARVConfig()
	cfg.MaxCompDistanceMiles = 1.0

	filtered := FilterComps(prop, cfg, clock)
	assert.Empty(t, filtered, "comp beyond max distance must be excluded even when everything else matches")
}

func TestFilterComps_SquareFootageBounds(t *testing.T) {
	clock := fixedClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	recent := clock.now.AddDate(0, 0, -30)
	prop := &models.Property{SquareFeet: 1000}
	prop.Comps = []models.Comp{
		{Address: "too small", SquareFeet: 700, DistanceMiles: 0.5, SaleDate: recent},
		{Address: "low bound", SquareFeet: 800, DistanceMiles: 0.5, SaleDate: recent},
		{Address: "high bound", SquareFeet: 1200, DistanceMiles: 0.5, SaleDate: recent},
		{Address: "too big", SquareFeet: 1300, DistanceMiles: 0.5, SaleDate: recent},
	}

	filtered := FilterComps(prop, testARVConfig(), clock)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "low bound", filtered[0].Address)
	assert.Equal(t, "high bound", filtered[1].Address)
}

func TestFilterComps_RecencyCutoff(t *testing.T) {
	clock := fixedClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	prop := &models.Property{SquareFeet: 1000}
	prop.Comps = []models.Comp{
		// 6 months at 30 days/month = 180 days
		{Address: "fresh", SquareFeet: 1000, DistanceMiles: 0.5, SaleDate: clock.now.AddDate(0, 0, -179)},
		{Address: "stale", SquareFeet: 1000, DistanceMiles: 0.5, SaleDate: clock.now.AddDate(0, 0, -181)},
	}

	filtered := FilterComps(prop, testARVConfig(), clock)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "fresh", filtered[0].Address)
}

func TestFilterComps_NoComps(t *testing.T) {
	clock := fixedClock{now: time.Now()}
	prop := &models.Property{SquareFeet: 1000}
	assert.Empty(t, FilterComps(prop, testARVConfig(), clock))
}
