package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flipfinder/internal/models"
)

func setupDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleProperty() *models.Property {
	return &models.Property{
		MLSID: "MLS123",
		Address: models.Address{
			Street: "123 Main St", City: "Springfield", State: "IL", ZipCode: "62704",
		},
		ListPrice:           200000,
		Bedrooms:            3,
		Bathrooms:           2,
		SquareFeet:          1000,
		YearBuilt:           1980,
		DaysOnMarket:        30,
		Description:         "Needs work",
		Latitude:            39.78,
		Longitude:           -89.65,
		OpportunityKeywords: []string{"needs work"},
		TaxData:             map[string]any{"assessed_value": 160000.0},
		Comps: []models.Comp{
			{
				Address:       "Comp 1 near 123 Main St",
				SaleDate:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				SalePrice:     210000,
				SquareFeet:    1050,
				PricePerSqft:  200,
				Bedrooms:      3,
				Bathrooms:     2,
				YearBuilt:     1982,
				DistanceMiles: 0.4,
			},
		},
	}
}

func TestSavePropertiesRoundTrip(t *testing.T) {
	db := setupDatabase(t)

	require.NoError(t, db.SaveProperties([]*models.Property{sampleProperty()}))

	properties, err := db.GetProperties("")
	require.NoError(t, err)
	require.Len(t, properties, 1)

	p := properties[0]
	assert.Equal(t, "MLS123", p.MLSID)
	assert.Equal(t, "123 Main St", p.Address.Street)
	assert.Equal(t, 200000.0, p.ListPrice)
	assert.Equal(t, []string{"needs work"}, p.OpportunityKeywords)
	assert.Equal(t, 160000.0, p.TaxData["assessed_value"])

	require.Len(t, p.Comps, 1)
	assert.Equal(t, 210000.0, p.Comps[0].SalePrice)
	assert.Equal(t, "2024-05-01", p.Comps[0].SaleDate.Format("2006-01-02"))
}

func TestSavePropertiesReplacesComps(t *testing.T) {
	db := setupDatabase(t)

	p := sampleProperty()
	require.NoError(t, db.SaveProperties([]*models.Property{p}))

	p.Comps = p.Comps[:0]
	require.NoError(t, db.SaveProperties([]*models.Property{p}))

	properties, err := db.GetProperties("")
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Empty(t, properties[0].Comps)
}

func TestGetPropertiesCityFilter(t *testing.T) {
	db := setupDatabase(t)

	a := sampleProperty()
	b := sampleProperty()
	b.MLSID = "MLS456"
	b.Address.City = "Chicago"
	require.NoError(t, db.SaveProperties([]*models.Property{a, b}))

	properties, err := db.GetProperties("springfield")
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "MLS123", properties[0].MLSID)

	exists, err := db.CityExists("Chicago")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = db.CityExists("Peoria")
	require.NoError(t, err)
	assert.False(t, exists)
}

func openGorm(t *testing.T, db *Database) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Dialector{Conn: db.GetDB()}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb
}

func sampleDeal(propertyID string, score float64, roi float64) *models.Deal {
	return &models.Deal{
		PropertyID:         propertyID,
		Address:            "123 Main St, Springfield, IL 62704",
		ListPrice:          200000,
		ARV:                330000,
		RepairCosts:        49500,
		ClosingCosts:       models.ClosingCosts{Total: 31600},
		HoldingCosts:       6800,
		TotalProjectCost:   287900,
		PotentialProfit:    42100,
		ROI:                roi,
		MaxPurchasePrice:   181500,
		MeetsCriteria:      roi >= 20,
		Meets70PercentRule: false,
		Score:              score,
		AnalysisDate:       time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertDealsAndGetTopDeals(t *testing.T) {
	db := setupDatabase(t)
	gdb := openGorm(t, db)

	deals := []*models.Deal{
		sampleDeal("MLS1", 40, 10),
		sampleDeal("MLS2", 80, 25),
		sampleDeal("MLS3", 60, 22),
	}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertDeals(tx, "run-1", deals)
	})
	require.NoError(t, err)

	got, err := db.GetTopDeals(DealFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "MLS2", got[0].PropertyID)
	assert.Equal(t, "MLS3", got[1].PropertyID)
	assert.Equal(t, "MLS1", got[2].PropertyID)
	assert.Equal(t, 31600.0, got[0].ClosingCosts.Total)

	got, err = db.GetTopDeals(DealFilter{MinScore: 50, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MLS2", got[0].PropertyID)

	got, err = db.GetTopDeals(DealFilter{MeetsCriteriaOnly: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = db.GetTopDeals(DealFilter{RunID: "run-1"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = db.GetTopDeals(DealFilter{RunID: "run-2"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertDealsReplacesExisting(t *testing.T) {
	db := setupDatabase(t)
	gdb := openGorm(t, db)

	first := sampleDeal("MLS1", 40, 10)
	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertDeals(tx, "run-1", []*models.Deal{first})
	}))

	second := sampleDeal("MLS1", 75, 30)
	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertDeals(tx, "run-2", []*models.Deal{second})
	}))

	got, err := db.GetTopDeals(DealFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 75.0, got[0].Score)
}

func TestSaveAnalysisRun(t *testing.T) {
	db := setupDatabase(t)

	run := AnalysisRun{
		ID:                "run-1",
		StartedAt:         time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		FinishedAt:        time.Date(2024, 6, 15, 12, 5, 0, 0, time.UTC),
		PropertiesSeen:    10,
		PropertiesSkipped: 2,
		DealsFound:        8,
		Parameters:        `{"min_roi":20}`,
	}
	require.NoError(t, db.SaveAnalysisRun(run))

	runs, err := db.GetAnalysisRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 8, runs[0].DealsFound)
	assert.Equal(t, run.FinishedAt, runs[0].FinishedAt.UTC())
	assert.Equal(t, run.Parameters, runs[0].Parameters)
}

func TestUpsertDealsBeforeRunRecorded(t *testing.T) {
	db := setupDatabase(t)
	gdb := openGorm(t, db)

	// Deals land first: the batch seeds the run row so the foreign key
	// holds even before the summary is written.
	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertDeals(tx, "run-1", []*models.Deal{sampleDeal("MLS1", 50, 21)})
	}))

	require.NoError(t, db.SaveAnalysisRun(AnalysisRun{
		ID:         "run-1",
		StartedAt:  time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 6, 15, 12, 5, 0, 0, time.UTC),
		DealsFound: 1,
	}))

	runs, err := db.GetAnalysisRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 1, runs[0].DealsFound)

	got, err := db.GetTopDeals(DealFilter{RunID: "run-1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
