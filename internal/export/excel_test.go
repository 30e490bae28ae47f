package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flipfinder/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func sampleDeal(propertyID string, roi float64) *models.Deal {
	return &models.Deal{
		PropertyID:       propertyID,
		Address:          "123 Main St, Springfield, IL 62704",
		ListPrice:        200000,
		ARV:              330000,
		RepairCosts:      49500,
		ClosingCosts:     models.ClosingCosts{Total: 31600},
		HoldingCosts:     6800,
		TotalProjectCost: 287900,
		PotentialProfit:  42100,
		ROI:              roi,
		MaxPurchasePrice: 181500,
		Score:            80,
		AnalysisDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Property: models.PropertySnapshot{
			DaysOnMarket: 30,
			Bedrooms:     3,
			Bathrooms:    2,
			SquareFeet:   1000,
			YearBuilt:    1980,
			PricePerSqft: 200,
		},
	}
}

func TestExcelExporterWritesWorkbook(t *testing.T) {
	exporter := NewExcelExporter(testLogger())
	outputFile := filepath.Join(t.TempDir(), "deals", "analysis.xlsx")

	deals := []*models.Deal{
		sampleDeal("MLS1", 35),
		sampleDeal("MLS2", 22),
		sampleDeal("MLS3", 10),
	}
	require.NoError(t, exporter.Export(deals, outputFile))

	f, err := excelize.OpenFile(outputFile)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Score", header)

	address, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "123 Main St, Springfield, IL 62704", address)

	roi, err := f.GetCellValue(sheetName, "J2")
	require.NoError(t, err)
	assert.Equal(t, "35", roi)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Len(t, rows[0], len(columns))
}

func TestExcelExporterRejectsEmptyBatch(t *testing.T) {
	exporter := NewExcelExporter(testLogger())
	err := exporter.Export(nil, filepath.Join(t.TempDir(), "empty.xlsx"))
	assert.Error(t, err)
}
