package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipfinder/config"
	"flipfinder/internal/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func analyzableProperty(mlsID string, now time.Time) *models.Property {
	comps := make([]models.Comp, 0, 4)
	for i := 0; i < 4; i++ {
		comps = append(comps, models.Comp{
			SaleDate:      now.AddDate(0, 0, -30*(i+1)),
			SalePrice:     210000,
			SquareFeet:    1050,
			PricePerSqft:  200,
			DistanceMiles: 0.5,
		})
	}
	return &models.Property{
		MLSID: mlsID,
		Address: models.Address{
			Street: mlsID + " Main St", City: "Springfield", State: "IL", ZipCode: "62704",
		},
		ListPrice:  200000,
		Bedrooms:   3,
		Bathrooms:  2,
		SquareFeet: 1000,
		YearBuilt:  1980,
		Comps:      comps,
	}
}

func TestRunnerAnalyzesProperties(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	logger := quietLogger()
	queue := NewDealQueue(4, logger)

	var enriched []string
	enricher := EnricherFunc(func(p *models.Property) {
		enriched = append(enriched, p.MLSID)
	})

	runner := NewRunner(testConfig(), []Enricher{enricher}, queue, fixedClock{now: now}, logger)
	runner.cfg.Pipeline.WorkerCount = 1

	properties := []*models.Property{
		analyzableProperty("MLS1", now),
		analyzableProperty("MLS2", now),
	}

	report, err := runner.Run(context.Background(), properties, config.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.PropertiesSeen)
	assert.Equal(t, 2, report.DealsFound)
	assert.Empty(t, report.Skipped)
	assert.ElementsMatch(t, []string{"MLS1", "MLS2"}, enriched)

	for _, deal := range report.Deals {
		assert.Greater(t, deal.ARV, 0.0)
		assert.Greater(t, deal.TotalProjectCost, 0.0)
	}

	// Scored batch lands on the persistence queue.
	assert.Equal(t, 1, queue.Len())
}

func TestRunnerSkipsSparseAndInvalidProperties(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	logger := quietLogger()

	sparse := analyzableProperty("SPARSE", now)
	sparse.Comps = sparse.Comps[:2]

	freebie := analyzableProperty("FREE", now)
	freebie.ListPrice = 0

	runner := NewRunner(testConfig(), nil, nil, fixedClock{now: now}, logger)

	report, err := runner.Run(context.Background(), []*models.Property{
		analyzableProperty("MLS1", now),
		sparse,
		freebie,
	}, config.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, report.PropertiesSeen)
	assert.Equal(t, 1, report.DealsFound)
	require.Len(t, report.Skipped, 2)

	reasons := map[string]string{}
	for _, s := range report.Skipped {
		reasons[s.PropertyID] = s.Reason
	}
	assert.Equal(t, "insufficient comparable sales", reasons["SPARSE"])
	assert.Contains(t, reasons["FREE"], "list price")
}

func TestRunnerRejectsInvalidConfig(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	runner := NewRunner(testConfig(), nil, nil, fixedClock{now: now}, quietLogger())

	acfg := config.DefaultAnalysisConfig()
	acfg.ARV.MinCompSqftPct = 1.5
	acfg.ARV.MaxCompSqftPct = 0.5

	_, err := runner.Run(context.Background(), nil, acfg)
	assert.Error(t, err)
}

func TestRunnerEmptyBatch(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	runner := NewRunner(testConfig(), nil, nil, fixedClock{now: now}, quietLogger())

	report, err := runner.Run(context.Background(), nil, config.DefaultAnalysisConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, report.PropertiesSeen)
	assert.Equal(t, 0, report.DealsFound)
}
