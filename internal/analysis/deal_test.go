package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipfinder/config"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(config.DefaultAnalysisConfig(), testClock(), testLogger())
}

func TestEvaluator_CostInvariants(t *testing.T) {
	evaluator := newTestEvaluator()
	prop := testProperty()

	deal, err := evaluator.Analyze(prop, 320000, 30000)
	require.NoError(t, err)

	assert.InDelta(t,
		deal.ListPrice+deal.RepairCosts+deal.ClosingCosts.Total+deal.HoldingCosts,
		deal.TotalProjectCost, 1e-6)
	assert.InDelta(t, deal.ARV-deal.TotalProjectCost, deal.PotentialProfit, 1e-6)
	assert.InDelta(t, deal.PotentialProfit/deal.TotalProjectCost*100, deal.ROI, 1e-6)
}

func TestEvaluator_ClosingCosts(t *testing.T) {
	evaluator := newTestEvaluator()

	cc := evaluator.ClosingCosts(200000, 320000)
	assert.InDelta(t, 6000, cc.PurchaseClosing, 0.01)   // 3% of purchase
	assert.InDelta(t, 19200, cc.AgentCommission, 0.01)  // 6% of sale
	assert.InDelta(t, 6400, cc.SellerClosing, 0.01)     // 2% of sale
	assert.InDelta(t, 31600, cc.Total, 0.01)
}

func TestEvaluator_HoldingCosts(t *testing.T) {
	evaluator := newTestEvaluator()

	// monthly: 200000*(0.07+0.015+0.005)/12 + 200 = 1500 + 200 = 1700
	assert.InDelta(t, 6800, evaluator.HoldingCosts(200000, 4), 0.01)
}

func TestEvaluator_SeventyPercentRule(t *testing.T) {
	evaluator := newTestEvaluator()
	prop := testProperty()
	prop.ListPrice = 200000

	deal, err := evaluator.Analyze(prop, 320000, 30000)
	require.NoError(t, err)

	assert.InDelta(t, 194000, deal.MaxPurchasePrice, 0.01)
	assert.False(t, deal.Meets70PercentRule, "200000 > 194000")
}

func TestEvaluator_WritesBackPropertyCache(t *testing.T) {
	evaluator := newTestEvaluator()
	prop := testProperty()

	deal, err := evaluator.Analyze(prop, 320000, 30000)
	require.NoError(t, err)

	assert.Equal(t, 320000.0, prop.EstimatedARV)
	assert.Equal(t, 30000.0, prop.EstimatedRepairCost)
	assert.Equal(t, deal.PotentialProfit, prop.EstimatedProfit)
	assert.Equal(t, deal.ROI, prop.EstimatedROI)
	assert.Equal(t, prop.MLSID, deal.PropertyID)
	assert.Equal(t, prop.DaysOnMarket, deal.Property.DaysOnMarket)
}

func TestEvaluator_ZeroListPriceRejected(t *testing.T) {
	evaluator := newTestEvaluator()
	prop := testProperty()
	prop.ListPrice = 0

	_, err := evaluator.Analyze(prop, 320000, 30000)
	assert.ErrorIs(t, err, ErrZeroListPrice)
}

func TestEvaluator_NonFiniteInputsRejected(t *testing.T) {
	evaluator := newTestEvaluator()

	_, err := evaluator.Analyze(testProperty(), math.NaN(), 30000)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = evaluator.Analyze(testProperty(), 320000, math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = evaluator.Analyze(testProperty(), -1, 30000)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluator_MeetsCriteria(t *testing.T) {
	cfg := config.DefaultAnalysisConfig()
	cfg.MinROI = 5
	evaluator := NewEvaluator(cfg, testClock(), testLogger())

	prop := testProperty()
	deal, err := evaluator.Analyze(prop, 320000, 30000)
	require.NoError(t, err)

	// total = 200000 + 30000 + 31600 + 6800 = 268400; profit = 51600
	assert.InDelta(t, 268400, deal.TotalProjectCost, 0.01)
	assert.InDelta(t, 51600, deal.PotentialProfit, 0.01)
	assert.True(t, deal.MeetsCriteria)
}
