package analysis

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/models"
)

// Scorer ranks a batch of deals with a weighted composite score. Scoring is
// a two-pass batch operation: metric ranges must be collected across the
// whole batch before any deal can be normalized.
type Scorer struct {
	weights config.ScoringWeights
	logger  *logrus.Logger
}

func NewScorer(weights config.ScoringWeights, logger *logrus.Logger) *Scorer {
	return &Scorer{weights: weights, logger: logger}
}

type metricRange struct {
	min, max float64
}

func (r metricRange) normalize(v float64) float64 {
	if r.max == r.min {
		return 0
	}
	return (v - r.min) / (r.max - r.min)
}

// Score assigns each deal its composite score and sorts the batch best
// first. Profit, ROI and days-on-market contribute proportionally to their
// position in the batch range; repair cost contributes inverted (cheaper
// renovations score higher). Keyword and 70%-rule bonuses are added on
// top. Ties are broken by ROI descending so the ordering is deterministic.
func (s *Scorer) Score(deals []*models.Deal) []*models.Deal {
	if len(deals) == 0 {
		s.logger.Warn("No deals to score")
		return deals
	}

	profit := collectRange(deals, func(d *models.Deal) float64 { return d.PotentialProfit })
	roi := collectRange(deals, func(d *models.Deal) float64 { return d.ROI })
	repair := collectRange(deals, func(d *models.Deal) float64 { return d.RepairCosts })
	dom := collectRange(deals, func(d *models.Deal) float64 { return float64(d.Property.DaysOnMarket) })

	for _, deal := range deals {
		score := s.weights.Profit * profit.normalize(deal.PotentialProfit)
		score += s.weights.ROI * roi.normalize(deal.ROI)
		if repair.max != repair.min {
			score += s.weights.RepairCost * (1 - repair.normalize(deal.RepairCosts))
		}
		score += s.weights.DaysOnMarket * dom.normalize(float64(deal.Property.DaysOnMarket))

		if n := len(deal.Property.OpportunityKeywords); n > 0 {
			score += math.Min(s.weights.OpportunityKeywords, float64(n))
		}
		if deal.Meets70PercentRule {
			score += s.weights.Meets70Rule
		}

		deal.Score = score
	}

	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].Score != deals[j].Score {
			return deals[i].Score > deals[j].Score
		}
		return deals[i].ROI > deals[j].ROI
	})

	s.logger.WithFields(logrus.Fields{
		"deals":     len(deals),
		"top_score": deals[0].Score,
	}).Info("Scored deals")
	return deals
}

func collectRange(deals []*models.Deal, metric func(*models.Deal) float64) metricRange {
	r := metricRange{min: metric(deals[0]), max: metric(deals[0])}
	for _, d := range deals[1:] {
		v := metric(d)
		if v < r.min {
			r.min = v
		}
		if v > r.max {
			r.max = v
		}
	}
	return r
}
