package analysis

import (
	"math"

	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/models"
)

// Keyword tiers for the coarse condition factor. The high tier wins over
// the moderate tier; at most one factor applies.
var (
	highRepairKeywords     = []string{"fixer", "needs work", "tlc", "handyman", "distressed"}
	moderateRepairKeywords = []string{"dated", "original", "renovate", "update"}
)

// RepairEstimator produces renovation cost estimates for a property, using
// either the coarse per-square-foot model or the detailed line-item model.
type RepairEstimator struct {
	cfg    config.AnalysisConfig
	logger *logrus.Logger
}

func NewRepairEstimator(cfg config.AnalysisConfig, logger *logrus.Logger) *RepairEstimator {
	return &RepairEstimator{cfg: cfg, logger: logger}
}

// EstimateRepairs is the coarse model: square footage times a base rate,
// scaled by age and condition factors, plus kitchen/bathroom renovations
// for older homes, plus contingency. The kitchen cost is a step function:
// it applies once for homes of at least 1500 sqft and not at all below
// that. The thresholds here are calibrated behavior, not tunables.
func (e *RepairEstimator) EstimateRepairs(p *models.Property, clock Clock) float64 {
	age, ageKnown := p.Age(clock.Now())

	ageFactor := 1.0
	if ageKnown {
		switch {
		case age > 50:
			ageFactor = 1.5
		case age > 30:
			ageFactor = 1.3
		case age > 15:
			ageFactor = 1.1
		}
	}

	conditionFactor := 1.0
	if containsAny(p.OpportunityKeywords, highRepairKeywords) {
		conditionFactor = 1.5
	} else if containsAny(p.OpportunityKeywords, moderateRepairKeywords) {
		conditionFactor = 1.25
	}

	estimate := p.SquareFeet * e.cfg.RepairCosts.BaseSqftCost * ageFactor * conditionFactor

	if ageKnown && age > 20 {
		estimate += e.cfg.RepairCosts.Kitchen * math.Min(1, math.Floor(p.SquareFeet/1500))
		estimate += e.cfg.RepairCosts.Bathroom * math.Min(p.Bathrooms, 2)
	}

	estimate *= 1 + e.cfg.ContingencyPct

	e.logger.WithFields(logrus.Fields{
		"address":  p.FullAddress(),
		"estimate": estimate,
	}).Info("Repair estimate")
	return estimate
}

// containsAny reports whether the keyword list contains any of the terms
// (exact element match).
func containsAny(keywords, terms []string) bool {
	for _, term := range terms {
		for _, kw := range keywords {
			if kw == term {
				return true
			}
		}
	}
	return false
}
