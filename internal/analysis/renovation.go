package analysis

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"flipfinder/internal/models"
)

// RenovationLevel is the ordinal classification of how much work a
// property needs.
type RenovationLevel int

const (
	LevelCosmetic RenovationLevel = iota
	LevelModerate
	LevelExtensive
	LevelComplete
)

func (l RenovationLevel) String() string {
	switch l {
	case LevelCosmetic:
		return "cosmetic"
	case LevelModerate:
		return "moderate"
	case LevelExtensive:
		return "extensive"
	case LevelComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Indicator phrase lists for the renovation-level classifier.
var (
	extensiveIndicators = []string{
		"fixer", "needs work", "tlc", "handyman special", "distressed",
		"as-is", "potential", "opportunity", "needs renovation",
	}
	moderateIndicators = []string{
		"dated", "original", "some updating", "could use", "older",
	}

	// Narrow substring lists for the five specific-issue categories.
	roofIssueTerms       = []string{"roof", "leak"}
	hvacIssueTerms       = []string{"hvac", "heat", "cooling"}
	foundationIssueTerms = []string{"foundation", "structural"}
	electricalIssueTerms = []string{"electrical", "wiring"}
	plumbingIssueTerms   = []string{"plumbing", "pipes"}
)

// ClassifyRenovationLevel estimates how much renovation a property needs.
// It starts from an age-based baseline, then counts extensive/moderate
// indicator phrases and specific-issue mentions in the description and
// opportunity keywords. The decision branches are evaluated in priority
// order; the first match wins.
func (e *RepairEstimator) ClassifyRenovationLevel(p *models.Property, clock Clock) RenovationLevel {
	age, ageKnown := p.Age(clock.Now())

	baseLevel := LevelModerate
	if ageKnown {
		switch {
		case age > 50:
			baseLevel = LevelExtensive
		case age > 30:
			baseLevel = LevelModerate
		default:
			baseLevel = LevelCosmetic
		}
	}

	description := strings.ToLower(p.Description)

	seriousIssues := 0
	for _, terms := range [][]string{
		roofIssueTerms, hvacIssueTerms, foundationIssueTerms,
		electricalIssueTerms, plumbingIssueTerms,
	} {
		if descContainsAny(description, terms) {
			seriousIssues++
		}
	}

	extensiveCount := countIndicators(extensiveIndicators, description, p.OpportunityKeywords)
	moderateCount := countIndicators(moderateIndicators, description, p.OpportunityKeywords)

	switch {
	case extensiveCount >= 2 || seriousIssues >= 2:
		return LevelExtensive
	case extensiveCount >= 1 || moderateCount >= 2 || seriousIssues >= 1:
		return LevelModerate
	case moderateCount >= 1:
		if baseLevel == LevelCosmetic {
			return LevelModerate
		}
		return baseLevel
	default:
		return baseLevel
	}
}

// RepairBreakdown is the itemized output of the detailed estimator. The
// line items are an observable output feeding display, not an internal
// detail.
type RepairBreakdown struct {
	Level        RenovationLevel    `json:"overall_level"`
	BaseSqftCost float64            `json:"base_sqft_cost"`
	BaseEstimate float64            `json:"base_estimate"`
	LineItems    map[string]float64 `json:"line_items"`
	Contingency  float64            `json:"contingency"`
	Total        float64            `json:"total"`
}

// DetailedEstimate generates a line-item repair estimate: a per-level base
// cost plus conditional items for roof, HVAC, kitchen, bathrooms and
// age-driven electrical/plumbing updates, plus contingency.
func (e *RepairEstimator) DetailedEstimate(p *models.Property, clock Clock) RepairBreakdown {
	level := e.ClassifyRenovationLevel(p, clock)
	rate := e.levelRate(level)

	breakdown := RepairBreakdown{
		Level:        level,
		BaseSqftCost: rate,
		BaseEstimate: p.SquareFeet * rate,
		LineItems:    map[string]float64{},
	}
	breakdown.Total = breakdown.BaseEstimate

	description := strings.ToLower(p.Description)
	items := e.cfg.ItemCosts

	if descContainsAny(description, []string{"roof", "leak", "ceiling"}) {
		switch {
		case strings.Contains(description, "new roof") || strings.Contains(description, "roof replaced"):
			// recently replaced, nothing to add
		case strings.Contains(description, "roof leak") || strings.Contains(description, "roof damage"):
			breakdown.addItem("roof", items.RoofReplace)
		default:
			breakdown.addItem("roof", items.RoofRepair)
		}
	}

	if descContainsAny(description, []string{"hvac", "heat", "cooling", "furnace", "air conditioning"}) {
		switch {
		case strings.Contains(description, "new hvac") || strings.Contains(description, "new furnace"):
			// recently replaced
		case strings.Contains(description, "hvac issue") || strings.Contains(description, "heating problem"):
			breakdown.addItem("hvac", items.HVACReplace)
		default:
			breakdown.addItem("hvac", items.HVACRepair)
		}
	}

	if level >= LevelModerate {
		breakdown.addItem("kitchen", e.kitchenCost(level))
		bathCount := math.Min(p.Bathrooms, 3)
		breakdown.addItem("bathrooms", e.bathroomCost(level)*bathCount)
	}

	if age, ok := p.Age(clock.Now()); ok && age > 30 {
		breakdown.addItem("electrical", items.ElectricalUpdate)
		breakdown.addItem("plumbing", items.PlumbingUpdate)
	}

	breakdown.Contingency = breakdown.Total * e.cfg.ContingencyPct
	breakdown.Total += breakdown.Contingency

	e.logger.WithFields(logrus.Fields{
		"address": p.FullAddress(),
		"level":   level.String(),
		"total":   breakdown.Total,
	}).Info("Detailed repair estimate")
	return breakdown
}

func (b *RepairBreakdown) addItem(name string, cost float64) {
	b.LineItems[name] = cost
	b.Total += cost
}

func (e *RepairEstimator) levelRate(level RenovationLevel) float64 {
	rates := e.cfg.RenovationRates
	switch level {
	case LevelComplete:
		return rates.Complete
	case LevelExtensive:
		return rates.Extensive
	case LevelModerate:
		return rates.Moderate
	default:
		return rates.Cosmetic
	}
}

func (e *RepairEstimator) kitchenCost(level RenovationLevel) float64 {
	switch level {
	case LevelComplete:
		return e.cfg.ItemCosts.KitchenHighEnd
	case LevelExtensive:
		return e.cfg.ItemCosts.KitchenExtensive
	default:
		return e.cfg.ItemCosts.KitchenModerate
	}
}

func (e *RepairEstimator) bathroomCost(level RenovationLevel) float64 {
	switch level {
	case LevelComplete:
		return e.cfg.ItemCosts.BathHighEnd
	case LevelExtensive:
		return e.cfg.ItemCosts.BathExtensive
	default:
		return e.cfg.ItemCosts.BathModerate
	}
}

func descContainsAny(description string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(description, term) {
			return true
		}
	}
	return false
}

// countIndicators counts phrases found either as a substring of any
// opportunity keyword or in the description itself.
func countIndicators(indicators []string, description string, keywords []string) int {
	count := 0
	for _, ind := range indicators {
		found := strings.Contains(description, ind)
		if !found {
			for _, kw := range keywords {
				if strings.Contains(kw, ind) {
					found = true
					break
				}
			}
		}
		if found {
			count++
		}
	}
	return count
}
