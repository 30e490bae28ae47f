package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/models"
)

var (
	// ErrZeroListPrice marks a property whose list price makes cost math
	// meaningless. Configuration/upstream error, not a data-sparsity case.
	ErrZeroListPrice = errors.New("list price must be positive")

	// ErrInvalidInput marks negative or non-finite numeric inputs that the
	// connector layer should have normalized away.
	ErrInvalidInput = errors.New("invalid numeric input")
)

// Evaluator turns a property plus its ARV and repair estimates into a Deal.
type Evaluator struct {
	cfg    config.AnalysisConfig
	clock  Clock
	logger *logrus.Logger
}

func NewEvaluator(cfg config.AnalysisConfig, clock Clock, logger *logrus.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, clock: clock, logger: logger}
}

// ClosingCosts estimates both sides of the transaction: a percentage of
// the purchase price going in, agent commission plus seller closing on the
// projected sale price going out.
func (e *Evaluator) ClosingCosts(purchasePrice, salePrice float64) models.ClosingCosts {
	cc := models.ClosingCosts{
		PurchaseClosing: purchasePrice * e.cfg.ClosingCosts.PurchasePct,
		AgentCommission: salePrice * e.cfg.ClosingCosts.AgentCommissionPct,
		SellerClosing:   salePrice * e.cfg.ClosingCosts.SellerClosingPct,
	}
	cc.Total = cc.PurchaseClosing + cc.AgentCommission + cc.SellerClosing
	return cc
}

// HoldingCosts estimates carrying costs over the given number of months:
// monthly mortgage, tax and insurance accruals on the purchase price plus
// flat utilities.
func (e *Evaluator) HoldingCosts(purchasePrice, months float64) float64 {
	h := e.cfg.HoldingCosts
	monthly := purchasePrice*h.MortgageRate/12 +
		purchasePrice*h.PropertyTaxRate/12 +
		purchasePrice*h.InsuranceRate/12 +
		h.MonthlyUtilities
	return monthly * months
}

// Analyze combines list price, ARV and repair costs into a full Deal and
// writes the computed values back onto the property as a cache. The
// holding period is the configured average flip duration. Returns an error
// for a non-positive list price or non-finite inputs; data-sparsity
// handling happens upstream in the ARV estimator.
func (e *Evaluator) Analyze(p *models.Property, arv, repairCosts float64) (*models.Deal, error) {
	if p.ListPrice <= 0 {
		return nil, fmt.Errorf("%w: %s has list price %.2f", ErrZeroListPrice, p.FullAddress(), p.ListPrice)
	}
	if p.SquareFeet < 0 {
		return nil, fmt.Errorf("%w: negative square footage for %s", ErrInvalidInput, p.FullAddress())
	}
	for name, v := range map[string]float64{"arv": arv, "repair_costs": repairCosts} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: %s=%v for %s", ErrInvalidInput, name, v, p.FullAddress())
		}
	}

	p.EstimatedRepairCost = repairCosts
	p.EstimatedARV = arv

	closing := e.ClosingCosts(p.ListPrice, arv)
	holding := e.HoldingCosts(p.ListPrice, e.cfg.AverageFlipMonths)

	totalCost := p.ListPrice + repairCosts + closing.Total + holding
	profit := arv - totalCost
	roi := profit / totalCost * 100

	p.EstimatedProfit = profit
	p.EstimatedROI = roi

	maxPurchase := 0.7*arv - repairCosts

	deal := &models.Deal{
		PropertyID:         p.MLSID,
		Address:            p.FullAddress(),
		ListPrice:          p.ListPrice,
		ARV:                arv,
		RepairCosts:        repairCosts,
		ClosingCosts:       closing,
		HoldingCosts:       holding,
		TotalProjectCost:   totalCost,
		PotentialProfit:    profit,
		ROI:                roi,
		MaxPurchasePrice:   maxPurchase,
		MeetsCriteria:      roi >= e.cfg.MinROI,
		Meets70PercentRule: p.ListPrice <= maxPurchase,
		AnalysisDate:       e.clock.Now(),
		Property:           p.Snapshot(e.clock.Now()),
	}

	e.logger.WithFields(logrus.Fields{
		"address": deal.Address,
		"roi":     roi,
		"profit":  profit,
	}).Info("Deal analysis complete")
	return deal, nil
}
