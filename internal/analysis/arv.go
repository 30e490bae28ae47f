package analysis

import (
	"math"

	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/models"
)

// ARVEstimator projects an after-repair value for a subject property from
// the price per square foot of its comparable sales.
type ARVEstimator struct {
	cfg    config.ARVConfig
	logger *logrus.Logger
}

func NewARVEstimator(cfg config.ARVConfig, logger *logrus.Logger) *ARVEstimator {
	return &ARVEstimator{cfg: cfg, logger: logger}
}

// Estimate computes the ARV from the given comps. Comps without a positive
// square footage are skipped. When no usable comps remain the estimate
// falls back to list price times the configured multiplier; this is a
// deliberately crude fallback carried over from the calibrated model, kept
// so sparse-data results stay comparable across runs. The function never
// fails; degenerate input always resolves to a numeric value.
func (e *ARVEstimator) Estimate(p *models.Property, comps []models.Comp) float64 {
	psf := make([]float64, 0, len(comps))
	for _, comp := range comps {
		if comp.SquareFeet > 0 {
			psf = append(psf, comp.SalePrice/comp.SquareFeet)
		}
	}

	if len(psf) == 0 {
		arv := p.ListPrice * e.cfg.FallbackMultiplier
		e.logger.WithFields(logrus.Fields{
			"address": p.FullAddress(),
			"arv":     arv,
		}).Warn("No usable comps, falling back to list price multiple for ARV")
		return arv
	}

	avg := mean(psf)
	if e.cfg.ExcludeOutliers && len(psf) > e.cfg.OutlierMinSamples {
		std := stdDev(psf, avg)
		var retained []float64
		for _, v := range psf {
			if math.Abs(v-avg) <= e.cfg.OutlierStdDevs*std {
				retained = append(retained, v)
			}
		}
		if len(retained) > 0 {
			avg = mean(retained)
		}
	}

	arv := p.SquareFeet * avg
	e.logger.WithFields(logrus.Fields{
		"address":        p.FullAddress(),
		"comps_used":     len(psf),
		"avg_price_sqft": avg,
		"arv":            arv,
	}).Info("Calculated ARV")
	return arv
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation around the given mean.
func stdDev(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
