package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/analysis"
	"flipfinder/internal/models"
)

// Enricher fills in data the listing feeds do not carry before a
// property is analyzed.
type Enricher interface {
	Enrich(p *models.Property)
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(p *models.Property)

func (f EnricherFunc) Enrich(p *models.Property) { f(p) }

// SkippedProperty records why a property fell out of an analysis run.
type SkippedProperty struct {
	PropertyID string `json:"property_id"`
	Address    string `json:"address"`
	Reason     string `json:"reason"`
}

// RunReport summarizes one pipeline execution.
type RunReport struct {
	RunID          string            `json:"run_id"`
	PropertiesSeen int               `json:"properties_seen"`
	DealsFound     int               `json:"deals_found"`
	Deals          []*models.Deal    `json:"deals"`
	Skipped        []SkippedProperty `json:"skipped"`
}

// Runner fans properties out to analysis workers, scores the resulting
// deals as a batch, and pushes them to the persistence queue.
type Runner struct {
	cfg       *config.Config
	enrichers []Enricher
	queue     *DealQueue
	clock     analysis.Clock
	logger    *logrus.Logger
}

func NewRunner(cfg *config.Config, enrichers []Enricher, queue *DealQueue, clock analysis.Clock, logger *logrus.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		enrichers: enrichers,
		queue:     queue,
		clock:     clock,
		logger:    logger,
	}
}

type workerResult struct {
	deal    *models.Deal
	skipped *SkippedProperty
}

// Run analyzes the given properties with the given analysis parameters.
// Properties with too few usable comps are skipped, not failed; only
// config violations abort the run.
func (r *Runner) Run(ctx context.Context, properties []*models.Property, acfg config.AnalysisConfig) (*RunReport, error) {
	if err := acfg.Validate(); err != nil {
		return nil, err
	}

	arv := analysis.NewARVEstimator(acfg.ARV, r.logger)
	repairs := analysis.NewRepairEstimator(acfg, r.logger)
	evaluator := analysis.NewEvaluator(acfg, r.clock, r.logger)
	scorer := analysis.NewScorer(acfg.Scoring, r.logger)

	report := &RunReport{
		RunID:          uuid.New().String(),
		PropertiesSeen: len(properties),
	}

	jobs := make(chan *models.Property)
	results := make(chan workerResult)

	workerCount := r.cfg.Pipeline.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- r.analyzeProperty(p, acfg, arv, repairs, evaluator)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range properties {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		if result.skipped != nil {
			report.Skipped = append(report.Skipped, *result.skipped)
			continue
		}
		if result.deal != nil {
			report.Deals = append(report.Deals, result.deal)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Deals = scorer.Score(report.Deals)
	report.DealsFound = len(report.Deals)

	if r.queue != nil && len(report.Deals) > 0 {
		batch := &DealBatch{RunID: report.RunID, Deals: report.Deals}
		if err := r.queue.Push(batch); err != nil {
			r.logger.WithError(err).Error("Failed to enqueue deals for persistence")
		}
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"seen":    report.PropertiesSeen,
		"deals":   report.DealsFound,
		"skipped": len(report.Skipped),
	}).Info("Analysis run complete")

	return report, nil
}

func (r *Runner) analyzeProperty(
	p *models.Property,
	acfg config.AnalysisConfig,
	arv *analysis.ARVEstimator,
	repairs *analysis.RepairEstimator,
	evaluator *analysis.Evaluator,
) workerResult {
	for _, enricher := range r.enrichers {
		enricher.Enrich(p)
	}

	comps := analysis.FilterComps(p, acfg.ARV, r.clock)
	if len(comps) < acfg.ARV.MinComps {
		r.logger.WithFields(logrus.Fields{
			"mls_id": p.MLSID,
			"comps":  len(comps),
		}).Warn("Skipping property with too few comparable sales")
		return workerResult{skipped: &SkippedProperty{
			PropertyID: p.MLSID,
			Address:    p.FullAddress(),
			Reason:     "insufficient comparable sales",
		}}
	}

	estimatedARV := arv.Estimate(p, comps)
	repairCosts := repairs.EstimateRepairs(p, r.clock)

	deal, err := evaluator.Analyze(p, estimatedARV, repairCosts)
	if err != nil {
		r.logger.WithError(err).WithField("mls_id", p.MLSID).Warn("Skipping property that failed evaluation")
		return workerResult{skipped: &SkippedProperty{
			PropertyID: p.MLSID,
			Address:    p.FullAddress(),
			Reason:     err.Error(),
		}}
	}

	return workerResult{deal: deal}
}
