package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/analysis"
	"flipfinder/internal/database"
	"flipfinder/internal/enrichment"
	"flipfinder/internal/pipeline"
)

type Handler struct {
	db     *database.Database
	runner *pipeline.Runner
	acfg   config.AnalysisConfig
	clock  analysis.Clock
	market *enrichment.MarketData
	logger *logrus.Logger
}

func NewHandler(db *database.Database, runner *pipeline.Runner, acfg config.AnalysisConfig, clock analysis.Clock, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if clock == nil {
		clock = analysis.SystemClock()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Handler{
		db:     db,
		runner: runner,
		acfg:   acfg,
		clock:  clock,
		market: enrichment.NewMarketData(rng, clock, logger),
		logger: logger,
	}
}

// DealQuery holds the filter parameters accepted by the deal endpoints.
type DealQuery struct {
	RunID         string  `form:"run_id"`
	Limit         int     `form:"limit"`
	MinScore      float64 `form:"min_score"`
	MinROI        float64 `form:"min_roi"`
	MeetsCriteria bool    `form:"meets_criteria"`
	SeventyRule   bool    `form:"meets_70_percent_rule"`
}

func (q DealQuery) toFilter() database.DealFilter {
	return database.DealFilter{
		RunID:              q.RunID,
		Limit:              q.Limit,
		MinScore:           q.MinScore,
		MinROI:             q.MinROI,
		MeetsCriteriaOnly:  q.MeetsCriteria,
		Meets70PercentOnly: q.SeventyRule,
	}
}

func (h *Handler) GetDeals(c *gin.Context) {
	var query DealQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse deal query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	deals, err := h.db.GetTopDeals(query.toFilter())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get deals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get deals"})
		return
	}

	c.JSON(http.StatusOK, deals)
}

func (h *Handler) GetDealsGeoJSON(c *gin.Context) {
	var query DealQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	deals, err := h.db.GetTopDeals(query.toFilter())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get deals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get deals"})
		return
	}

	collection := geojson.NewFeatureCollection()
	for _, deal := range deals {
		if deal.Property.Latitude == 0 && deal.Property.Longitude == 0 {
			continue
		}
		feature := geojson.NewFeature(orb.Point{deal.Property.Longitude, deal.Property.Latitude})
		feature.Properties = geojson.Properties(deal.Flatten())
		collection.Append(feature)
	}

	c.JSON(http.StatusOK, collection)
}

func (h *Handler) GetProperties(c *gin.Context) {
	city := c.Query("city")
	properties, err := h.db.GetProperties(city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetAnalysisRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.db.GetAnalysisRuns(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get analysis runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analysis runs"})
		return
	}

	c.JSON(http.StatusOK, runs)
}

// GetMarketTrends returns the market indicators for a ZIP code.
func (h *Handler) GetMarketTrends(c *gin.Context) {
	zip := c.Query("zip")
	if zip == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zip is required"})
		return
	}

	c.JSON(http.StatusOK, h.market.AnalyzeMarketTrends(zip))
}

// AnalyzeRequest overrides analysis parameters for one run. Nil fields
// keep the configured values.
type AnalyzeRequest struct {
	City               string   `json:"city"`
	MinROI             *float64 `json:"min_roi"`
	AverageFlipMonths  *float64 `json:"average_flip_months"`
	ContingencyPct     *float64 `json:"contingency_pct"`
	MinComps           *int     `json:"min_comps"`
	FallbackMultiplier *float64 `json:"fallback_multiplier"`
	ExcludeOutliers    *bool    `json:"exclude_outliers"`
}

func (r AnalyzeRequest) apply(acfg config.AnalysisConfig) config.AnalysisConfig {
	if r.MinROI != nil {
		acfg.MinROI = *r.MinROI
	}
	if r.AverageFlipMonths != nil {
		acfg.AverageFlipMonths = *r.AverageFlipMonths
	}
	if r.ContingencyPct != nil {
		acfg.ContingencyPct = *r.ContingencyPct
	}
	if r.MinComps != nil {
		acfg.ARV.MinComps = *r.MinComps
	}
	if r.FallbackMultiplier != nil {
		acfg.ARV.FallbackMultiplier = *r.FallbackMultiplier
	}
	if r.ExcludeOutliers != nil {
		acfg.ARV.ExcludeOutliers = *r.ExcludeOutliers
	}
	return acfg
}

// RunAnalysis reanalyzes the stored properties, optionally overriding
// analysis parameters for this run only.
func (h *Handler) RunAnalysis(c *gin.Context) {
	started := h.clock.Now()

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.City != "" {
		exists, err := h.db.CityExists(req.City)
		if err != nil {
			h.logger.WithError(err).Error("Failed to check city")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load properties"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "No stored properties in that city"})
			return
		}
	}

	properties, err := h.db.GetProperties(req.City)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load properties for analysis")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load properties"})
		return
	}
	if len(properties) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No properties to analyze"})
		return
	}

	acfg := req.apply(h.acfg)
	report, err := h.runner.Run(c.Request.Context(), properties, acfg)
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parameters, _ := json.Marshal(acfg)
	err = h.db.SaveAnalysisRun(database.AnalysisRun{
		ID:                report.RunID,
		StartedAt:         started,
		FinishedAt:        h.clock.Now(),
		PropertiesSeen:    report.PropertiesSeen,
		PropertiesSkipped: len(report.Skipped),
		DealsFound:        report.DealsFound,
		Parameters:        string(parameters),
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to record analysis run")
	}

	c.JSON(http.StatusOK, report)
}
