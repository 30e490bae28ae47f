package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flipfinder/config"
	"flipfinder/internal/analysis"
	"flipfinder/internal/connectors"
	"flipfinder/internal/database"
	"flipfinder/internal/enrichment"
	"flipfinder/internal/export"
	"flipfinder/internal/models"
	"flipfinder/internal/notification"
	"flipfinder/internal/pipeline"
)

var defaultPropertyTypes = []string{"Residential", "Condo/Co-Op", "Townhouse"}

type analyzeOptions struct {
	area       string
	budget     float64
	minROI     float64
	maxDOM     int
	source     string
	exportPath string
	notify     bool
	top        int
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fetch listings and rank flip candidates",
		Long:  "Fetch listings from the configured sources, enrich them with tax and market data, and rank the viable flips by score.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.area, "area", "", "target city or ZIP code")
	cmd.Flags().Float64Var(&opts.budget, "budget", 0, "maximum purchase budget")
	cmd.Flags().Float64Var(&opts.minROI, "roi", 0, "minimum ROI percentage (default from analysis config)")
	cmd.Flags().IntVar(&opts.maxDOM, "max-dom", 90, "maximum days on market")
	cmd.Flags().StringVar(&opts.source, "source", "mls", "data source (mls|redfin|both)")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write results to an xlsx file at this path")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "email the top deals to the configured recipients")
	cmd.Flags().IntVar(&opts.top, "top", 5, "number of deals to print")

	return cmd
}

func runAnalyze(ctx context.Context, opts analyzeOptions) error {
	logger := newLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	acfg, err := config.LoadAnalysisConfig(cfg.AnalysisConfigPath)
	if err != nil {
		return err
	}
	if opts.minROI > 0 {
		acfg.MinROI = opts.minROI
	}

	properties, err := fetchProperties(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	if len(properties) == 0 {
		fmt.Println("No properties found matching criteria. Try adjusting your search parameters.")
		return nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	clock := analysis.SystemClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	records := enrichment.NewPublicRecords(clock, logger)
	market := enrichment.NewMarketData(rng, clock, logger)

	enrichers := []pipeline.Enricher{
		records,
		pipeline.EnricherFunc(func(p *models.Property) { market.AddComps(p, 0) }),
		pipeline.EnricherFunc(market.AddNeighborhoodData),
	}

	runner := pipeline.NewRunner(cfg, enrichers, nil, clock, logger)
	report, err := runner.Run(ctx, properties, acfg)
	if err != nil {
		return err
	}

	if err := db.SaveProperties(properties); err != nil {
		return err
	}
	if err := persistReport(db, report, acfg); err != nil {
		return err
	}

	viable := make([]*models.Deal, 0, len(report.Deals))
	for _, deal := range report.Deals {
		if deal.MeetsCriteria {
			viable = append(viable, deal)
		}
	}
	logger.Infof("Found %d viable deals out of %d analyzed", len(viable), report.DealsFound)

	if opts.exportPath != "" {
		exporter := export.NewExcelExporter(logger)
		if err := exporter.Export(viable, opts.exportPath); err != nil {
			return err
		}
	}

	if opts.notify && len(viable) > 0 {
		notifier := notification.NewService(cfg.SMTP, logger)
		if err := notifier.SendDealAlert(viable, 10); err != nil {
			logger.WithError(err).Error("Failed to send deal alert")
		}
	}

	printSummary(viable, opts.top)
	return nil
}

func fetchProperties(ctx context.Context, cfg *config.Config, opts analyzeOptions, logger *logrus.Logger) ([]*models.Property, error) {
	criteria := connectors.SearchCriteria{
		Area:            opts.area,
		MaxPrice:        opts.budget,
		MaxDaysOnMarket: opts.maxDOM,
		PropertyTypes:   defaultPropertyTypes,
	}

	var sources []connectors.PropertySource
	switch opts.source {
	case "mls":
		sources = append(sources, connectors.NewMLSClient(cfg.MLS.BaseURL, cfg.MLS.ClientID, cfg.MLS.ClientSecret, logger))
	case "redfin":
		sources = append(sources, connectors.NewRedfinScraper(cfg.Redfin.BaseURL, logger))
	case "both":
		sources = append(sources,
			connectors.NewMLSClient(cfg.MLS.BaseURL, cfg.MLS.ClientID, cfg.MLS.ClientSecret, logger),
			connectors.NewRedfinScraper(cfg.Redfin.BaseURL, logger),
		)
	default:
		return nil, fmt.Errorf("unknown source %q (want mls, redfin or both)", opts.source)
	}

	var properties []*models.Property
	for _, source := range sources {
		fetched, err := source.FetchProperties(ctx, criteria)
		if err != nil {
			return nil, fmt.Errorf("fetching from %s: %w", source.Name(), err)
		}
		logger.Infof("Found %d properties from %s matching initial criteria", len(fetched), source.Name())
		properties = append(properties, fetched...)
	}

	if len(sources) > 1 {
		properties = connectors.Deduplicate(properties)
		logger.Infof("After deduplication: %d unique properties", len(properties))
	}
	return properties, nil
}

func persistReport(db *database.Database, report *pipeline.RunReport, acfg config.AnalysisConfig) error {
	gdb, err := gorm.Open(sqlite.Dialector{Conn: db.GetDB()}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}

	// Record the run before its deals; deals.run_id references it.
	parameters, _ := json.Marshal(acfg)
	now := time.Now()
	err = db.SaveAnalysisRun(database.AnalysisRun{
		ID:                report.RunID,
		StartedAt:         now,
		FinishedAt:        now,
		PropertiesSeen:    report.PropertiesSeen,
		PropertiesSkipped: len(report.Skipped),
		DealsFound:        report.DealsFound,
		Parameters:        string(parameters),
	})
	if err != nil {
		return err
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		return database.UpsertDeals(tx, report.RunID, report.Deals)
	})
}

func printSummary(deals []*models.Deal, top int) {
	if len(deals) == 0 {
		fmt.Println("\nNo viable deals found.")
		return
	}
	if top > len(deals) {
		top = len(deals)
	}

	fmt.Printf("\nTop %d Properties for Flipping:\n", top)
	for i, deal := range deals[:top] {
		fmt.Printf("\n%d. %s - Score: %.2f\n", i+1, deal.Address, deal.Score)
		fmt.Printf("   List Price: $%.2f, ARV: $%.2f\n", deal.ListPrice, deal.ARV)
		fmt.Printf("   Estimated Repair: $%.2f\n", deal.RepairCosts)
		fmt.Printf("   Potential Profit: $%.2f (ROI: %.2f%%)\n", deal.PotentialProfit, deal.ROI)
	}
}
