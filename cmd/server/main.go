package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flipfinder/config"
	"flipfinder/internal/analysis"
	"flipfinder/internal/api"
	"flipfinder/internal/database"
	"flipfinder/internal/pipeline"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Missing .env files are fine; the environment wins anyway.
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	acfg, err := config.LoadAnalysisConfig(cfg.AnalysisConfigPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load analysis configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gdb, err := gorm.Open(sqlite.Dialector{Conn: db.GetDB()}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	// Persistence pipeline: analysis runs push scored deal batches onto
	// the queue, the persister drains them into the database.
	queue := pipeline.NewDealQueue(cfg.Pipeline.QueueSize, logger)
	queue.Start()
	defer queue.Close()

	persister := pipeline.NewBatchPersister(gdb, queue, cfg, logger)
	persister.Start()

	clock := analysis.SystemClock()
	runner := pipeline.NewRunner(cfg, nil, queue, clock, logger)
	handler := api.NewHandler(db, runner, acfg, clock, logger)

	router := gin.Default()
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
