// Package cli defines the cobra command tree for flipfinder.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flipfinder/config"
	"flipfinder/internal/database"
)

var (
	flagDB      string
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flipfinder",
		Short:         "Find residential properties worth flipping",
		Long:          "Fetch listings, estimate repair costs and after-repair values, and rank flip candidates by projected return.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Missing .env files are fine; the environment wins anyway.
			godotenv.Load()
		},
	}

	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: $DATABASE_PATH)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(),
		newDealsCmd(),
		newVersionCmd(),
	)

	return root
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// openDatabase opens the SQLite database using the --db flag or the
// configured path, and applies migrations.
func openDatabase(cfg *config.Config) (*database.Database, error) {
	path := flagDB
	if path == "" {
		path = cfg.Database.Path
	}
	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
