package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/solatis/dosecalc/internal/core/config"
	"github.com/solatis/dosecalc/internal/core/db"
	"github.com/solatis/dosecalc/internal/core/logging"
	"github.com/solatis/dosecalc/internal/core/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string

	// set by PersistentPreRunE
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "dosecalc",
	Short:         "Drug dosage rule engine",
	Long:          `dosecalc selects a dose for a patient from a drug's ordered dosing rules.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		flags := cmd.Root().PersistentFlags()
		for key, flag := range map[string]string{
			"database.url": "db-url",
			"log.level":    "log-level",
			"log.format":   "log-format",
		} {
			if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.LoadConfig(configFile, v)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the configured database and refuses to continue while
// migrations are pending. The returned func closes the database.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			database.Close()
			return nil, nil, fmt.Errorf("migration %s not applied - run 'dosecalc migrate' first", s.ID)
		}
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}

	return store.New(queries, logger), func() { database.Close() }, nil
}
