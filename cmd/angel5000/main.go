// Package main provides the angel5000 command line tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/angel5000/internal/config"
	"github.com/yourusername/angel5000/internal/database"
	"github.com/yourusername/angel5000/internal/logger"
	"github.com/yourusername/angel5000/internal/repository"
	"github.com/yourusername/angel5000/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	noDB       bool
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before configuration")
	rootCmd.PersistentFlags().BoolVar(&noDB, "no-db", false, "Skip the results store even when configured")

	rootCmd.AddCommand(newRunCmd(), newReportCmd(), newScheduleCmd(), newVersionCmd())
}

var rootCmd = &cobra.Command{
	Use:   "angel5000",
	Short: "Monte Carlo study of angel portfolio diversification",
	Long: `angel5000 samples portfolios from synthetic power-law startup universes and
reports how portfolio size changes IRR dispersion and capture of the top 1% and 0.1% outcomes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupDependencies(cmd.Context())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, loaded, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if noDB {
		loaded.Database.Enabled = false
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

// setupDependencies connects the results store. A store that cannot be reached
// leaves repos nil so batches still run and report persistence as unavailable.
func setupDependencies(ctx context.Context) {
	appLog = logger.NewLogger(cfg.App.LogLevel)
	if cfg.IsProduction() {
		appLog.SetFormatter(&logrus.JSONFormatter{})
	}

	if !cfg.Database.Enabled {
		appLog.Debug("Results store disabled")
		return
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	db, err = database.Initialize(connectCtx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Warn("Results store unavailable, continuing without persistence")
		db = nil
		return
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Warn("Failed to initialize repositories")
		repos = nil
	}
}

func newSimulationService() *service.SimulationService {
	var repo repository.SimulationRepository
	if repos != nil {
		repo = repos.Simulation
	}
	return service.NewSimulationService(repo, appLog, cfg.Database.BatchSize)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("angel5000 %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
