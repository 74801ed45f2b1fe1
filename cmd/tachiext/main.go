package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dikkadev/tachiext/pkg/config"
	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/logger"
	"github.com/dikkadev/tachiext/pkg/storage"
	"github.com/spf13/cobra"
)

const dbFilename = "tachiext.db"

var (
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "tachiext",
	Short: "Tachiyomi extension catalog and library maintenance",
	Long: `tachiext syncs the Tachiyomi extension repository, reports and installs
extension updates, and runs maintenance functions against the library database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger.Init(level)

		if err := cfg.EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to ensure directories: %w", err)
		}
		return logger.AddFileLogger(cfg.GetDirectories().Logs)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

// app holds the collaborators of commands that touch the database
type app struct {
	store  *storage.LibSQL
	client github.Client
}

func openApp(ctx context.Context) (*app, error) {
	dbPath := filepath.Join(cfg.GetDirectories().DB, dbFilename)
	store, err := storage.NewLibSQL("file:" + dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if _, err := storage.NewMigrator(store, store).Upgrade(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &app{
		store:  store,
		client: github.NewClient(cfg.ClientOptions()),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
