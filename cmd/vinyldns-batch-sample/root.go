package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/vinyldns-batch-sample/internal/app"
	"github.com/auto-dns/vinyldns-batch-sample/internal/config"
	"github.com/auto-dns/vinyldns-batch-sample/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "vinyldns-batch-sample",
	Short: "Exercise VinylDNS batch changes end to end",
	Long: "Creates a group and a forward and reverse zone in VinylDNS, adds, replaces and deletes " +
		"records through batch changes, then tears everything down again.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if err := config.InitConfig(v, configFile); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApplication(cmd, func(ctx context.Context, application application) error {
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Tear down groups and zones left behind by interrupted runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApplication(cmd, func(ctx context.Context, application application) error {
			if err := application.Cleanup(ctx); err != nil {
				return fmt.Errorf("cleanup error: %w", err)
			}
			return nil
		})
	},
}

// withApplication builds the app from the loaded config and runs fn with a
// context cancelled on SIGINT or SIGTERM.
func withApplication(cmd *cobra.Command, fn func(context.Context, application) error) error {
	cfg := cmd.Context().Value(configKey).(*config.Config)

	// Set up logger.
	logInstance := logger.SetupLogger(&cfg.Logging)

	// Create the application.
	application, err := app.New(cfg, logInstance)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	defer closeApplication(application, logInstance)

	// Create a context with cancellation for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Listen for OS signals.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logInstance.Info().Msgf("Received signal: %v, cleaning up", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return fn(ctx, application)
}

func closeApplication(application application, log zerolog.Logger) {
	if err := application.Close(); err != nil {
		log.Warn().Err(err).Msg("Unable to close application")
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	v.BindPFlag("log.log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(cleanupCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
