package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/match-odds-chart/internal/api"
	"github.com/match-odds-chart/internal/config"
	"github.com/match-odds-chart/internal/dataset"
	"github.com/match-odds-chart/internal/logging"
	"github.com/match-odds-chart/internal/metrics"
	"github.com/match-odds-chart/internal/state"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "matchchart",
		Short:         "Match odds chart service",
		Long:          `Serve implied win probability charts as geometry, images and a live websocket surface`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file (default "+config.DefaultPath+")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newRenderCmd(&configPath))
	rootCmd.AddCommand(newCheckCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("matchchart failed")
	}
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log)
	log.Info().Msg("Starting match odds chart service")
	log.Info().Msg("Configuration loaded")

	// Initialize state engine
	stateEngine := state.NewEngine()
	log.Info().Msg("State engine initialized")

	m := metrics.NewMetrics()

	// Seed data: the built-in history, or the dataset file when configured
	var watcher *dataset.Watcher
	if cfg.Data.Path == "" {
		stateEngine.Put(state.MatchHistory())
		log.Info().Str("series", state.MatchHistoryName).Msg("Built-in match history loaded")
	} else {
		watcher = dataset.NewWatcher(cfg.Data, stateEngine, m)
		if _, err := watcher.Reload(); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Data.Path).Msg("Dataset watcher initialized")
	}

	apiServer := api.NewServer(cfg, stateEngine, m)
	log.Info().Msg("API server initialized")

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup

	if watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Dataset watcher error")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiServer.Run(ctx); err != nil {
			log.Error().Err(err).Msg("API server error")
			cancel()
		}
	}()

	log.Info().Msg("All components started. System running...")

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	wg.Wait()
	log.Info().Msg("Shutdown complete")
	return nil
}
