package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	router "github.com/dkeye/Shuffle/internal/adapters/http"
	"github.com/dkeye/Shuffle/internal/app"
	"github.com/dkeye/Shuffle/internal/app/orch"
	"github.com/dkeye/Shuffle/internal/config"
)

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "shuffle-server",
		Short:        "Rotating one-to-one video pairing server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
	f := cmd.Flags()
	f.Int("port", 8080, "HTTP listen port")
	f.String("mode", "release", "gin mode: release, debug or test")
	f.String("static-path", "./web", "directory with the browser client")
	f.String("log-level", "info", "zerolog level")
	f.Duration("shuffle-interval", app.DefaultShuffleInterval, "time between re-shuffles")
	f.Duration("shuffle-countdown", app.DefaultShuffleCountdown, "warning before each re-shuffle")
	return cmd
}

func run(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	sessions := app.NewSessionManager(ctx, app.ShuffleOptions{
		Interval:  cfg.Shuffle.Interval,
		Countdown: cfg.Shuffle.Countdown,
		Clock:     clockwork.NewRealClock(),
	}, app.SimplePolicy{})
	defer sessions.Close()

	reg := app.NewRegistry()
	o := &orch.Orchestrator{
		Registry: reg,
		Sessions: sessions,
	}

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Shuffle server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Int("sessions", sessions.Len()).Int("connections", reg.Count()).Msg("Server exited gracefully")
	return nil
}
