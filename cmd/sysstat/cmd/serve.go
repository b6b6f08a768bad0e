package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/server"
	"github.com/HerbHall/sysstat/internal/version"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

var serveAddr string

// onServing, when set, receives the bound address once the listener is open.
var onServing func(net.Addr)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve host metrics over HTTP",
	Long: "Start the HTTP server. GET / returns every collector's document;\n" +
		"date_format and human_readable select the output format.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return fmt.Errorf("sysstat serve: %w", err)
	}
	if serveAddr != "" {
		s.Addr = serveAddr
	}

	logger, err := newLogger(s.Log)
	if err != nil {
		return fmt.Errorf("sysstat serve: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("sysstat starting", zap.String("version", version.Short()))

	a, err := newApp(s, newSource(), logger, plugin.Factories())
	if err != nil {
		return fmt.Errorf("sysstat serve: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.registry.StartAll(ctx)
	defer a.registry.StopAll()

	srv := server.New(server.Options{
		Addr:         s.Addr,
		ReadTimeout:  s.Server.ReadTimeout,
		WriteTimeout: s.Server.WriteTimeout,
		IdleTimeout:  s.Server.IdleTimeout,
		RateLimit:    s.Server.RateLimit,
		RateBurst:    s.Server.RateBurst,
		PluginConfig: s.PluginConfig,
		Metrics:      a.metrics,
		Gatherer:     a.gatherer,
	}, a.registry, logger.Named("server"))

	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("sysstat serve: listen %s: %w", s.Addr, err)
	}
	if onServing != nil {
		onServing(l.Addr())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("sysstat serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	<-errCh

	logger.Info("sysstat stopped")
	return nil
}
