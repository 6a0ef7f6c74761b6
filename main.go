// Command gearwright builds, simulates and previews gear trains described
// in gear scripts.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/chazu/gearwright/pkg/config"
	"github.com/chazu/gearwright/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// --- Global Command Variables ---
var (
	configPath  string
	logLevel    string
	logFile     string
	metricsAddr string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "gearwright",
		Short:         "Build and simulate procedural gear trains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error("command failed", zap.Error(err))
		logger.Sync()
		os.Stderr.WriteString("gearwright: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default: search for "+config.FileName+")")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "also write logs to this file")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(buildCmd, simulateCmd, previewCmd, watchCmd, inspectCmd)
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile != "" {
		c.Logging.LogFile = logFile
	}
	if metricsAddr != "" {
		c.Metrics.Addr = metricsAddr
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		serveMetrics(cmd.Context(), cfg.Metrics.Addr)
	}
	return nil
}

// serveMetrics exposes the default Prometheus registry until ctx ends.
func serveMetrics(ctx context.Context, addr string) {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("metrics server", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
}
