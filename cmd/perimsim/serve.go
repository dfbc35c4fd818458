package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/simd"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
)

var (
	serveAddr      string
	serveDataDir   string
	servePoll      time.Duration
	serveKeepRuns  int
	serveLogLevel  string
	serveLogFormat string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job API with an embedded worker",
	Long: "serve starts the REST API for submitting simulation jobs and an embedded " +
		"worker that executes them. Set GREPTIMEDB_ENDPOINT to also stream run " +
		"metrics into GreptimeDB.",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(serveLogLevel, serveLogFormat)

		store, err := simd.NewJobStore(serveDataDir)
		if err != nil {
			return err
		}
		collectors, err := simd.NewCollectors(nil)
		if err != nil {
			return err
		}

		worker := simd.NewWorker(store, servePoll)
		worker.SetCollectors(collectors)
		worker.SetKeepRuns(serveKeepRuns)
		attachSink(worker)
		worker.Start()
		defer worker.Stop()

		httpSrv := &http.Server{
			Addr:              serveAddr,
			Handler:           simd.NewHTTPServer(store, collectors).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			logger.Info("HTTP server listening", "addr", serveAddr, "data_dir", serveDataDir)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "error", err)
				stop()
			}
		}()

		<-ctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "data", "Directory for job records and artifacts")
	serveCmd.Flags().DurationVar(&servePoll, "poll", 2*time.Second, "Worker poll interval")
	serveCmd.Flags().IntVar(&serveKeepRuns, "keep-runs", 50, "How many run directories to keep on disk (0 disables pruning)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "text", "Log format (text, json)")
}

func setupLogger(level, format string) {
	if format == "json" {
		logger.SetDefault(logger.New(level, os.Stdout))
		return
	}
	logger.SetDefault(logger.NewText(level, os.Stdout))
}

// attachSink wires the optional GreptimeDB sink from the environment. A bad
// endpoint degrades to artifact-only operation instead of refusing to start.
func attachSink(worker *simd.Worker) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if endpoint == "" {
		return
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	sink, err := simd.NewGreptimeSink(endpoint, database)
	if err != nil {
		logger.Warn("GreptimeDB sink unavailable", "endpoint", endpoint, "error", err)
		return
	}
	worker.SetSink(sink)
	logger.Info("GreptimeDB sink enabled", "endpoint", endpoint, "database", database)
}
