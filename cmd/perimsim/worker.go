package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/simd"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
)

var (
	workerDataDir   string
	workerPoll      time.Duration
	workerKeepRuns  int
	workerLogLevel  string
	workerLogFormat string
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a standalone job worker",
	Long: "worker drains the job queue of a data directory without serving HTTP. " +
		"Point it at the same --data-dir as a serve instance to move simulation " +
		"execution onto a separate process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(workerLogLevel, workerLogFormat)

		store, err := simd.NewJobStore(workerDataDir)
		if err != nil {
			return err
		}

		worker := simd.NewWorker(store, workerPoll)
		worker.SetKeepRuns(workerKeepRuns)
		attachSink(worker)
		worker.Start()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		worker.Stop()
		return nil
	},
}

func init() {
	workerCmd.Flags().StringVar(&workerDataDir, "data-dir", "data", "Directory for job records and artifacts")
	workerCmd.Flags().DurationVar(&workerPoll, "poll", 2*time.Second, "Worker poll interval")
	workerCmd.Flags().IntVar(&workerKeepRuns, "keep-runs", 50, "How many run directories to keep on disk (0 disables pruning)")
	workerCmd.Flags().StringVar(&workerLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	workerCmd.Flags().StringVar(&workerLogFormat, "log-format", "text", "Log format (text, json)")
}
