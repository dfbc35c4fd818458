package simd

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/sim"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

// Worker drains the job queue in the background: claim the oldest pending
// job, run the simulation, write artifacts, record the outcome. Failed jobs
// keep their error text and are never retried.
type Worker struct {
	store      *JobStore
	poll       time.Duration
	keepRuns   int
	collectors *Collectors
	sink       *GreptimeSink
	notifier   *Notifier
	logger     *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// NewWorker creates a worker polling at the given interval. Zero or
// negative intervals fall back to 2 seconds.
func NewWorker(store *JobStore, poll time.Duration) *Worker {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Worker{
		store:    store,
		poll:     poll,
		keepRuns: 50,
		notifier: NewNotifier(),
		logger:   logger.Default,
	}
}

// SetKeepRuns bounds how many job directories survive on disk. Zero or
// negative disables pruning.
func (w *Worker) SetKeepRuns(n int) {
	w.keepRuns = n
}

// SetLogger sets the worker's logger
func (w *Worker) SetLogger(l *slog.Logger) {
	w.logger = l
}

// SetCollectors attaches the Prometheus collectors
func (w *Worker) SetCollectors(c *Collectors) {
	w.collectors = c
}

// SetSink attaches an optional GreptimeDB sink for completed runs
func (w *Worker) SetSink(s *GreptimeSink) {
	w.sink = s
}

// Start runs the polling loop in a background goroutine
func (w *Worker) Start() {
	if w.stop != nil {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop()
	w.logger.Info("Worker started", "poll_interval", w.poll.String())
}

// Stop ends the polling loop and waits for the in-flight job to finish
func (w *Worker) Stop() {
	if w.stop == nil {
		return
	}
	close(w.stop)
	<-w.done
	w.stop = nil
	w.logger.Info("Worker stopped")
}

// loop drains pending jobs back to back and sleeps one poll interval only
// when the queue is empty.
func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		if !w.ProcessNext() {
			select {
			case <-w.stop:
				return
			case <-time.After(w.poll):
			}
		}
	}
}

// ProcessNext claims and executes the oldest pending job. It reports
// whether a job was processed, so callers can also drain synchronously.
func (w *Worker) ProcessNext() bool {
	job, err := w.store.NextPending()
	if err != nil {
		w.logger.Error("Polling for jobs failed", "error", err)
		return false
	}
	if job == nil {
		return false
	}
	w.processJob(job)
	w.updatePendingGauge()
	return true
}

func (w *Worker) updatePendingGauge() {
	if w.collectors == nil {
		return
	}
	if n, err := w.store.PendingCount(); err == nil {
		w.collectors.SetPendingJobs(n)
	}
}

func (w *Worker) processJob(job *models.SimulationJob) {
	claimed, err := w.store.MarkRunning(job.JobID)
	if err != nil {
		// Another worker got there first, or the record vanished.
		w.logger.Warn("Could not claim job", "job_id", job.JobID, "error", err)
		return
	}
	w.logger.Info("Job started", "job_id", claimed.JobID)

	cfg := claimed.Config
	if cfg == nil {
		w.failJob(claimed.JobID, "job record has no config")
		return
	}
	cfg.RunID = claimed.JobID

	result := sim.RunWithLogger(cfg, w.logger)
	if !result.Success {
		w.failJob(claimed.JobID, strings.Join(result.Errors, "; "))
		return
	}

	artifacts, err := WriteArtifacts(result, w.store.JobDir(claimed.JobID))
	if err != nil {
		w.failJob(claimed.JobID, err.Error())
		return
	}

	if err := w.store.Complete(claimed.JobID, result, artifacts); err != nil {
		w.logger.Error("Recording job completion failed", "job_id", claimed.JobID, "error", err)
		return
	}
	w.collectors.JobCompleted(result.ExecutionTimeSeconds)
	w.notifyTerminal(claimed.JobID)

	if w.sink != nil {
		// Sink errors are logged by the sink; they never fail the job.
		_ = w.sink.WriteRun(result)
	}

	if w.keepRuns > 0 {
		if err := w.store.Prune(w.keepRuns); err != nil {
			w.logger.Warn("Pruning old runs failed", "error", err)
		}
	}

	w.logger.Info("Job completed",
		"job_id", claimed.JobID,
		"detection_rate", result.Metrics.DetectionRate,
		"false_positive_rate", result.Metrics.FalsePositiveRate)
}

func (w *Worker) failJob(jobID, message string) {
	if err := w.store.Fail(jobID, message); err != nil {
		w.logger.Error("Recording job failure failed", "job_id", jobID, "error", err)
	}
	w.collectors.JobFailed()
	w.notifyTerminal(jobID)
	w.logger.Warn("Job failed", "job_id", jobID, "reason", message)
}

// notifyTerminal fires the job's callback with its final persisted state
func (w *Worker) notifyTerminal(jobID string) {
	job, err := w.store.Get(jobID)
	if err != nil {
		return
	}
	w.notifier.Notify(job)
}
