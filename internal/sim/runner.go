package sim

import (
	"log/slog"
	"time"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/engine"
	"github.com/Jaikrrish5959/Live-in-Labs/internal/metrics"
	"github.com/Jaikrrish5959/Live-in-Labs/internal/netsim"
	"github.com/Jaikrrish5959/Live-in-Labs/internal/topology"
	"github.com/Jaikrrish5959/Live-in-Labs/internal/workload"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// Run executes one complete simulation synchronously and returns its result.
// The same config and seed always produce the same result, down to the raw
// latency lists; only ExecutionTimeSeconds varies between runs. A config that
// fails validation returns Success=false with the messages and simulates
// nothing.
func Run(cfg *config.SimulationConfig) *models.Result {
	return RunWithLogger(cfg, logger.Default)
}

// RunWithLogger is Run with an explicit logger for the run's components
func RunWithLogger(cfg *config.SimulationConfig, log *slog.Logger) *models.Result {
	if errs := cfg.Validate(); len(errs) > 0 {
		log.Warn("Config validation failed", "run_id", cfg.RunID, "errors", len(errs))
		return &models.Result{
			Success: false,
			RunID:   cfg.RunID,
			Errors:  errs,
		}
	}

	rng := utils.NewRandSource(cfg.RandomSeed)
	sched := engine.NewScheduler()
	sched.SetLogger(log)

	gateway := netsim.NewGateway(sched, cfg, rng)
	gateway.SetLogger(log)
	network := netsim.NewNetwork(sched, gateway, cfg, rng)
	network.SetLogger(log)
	analyzer := netsim.NewAnalyzer(cfg, rng)

	topo := topology.Build(cfg)
	for _, spec := range topo.Nodes {
		node := netsim.NewNode(sched, spec.ID, spec.Ring, spec.Position, gateway, network, cfg, analyzer)
		node.SetLogger(log)
		network.AddNode(node)
	}
	network.SetNeighbors(topo.Neighbors)

	generator := workload.NewGenerator(sched, cfg, rng, network)
	generator.SetLogger(log)

	// The gateway's process registers before the generator's, so the first
	// up-phase draw precedes the first inter-arrival draw. Reordering these
	// two lines changes every result for a given seed.
	gateway.Start()
	generator.Start()

	horizon := float64(cfg.Simulation.EventCount)*cfg.Simulation.EventIntervalMean + 200

	log.Info("Simulation starting",
		"run_id", cfg.RunID,
		"seed", cfg.RandomSeed,
		"events", cfg.Simulation.EventCount,
		"nodes", len(topo.Nodes),
		"horizon", horizon)

	wallStart := time.Now()
	processed := sched.RunUntil(horizon)
	elapsed := time.Since(wallStart).Seconds()

	m := metrics.Compute(generator.Events(), network.Detections())

	// The baseline draws from a fresh source with the run's seed, so it is
	// reproducible no matter how many draws the run itself consumed.
	baseline := metrics.ComputeBaseline(generator.Events(), cfg, utils.NewRandSource(cfg.RandomSeed))

	log.Info("Simulation finished",
		"run_id", cfg.RunID,
		"processed", processed,
		"detections", m.UniqueDetections,
		"detection_rate", m.DetectionRate,
		"execution_seconds", elapsed)

	return &models.Result{
		Success:              true,
		RunID:                cfg.RunID,
		Config:               cfg,
		ExecutionTimeSeconds: elapsed,
		Metrics:              m,
		Baseline:             baseline,
		Topology:             topo.Summary(),
	}
}
