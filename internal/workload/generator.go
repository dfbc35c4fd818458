package workload

import (
	"log/slog"
	"math"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/engine"
	"github.com/Jaikrrish5959/Live-in-Labs/internal/netsim"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// Generator produces the stochastic stream of sensor events that drives a
// run. Inter-arrival gaps are exponential; each event is an intruder with the
// configured probability and lands uniformly on a disk slightly wider than
// the outer ring, so some events fall outside every sensor's range.
type Generator struct {
	sched   *engine.Scheduler
	cfg     *config.SimulationConfig
	rng     *utils.RandSource
	network *netsim.Network
	logger  *slog.Logger

	events []*models.SensorEvent
}

// NewGenerator creates a generator; nothing is emitted until Start
func NewGenerator(sched *engine.Scheduler, cfg *config.SimulationConfig, rng *utils.RandSource, network *netsim.Network) *Generator {
	return &Generator{
		sched:   sched,
		cfg:     cfg,
		rng:     rng,
		network: network,
		logger:  logger.Default,
	}
}

// SetLogger sets the generator's logger
func (g *Generator) SetLogger(l *slog.Logger) {
	g.logger = l
}

// Start schedules the emission process at the current instant. Like the
// gateway, the generator draws nothing until its process runs, so the Start
// order between the two fixes the random draw sequence for a given seed.
func (g *Generator) Start() {
	g.sched.Schedule(0, func() {
		g.scheduleNext(0)
	})
}

// scheduleNext draws the inter-arrival gap for the given event id and
// schedules its emission. Emission stops once event_count is reached.
func (g *Generator) scheduleNext(id int) {
	if id >= g.cfg.Simulation.EventCount {
		g.logger.Debug("Event generation finished", "events", len(g.events), "time", g.sched.Now())
		return
	}

	interval := g.rng.ExpFloat64(1.0 / g.cfg.Simulation.EventIntervalMean)
	g.sched.Schedule(interval, func() {
		g.emit(id)
		// The next gap is drawn here, before the nodes the dispatch just
		// queued get to draw their confidences.
		g.scheduleNext(id + 1)
	})
}

// emit draws one sensor event and hands it to the network
func (g *Generator) emit(id int) {
	kind := models.EventNoise
	if g.rng.BernoulliBool(g.cfg.Simulation.IntruderProbability) {
		kind = models.EventIntruder
	}

	angle := g.rng.UniformFloat64(0, 2*math.Pi)
	radius := g.rng.UniformFloat64(0, g.cfg.Topology.OuterRingRadius+5)
	duration := g.rng.UniformFloat64(1.0, 5.0)

	event := &models.SensorEvent{
		ID:       id,
		Kind:     kind,
		Time:     g.sched.Now(),
		Position: models.Vec2{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)},
		Duration: duration,
	}
	g.events = append(g.events, event)

	g.logger.Debug("Sensor event emitted",
		"event_id", id,
		"kind", kind,
		"time", event.Time,
		"x", event.Position.X,
		"y", event.Position.Y)

	g.network.Dispatch(event)
}

// Events returns every event emitted so far, in emission order
func (g *Generator) Events() []*models.SensorEvent {
	return g.events
}
