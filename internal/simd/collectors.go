package simd

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles the Prometheus metrics of the job service. A nil
// *Collectors is valid and records nothing, so metrics stay optional for
// embedded and test setups.
type Collectors struct {
	gatherer prometheus.Gatherer

	JobsSubmitted      prometheus.Counter
	JobsCompleted      prometheus.Counter
	JobsFailed         prometheus.Counter
	SimulationDuration prometheus.Histogram
	PendingJobs        prometheus.Gauge
}

// NewCollectors registers the job metrics against the provided registerer,
// defaulting to the global registry when nil. Re-registering an existing
// collector returns the registered one instead of failing, so constructing
// twice in one process is safe.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	submitted, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "perimsim_jobs_submitted_total",
		Help: "Total number of simulation jobs accepted by the API.",
	}), "perimsim_jobs_submitted_total")
	if err != nil {
		return nil, err
	}
	completed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "perimsim_jobs_completed_total",
		Help: "Total number of simulation jobs that finished successfully.",
	}), "perimsim_jobs_completed_total")
	if err != nil {
		return nil, err
	}
	failed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "perimsim_jobs_failed_total",
		Help: "Total number of simulation jobs that ended in failure.",
	}), "perimsim_jobs_failed_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "perimsim_simulation_duration_seconds",
		Help:    "Wall-clock duration of simulation executions in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}), "perimsim_simulation_duration_seconds")
	if err != nil {
		return nil, err
	}

	pending, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "perimsim_jobs_pending",
		Help: "Number of jobs currently waiting for a worker.",
	}), "perimsim_jobs_pending")
	if err != nil {
		return nil, err
	}

	return &Collectors{
		gatherer:           gatherer,
		JobsSubmitted:      submitted,
		JobsCompleted:      completed,
		JobsFailed:         failed,
		SimulationDuration: duration,
		PendingJobs:        pending,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collectors) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// JobSubmitted counts one accepted job
func (c *Collectors) JobSubmitted() {
	if c == nil {
		return
	}
	c.JobsSubmitted.Inc()
}

// JobCompleted counts one finished job and records its execution time
func (c *Collectors) JobCompleted(seconds float64) {
	if c == nil {
		return
	}
	c.JobsCompleted.Inc()
	c.SimulationDuration.Observe(seconds)
}

// JobFailed counts one failed job
func (c *Collectors) JobFailed() {
	if c == nil {
		return
	}
	c.JobsFailed.Inc()
}

// SetPendingJobs records the current queue depth
func (c *Collectors) SetPendingJobs(n int) {
	if c == nil {
		return
	}
	c.PendingJobs.Set(float64(n))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
