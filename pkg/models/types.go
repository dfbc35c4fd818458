package models

import (
	"math"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
)

// EventKind classifies what triggered a sensor event.
type EventKind string

const (
	EventIntruder EventKind = "intruder"
	EventNoise    EventKind = "noise"
)

// MessageType identifies the P2P frames exchanged between nodes.
type MessageType string

const (
	MsgVerifyReq  MessageType = "VERIFY_REQ"
	MsgVerifyResp MessageType = "VERIFY_RESP"
)

// Ring names the two concentric sensor rings.
type Ring string

const (
	RingOuter Ring = "outer"
	RingInner Ring = "inner"
)

// Vec2 is a point on the simulation plane, in meters from the pen center.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to other in meters.
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// SensorEvent is a single stimulus emitted by the workload generator.
// Position is where the stimulus occurs; Duration is how long it remains
// detectable by nearby cameras.
type SensorEvent struct {
	ID       int       `json:"id"`
	Kind     EventKind `json:"kind"`
	Time     float64   `json:"time"`
	Position Vec2      `json:"position"`
	Duration float64   `json:"duration"`
}

// IsIntruder reports whether the event is a real perimeter breach.
func (e *SensorEvent) IsIntruder() bool { return e.Kind == EventIntruder }

// DetectionRecord captures one node's decision to report an event upstream.
// Latency is measured from the event's emission to the uplink attempt.
type DetectionRecord struct {
	EventID         int     `json:"event_id"`
	NodeID          string  `json:"node_id"`
	DetectionTime   float64 `json:"detection_time"`
	Confidence      float64 `json:"confidence"`
	UsedP2P         bool    `json:"used_p2p"`
	P2PMessagesSent int     `json:"p2p_messages_sent"`
	GatewayWasUp    bool    `json:"gateway_was_up"`
	Latency         float64 `json:"latency"`
	IsTruePositive  bool    `json:"is_true_positive"`
}

// Metrics is the aggregated outcome of a run. Latencies and P2PMessagesList
// hold the raw per-detection samples behind the summary statistics.
type Metrics struct {
	TotalEvents            int       `json:"total_events"`
	TotalIntruders         int       `json:"total_intruders"`
	TotalNoise             int       `json:"total_noise"`
	TotalDetections        int       `json:"total_detections"`
	UniqueDetections       int       `json:"unique_detections"`
	TruePositives          int       `json:"true_positives"`
	FalsePositives         int       `json:"false_positives"`
	FalsePositiveRate      float64   `json:"false_positive_rate"`
	DetectionRate          float64   `json:"detection_rate"`
	MeanLatencySeconds     float64   `json:"mean_latency_seconds"`
	MaxLatencySeconds      float64   `json:"max_latency_seconds"`
	P95LatencySeconds      float64   `json:"p95_latency_seconds"`
	MeanP2PMessages        float64   `json:"mean_p2p_messages"`
	TotalP2PMessages       int       `json:"total_p2p_messages"`
	DetectionsDuringOutage int       `json:"detections_during_outage"`
	OutageDetectionRate    float64   `json:"outage_detection_rate"`
	Latencies              []float64 `json:"latencies"`
	P2PMessagesList        []int     `json:"p2p_messages_list"`
}

// Baseline summarizes the naive single-node comparison strategy, where every
// camera reports alone whenever its confidence clears 0.5.
type Baseline struct {
	DetectionRate     float64 `json:"detection_rate"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
	TotalDetections   int     `json:"total_detections"`
}

// TopologySummary reports the node counts of the deployed rings.
type TopologySummary struct {
	TotalNodes int `json:"total_nodes"`
	OuterNodes int `json:"outer_nodes"`
	InnerNodes int `json:"inner_nodes"`
}

// Result is the complete outcome of a simulation run. When Success is false
// only RunID and Errors are populated.
type Result struct {
	Success              bool                     `json:"success"`
	RunID                string                   `json:"run_id"`
	Errors               []string                 `json:"errors,omitempty"`
	Config               *config.SimulationConfig `json:"config,omitempty"`
	ExecutionTimeSeconds float64                  `json:"execution_time_seconds,omitempty"`
	Metrics              *Metrics                 `json:"metrics,omitempty"`
	Baseline             *Baseline                `json:"baseline,omitempty"`
	Topology             *TopologySummary         `json:"topology,omitempty"`
}

// JobStatus tracks a queued simulation through its lifecycle.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// SimulationJob is the persisted record of an asynchronous run request.
// Timestamps are RFC3339 in UTC. Artifacts maps artifact names to paths
// relative to the job directory.
type SimulationJob struct {
	JobID          string                   `json:"job_id"`
	Status         JobStatus                `json:"status"`
	CreatedAt      string                   `json:"created_at"`
	StartedAt      string                   `json:"started_at,omitempty"`
	CompletedAt    string                   `json:"completed_at,omitempty"`
	Config         *config.SimulationConfig `json:"config"`
	Result         *Result                  `json:"result,omitempty"`
	Artifacts      map[string]string        `json:"artifacts,omitempty"`
	ErrorMessage   string                   `json:"error_message,omitempty"`
	CallbackURL    string                   `json:"callback_url,omitempty"`
	CallbackSecret string                   `json:"callback_secret,omitempty"`
}
