package config

import (
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// SimulationConfig is the complete configuration for a simulation run.
// Zero values are never meaningful here; construct with Default and overlay
// user input on top so omitted fields keep their defaults.
type SimulationConfig struct {
	RunID         string              `json:"run_id" yaml:"run_id"`
	RandomSeed    int64               `json:"random_seed" yaml:"random_seed"`
	Simulation    SimulationParams    `json:"simulation" yaml:"simulation"`
	Topology      TopologyParams      `json:"topology" yaml:"topology"`
	DecisionLogic DecisionLogicParams `json:"decision_logic" yaml:"decision_logic"`
	ImageModel    ImageModelParams    `json:"image_model" yaml:"image_model"`
	Communication CommunicationParams `json:"communication" yaml:"communication"`
	Gateway       GatewayParams       `json:"gateway" yaml:"gateway"`
}

// SimulationParams controls the scope of the generated workload
type SimulationParams struct {
	EventCount          int     `json:"event_count" yaml:"event_count"`
	IntruderProbability float64 `json:"intruder_probability" yaml:"intruder_probability"`
	EventIntervalMean   float64 `json:"event_interval_mean" yaml:"event_interval_mean"`
}

// TopologyParams describes the dual-ring camera deployment around the pen
type TopologyParams struct {
	OuterRingNodes     int     `json:"outer_ring_nodes" yaml:"outer_ring_nodes"`
	InnerRingNodes     int     `json:"inner_ring_nodes" yaml:"inner_ring_nodes"`
	OuterRingRadius    float64 `json:"outer_ring_radius" yaml:"outer_ring_radius"`
	InnerRingRadius    float64 `json:"inner_ring_radius" yaml:"inner_ring_radius"`
	InnerRingOffsetDeg float64 `json:"inner_ring_offset_deg" yaml:"inner_ring_offset_deg"`
	SensorRange        float64 `json:"sensor_range" yaml:"sensor_range"`
	P2PRange           float64 `json:"p2p_range" yaml:"p2p_range"`
}

// DecisionLogicParams holds the confidence thresholds of the node FSM
type DecisionLogicParams struct {
	ConfirmThreshold    float64 `json:"confirm_threshold" yaml:"confirm_threshold"`
	VerifyThreshold     float64 `json:"verify_threshold" yaml:"verify_threshold"`
	VerificationTimeout float64 `json:"verification_timeout" yaml:"verification_timeout"`
}

// ImageModelParams parameterizes the camera confidence distributions
type ImageModelParams struct {
	BoarConfidenceMean  float64 `json:"boar_confidence_mean" yaml:"boar_confidence_mean"`
	BoarConfidenceStd   float64 `json:"boar_confidence_std" yaml:"boar_confidence_std"`
	NoiseConfidenceMean float64 `json:"noise_confidence_mean" yaml:"noise_confidence_mean"`
	NoiseConfidenceStd  float64 `json:"noise_confidence_std" yaml:"noise_confidence_std"`
}

// CommunicationParams is the abstracted P2P radio model (no RF simulation)
type CommunicationParams struct {
	LossBase          float64 `json:"loss_base" yaml:"loss_base"`
	LossPerMeter      float64 `json:"loss_per_meter" yaml:"loss_per_meter"`
	DelayBase         float64 `json:"delay_base" yaml:"delay_base"`
	DelayPerMeter     float64 `json:"delay_per_meter" yaml:"delay_per_meter"`
	DelayJitter       float64 `json:"delay_jitter" yaml:"delay_jitter"`
	MsgSizeVerifyReq  int     `json:"msg_size_verify_req" yaml:"msg_size_verify_req"`
	MsgSizeVerifyResp int     `json:"msg_size_verify_resp" yaml:"msg_size_verify_resp"`
	MsgSizeUplink     int     `json:"msg_size_uplink" yaml:"msg_size_uplink"`
}

// GatewayParams controls the uplink availability process
type GatewayParams struct {
	UpDurationMean   float64 `json:"up_duration_mean" yaml:"up_duration_mean"`
	DownDurationMean float64 `json:"down_duration_mean" yaml:"down_duration_mean"`
}

// Default returns a config populated with the standard deployment parameters:
// 16 cameras in two rings around a 14m pen, LoRa-like link behavior, and a
// gateway that is up 30 minutes for every 5 minutes down.
func Default() *SimulationConfig {
	return &SimulationConfig{
		RunID:      utils.ShortRunID(),
		RandomSeed: 42,
		Simulation: SimulationParams{
			EventCount:          1000,
			IntruderProbability: 0.30,
			EventIntervalMean:   8.0,
		},
		Topology: TopologyParams{
			OuterRingNodes:     8,
			InnerRingNodes:     8,
			OuterRingRadius:    23.0,
			InnerRingRadius:    14.0,
			InnerRingOffsetDeg: 22.5,
			SensorRange:        15.0,
			P2PRange:           30.0,
		},
		DecisionLogic: DecisionLogicParams{
			ConfirmThreshold:    0.80,
			VerifyThreshold:     0.70,
			VerificationTimeout: 3.0,
		},
		ImageModel: ImageModelParams{
			BoarConfidenceMean:  0.85,
			BoarConfidenceStd:   0.08,
			NoiseConfidenceMean: 0.35,
			NoiseConfidenceStd:  0.15,
		},
		Communication: CommunicationParams{
			LossBase:          0.0,
			LossPerMeter:      0.0025,
			DelayBase:         0.1,
			DelayPerMeter:     0.0001,
			DelayJitter:       0.05,
			MsgSizeVerifyReq:  64,
			MsgSizeVerifyResp: 32,
			MsgSizeUplink:     51,
		},
		Gateway: GatewayParams{
			UpDurationMean:   1800.0,
			DownDurationMean: 300.0,
		},
	}
}
