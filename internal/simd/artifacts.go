package simd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

// WriteArtifacts renders a successful run's result into the job directory:
// input.json echoes the effective config, metrics.json carries the metric
// scalars, and summary.json is the human-readable report. It returns the
// artifact index for the job record.
func WriteArtifacts(result *models.Result, dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	artifacts := map[string]string{}

	if err := writeJSONFile(filepath.Join(dir, "input.json"), result.Config); err != nil {
		return nil, err
	}
	artifacts["input.json"] = "input.json"

	if err := writeJSONFile(filepath.Join(dir, "metrics.json"), metricsArtifact(result)); err != nil {
		return nil, err
	}
	artifacts["metrics.json"] = "metrics.json"

	if err := writeJSONFile(filepath.Join(dir, "summary.json"), summaryArtifact(result)); err != nil {
		return nil, err
	}
	artifacts["summary.json"] = "summary.json"

	return artifacts, nil
}

// metricsArtifact flattens the run's metric scalars; the raw latency and
// message lists stay out of the artifact to keep it small.
func metricsArtifact(result *models.Result) map[string]any {
	m := result.Metrics
	return map[string]any{
		"run_id":                   result.RunID,
		"timestamp":                time.Now().UTC().Format(time.RFC3339),
		"execution_time_seconds":   result.ExecutionTimeSeconds,
		"total_events":             m.TotalEvents,
		"total_intruders":          m.TotalIntruders,
		"total_noise":              m.TotalNoise,
		"total_detections":         m.TotalDetections,
		"unique_detections":        m.UniqueDetections,
		"true_positives":           m.TruePositives,
		"false_positives":          m.FalsePositives,
		"false_positive_rate":      m.FalsePositiveRate,
		"detection_rate":           m.DetectionRate,
		"mean_latency_seconds":     m.MeanLatencySeconds,
		"max_latency_seconds":      m.MaxLatencySeconds,
		"p95_latency_seconds":      m.P95LatencySeconds,
		"mean_p2p_messages":        m.MeanP2PMessages,
		"total_p2p_messages":       m.TotalP2PMessages,
		"detections_during_outage": m.DetectionsDuringOutage,
		"outage_detection_rate":    m.OutageDetectionRate,
	}
}

// summaryArtifact builds the human-readable summary with pre-formatted
// percentages and the overall conclusion.
func summaryArtifact(result *models.Result) map[string]any {
	m := result.Metrics
	b := result.Baseline

	fprReduction := b.FalsePositiveRate - m.FalsePositiveRate
	drChange := m.DetectionRate - b.DetectionRate

	return map[string]any{
		"run_id": result.RunID,
		"status": "completed",
		"event_summary": map[string]any{
			"total_events":    m.TotalEvents,
			"intruder_events": m.TotalIntruders,
			"noise_events":    m.TotalNoise,
		},
		"detection_performance": map[string]any{
			"detection_rate":      formatPercent(m.DetectionRate, 2),
			"false_positive_rate": formatPercent(m.FalsePositiveRate, 2),
			"true_positives":      m.TruePositives,
			"false_positives":     m.FalsePositives,
		},
		"latency_performance": map[string]any{
			"mean_latency": fmt.Sprintf("%.3fs", m.MeanLatencySeconds),
			"max_latency":  fmt.Sprintf("%.3fs", m.MaxLatencySeconds),
			"p95_latency":  fmt.Sprintf("%.3fs", m.P95LatencySeconds),
		},
		"communication_overhead": map[string]any{
			"total_p2p_messages": m.TotalP2PMessages,
			"mean_p2p_per_event": fmt.Sprintf("%.2f", m.MeanP2PMessages),
		},
		"gateway_reliability": map[string]any{
			"detections_during_outage": m.DetectionsDuringOutage,
			"outage_rate":              formatPercent(m.OutageDetectionRate, 2),
		},
		"comparison_to_baseline": map[string]any{
			"baseline_detection_rate": formatPercent(b.DetectionRate, 2),
			"baseline_fpr":            formatPercent(b.FalsePositiveRate, 2),
			"fpr_reduction":           formatPercent(fprReduction, 2),
			"detection_rate_change":   fmt.Sprintf("%+.2f%%", drChange*100),
		},
		"conclusion": conclusion(m, b),
	}
}

// conclusion grades the run and phrases the verdict in one sentence
func conclusion(m *models.Metrics, b *models.Baseline) string {
	dr := m.DetectionRate
	fpr := m.FalsePositiveRate

	var quality string
	switch {
	case dr >= 0.90 && fpr <= 0.05:
		quality = "excellent"
	case dr >= 0.80 && fpr <= 0.10:
		quality = "good"
	case dr >= 0.70:
		quality = "acceptable"
	default:
		quality = "needs improvement"
	}

	fprImprovement := 0.0
	if b.FalsePositiveRate > 0 {
		fprImprovement = (b.FalsePositiveRate - fpr) / b.FalsePositiveRate * 100
	}

	return fmt.Sprintf(
		"The cascaded detection system achieved %s performance with %.1f%% detection rate "+
			"and %.1f%% false positive rate. Compared to the PIR-only baseline, "+
			"false positives were reduced by %.0f%%.",
		quality, dr*100, fpr*100, fprImprovement)
}

func formatPercent(v float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, v*100)
}

func writeJSONFile(path string, data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
