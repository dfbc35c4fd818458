package simd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

func sampleResult() *models.Result {
	cfg := config.Default()
	cfg.RunID = "artifact-test"
	return &models.Result{
		Success:              true,
		RunID:                "artifact-test",
		Config:               cfg,
		ExecutionTimeSeconds: 0.123,
		Metrics: &models.Metrics{
			TotalEvents:            100,
			TotalIntruders:         30,
			TotalNoise:             70,
			TotalDetections:        40,
			UniqueDetections:       32,
			TruePositives:          27,
			FalsePositives:         5,
			FalsePositiveRate:      0.0714,
			DetectionRate:          0.9,
			MeanLatencySeconds:     0.4321,
			MaxLatencySeconds:      1.25,
			P95LatencySeconds:      0.98,
			MeanP2PMessages:        1.5,
			TotalP2PMessages:       12,
			DetectionsDuringOutage: 3,
			OutageDetectionRate:    0.0938,
			Latencies:              []float64{0.4, 0.5},
			P2PMessagesList:        []int{1, 2},
		},
		Baseline: &models.Baseline{
			DetectionRate:     0.82,
			FalsePositiveRate: 0.42,
			TotalDetections:   55,
		},
		Topology: &models.TopologySummary{TotalNodes: 16, OuterNodes: 8, InnerNodes: 8},
	}
}

func readArtifact(t *testing.T, dir, name string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Reading %s failed: %v", name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Decoding %s failed: %v", name, err)
	}
	return doc
}

func section(t *testing.T, doc map[string]any, name string) map[string]any {
	t.Helper()
	sec, ok := doc[name].(map[string]any)
	if !ok {
		t.Fatalf("Expected %s to be an object, got %T", name, doc[name])
	}
	return sec
}

func TestWriteArtifactsCreatesThreeFiles(t *testing.T) {
	dir := t.TempDir()

	artifacts, err := WriteArtifacts(sampleResult(), dir)
	if err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}

	if len(artifacts) != 3 {
		t.Errorf("Expected 3 artifacts, got %d", len(artifacts))
	}
	for _, name := range []string{"input.json", "metrics.json", "summary.json"} {
		if artifacts[name] != name {
			t.Errorf("Expected artifact index entry for %s, got %q", name, artifacts[name])
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s on disk: %v", name, err)
		}
	}
}

func TestInputArtifactEchoesConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifacts(sampleResult(), dir); err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}

	doc := readArtifact(t, dir, "input.json")
	if doc["run_id"] != "artifact-test" {
		t.Errorf("Expected run_id in input echo, got %v", doc["run_id"])
	}
	sim := section(t, doc, "simulation")
	if sim["event_count"] != float64(config.Default().Simulation.EventCount) {
		t.Errorf("Expected default event_count, got %v", sim["event_count"])
	}
}

func TestMetricsArtifactExcludesRawLists(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifacts(sampleResult(), dir); err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}

	doc := readArtifact(t, dir, "metrics.json")

	if doc["run_id"] != "artifact-test" {
		t.Errorf("Expected run_id artifact-test, got %v", doc["run_id"])
	}
	if doc["execution_time_seconds"] != 0.123 {
		t.Errorf("Expected execution time 0.123, got %v", doc["execution_time_seconds"])
	}
	if doc["detection_rate"] != 0.9 {
		t.Errorf("Expected detection_rate 0.9, got %v", doc["detection_rate"])
	}
	if doc["total_events"] != float64(100) {
		t.Errorf("Expected total_events 100, got %v", doc["total_events"])
	}

	ts, ok := doc["timestamp"].(string)
	if !ok {
		t.Fatalf("Expected timestamp string, got %T", doc["timestamp"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("Timestamp is not RFC3339: %v", err)
	}

	for _, absent := range []string{"latencies", "p2p_messages_list"} {
		if _, found := doc[absent]; found {
			t.Errorf("Expected %s to be excluded from metrics.json", absent)
		}
	}
}

func TestSummaryArtifactFormatting(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifacts(sampleResult(), dir); err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}

	doc := readArtifact(t, dir, "summary.json")

	perf := section(t, doc, "detection_performance")
	if perf["detection_rate"] != "90.00%" {
		t.Errorf("Expected detection_rate 90.00%%, got %v", perf["detection_rate"])
	}
	if perf["false_positive_rate"] != "7.14%" {
		t.Errorf("Expected false_positive_rate 7.14%%, got %v", perf["false_positive_rate"])
	}
	if perf["true_positives"] != float64(27) {
		t.Errorf("Expected 27 true positives, got %v", perf["true_positives"])
	}

	lat := section(t, doc, "latency_performance")
	if lat["mean_latency"] != "0.432s" {
		t.Errorf("Expected mean_latency 0.432s, got %v", lat["mean_latency"])
	}
	if lat["max_latency"] != "1.250s" {
		t.Errorf("Expected max_latency 1.250s, got %v", lat["max_latency"])
	}

	comm := section(t, doc, "communication_overhead")
	if comm["mean_p2p_per_event"] != "1.50" {
		t.Errorf("Expected mean_p2p_per_event 1.50, got %v", comm["mean_p2p_per_event"])
	}
	if comm["total_p2p_messages"] != float64(12) {
		t.Errorf("Expected 12 total p2p messages, got %v", comm["total_p2p_messages"])
	}

	gw := section(t, doc, "gateway_reliability")
	if gw["outage_rate"] != "9.38%" {
		t.Errorf("Expected outage_rate 9.38%%, got %v", gw["outage_rate"])
	}

	cmp := section(t, doc, "comparison_to_baseline")
	if cmp["baseline_fpr"] != "42.00%" {
		t.Errorf("Expected baseline_fpr 42.00%%, got %v", cmp["baseline_fpr"])
	}
	if cmp["fpr_reduction"] != "34.86%" {
		t.Errorf("Expected fpr_reduction 34.86%%, got %v", cmp["fpr_reduction"])
	}
	if cmp["detection_rate_change"] != "+8.00%" {
		t.Errorf("Expected detection_rate_change +8.00%%, got %v", cmp["detection_rate_change"])
	}

	events := section(t, doc, "event_summary")
	if events["total_events"] != float64(100) {
		t.Errorf("Expected 100 total events, got %v", events["total_events"])
	}
}

func TestSummaryConclusion(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifacts(sampleResult(), dir); err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}

	doc := readArtifact(t, dir, "summary.json")
	text, ok := doc["conclusion"].(string)
	if !ok {
		t.Fatalf("Expected conclusion string, got %T", doc["conclusion"])
	}

	if !strings.Contains(text, "achieved good performance") {
		t.Errorf("Expected good quality tier, got %q", text)
	}
	if !strings.Contains(text, "90.0% detection rate") {
		t.Errorf("Expected detection rate phrase, got %q", text)
	}
	if !strings.Contains(text, "reduced by 83%") {
		t.Errorf("Expected FPR reduction phrase, got %q", text)
	}
}

func TestConclusionQualityTiers(t *testing.T) {
	cases := []struct {
		name    string
		dr      float64
		fpr     float64
		quality string
	}{
		{"excellent", 0.95, 0.03, "excellent"},
		{"good", 0.85, 0.08, "good"},
		{"acceptable", 0.75, 0.30, "acceptable"},
		{"poor", 0.50, 0.40, "needs improvement"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &models.Metrics{DetectionRate: tc.dr, FalsePositiveRate: tc.fpr}
			b := &models.Baseline{DetectionRate: 0.8, FalsePositiveRate: 0.4}
			text := conclusion(m, b)
			if !strings.Contains(text, "achieved "+tc.quality+" performance") {
				t.Errorf("Expected quality %q, got %q", tc.quality, text)
			}
		})
	}
}

func TestConclusionZeroBaselineFPR(t *testing.T) {
	m := &models.Metrics{DetectionRate: 0.9, FalsePositiveRate: 0.0}
	b := &models.Baseline{DetectionRate: 0.9, FalsePositiveRate: 0.0}

	text := conclusion(m, b)
	if !strings.Contains(text, "reduced by 0%") {
		t.Errorf("Expected zero reduction with clean baseline, got %q", text)
	}
}
