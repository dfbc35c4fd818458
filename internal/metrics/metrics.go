package metrics

import (
	"sort"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// Compute aggregates a finished run's event log and detection log into the
// run metrics. Multiple nodes may report the same event; only the earliest
// report per event counts, so rates measure events found, not reports filed.
func Compute(events []*models.SensorEvent, detections []models.DetectionRecord) *models.Metrics {
	totalIntruders := 0
	for _, e := range events {
		if e.IsIntruder() {
			totalIntruders++
		}
	}
	totalNoise := len(events) - totalIntruders

	// First detection per event wins. The stable sort keeps report order
	// for detections at the same instant.
	byTime := make([]models.DetectionRecord, len(detections))
	copy(byTime, detections)
	sort.SliceStable(byTime, func(i, j int) bool {
		return byTime[i].DetectionTime < byTime[j].DetectionTime
	})

	seen := make(map[int]bool)
	unique := make([]models.DetectionRecord, 0, len(byTime))
	for _, d := range byTime {
		if seen[d.EventID] {
			continue
		}
		seen[d.EventID] = true
		unique = append(unique, d)
	}

	truePositives := 0
	for _, d := range unique {
		if d.IsTruePositive {
			truePositives++
		}
	}
	falsePositives := len(unique) - truePositives

	fpr := 0.0
	if totalNoise > 0 {
		fpr = float64(falsePositives) / float64(totalNoise)
	}
	detectionRate := 0.0
	if totalIntruders > 0 {
		detectionRate = float64(truePositives) / float64(totalIntruders)
	}

	latencies := make([]float64, 0, len(unique))
	for _, d := range unique {
		latencies = append(latencies, d.Latency)
	}
	meanLatency, maxLatency, p95Latency := 0.0, 0.0, 0.0
	if len(latencies) > 0 {
		meanLatency = utils.Mean(latencies)
		for _, v := range latencies {
			maxLatency = utils.MaxFloat64(maxLatency, v)
		}
		p95Latency = utils.P95(latencies)
	}

	// The per-event message list covers only verified detections, but the
	// total counts every message any counted detection cost.
	p2pList := make([]int, 0, len(unique))
	totalP2P := 0
	for _, d := range unique {
		totalP2P += d.P2PMessagesSent
		if d.UsedP2P {
			p2pList = append(p2pList, d.P2PMessagesSent)
		}
	}
	meanP2P := 0.0
	if len(p2pList) > 0 {
		sum := 0
		for _, v := range p2pList {
			sum += v
		}
		meanP2P = float64(sum) / float64(len(p2pList))
	}

	outageCount := 0
	for _, d := range unique {
		if !d.GatewayWasUp {
			outageCount++
		}
	}
	outageRate := 0.0
	if len(unique) > 0 {
		outageRate = float64(outageCount) / float64(len(unique))
	}

	return &models.Metrics{
		TotalEvents:            len(events),
		TotalIntruders:         totalIntruders,
		TotalNoise:             totalNoise,
		TotalDetections:        len(detections),
		UniqueDetections:       len(unique),
		TruePositives:          truePositives,
		FalsePositives:         falsePositives,
		FalsePositiveRate:      utils.Round(fpr, 4),
		DetectionRate:          utils.Round(detectionRate, 4),
		MeanLatencySeconds:     utils.Round(meanLatency, 4),
		MaxLatencySeconds:      utils.Round(maxLatency, 4),
		P95LatencySeconds:      utils.Round(p95Latency, 4),
		MeanP2PMessages:        utils.Round(meanP2P, 2),
		TotalP2PMessages:       totalP2P,
		DetectionsDuringOutage: outageCount,
		OutageDetectionRate:    utils.Round(outageRate, 4),
		Latencies:              latencies,
		P2PMessagesList:        p2pList,
	}
}
