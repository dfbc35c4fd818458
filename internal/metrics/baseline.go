package metrics

import (
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// The baseline strategy reports on any confidence strictly above this,
// with no verification tier and no tuned thresholds.
const naiveThreshold = 0.50

// ComputeBaseline scores the naive single-camera strategy against the same
// event log the real run saw: one confidence draw per event, report whenever
// it clears the fixed threshold. The caller passes a freshly seeded rng so
// the baseline is reproducible and does not disturb the run's draw sequence.
func ComputeBaseline(events []*models.SensorEvent, cfg *config.SimulationConfig, rng *utils.RandSource) *models.Baseline {
	totalIntruders := 0
	truePositives := 0
	totalDetections := 0

	for _, e := range events {
		var conf float64
		if e.IsIntruder() {
			totalIntruders++
			conf = rng.NormFloat64(cfg.ImageModel.BoarConfidenceMean, cfg.ImageModel.BoarConfidenceStd)
		} else {
			conf = rng.NormFloat64(cfg.ImageModel.NoiseConfidenceMean, cfg.ImageModel.NoiseConfidenceStd)
		}
		conf = utils.ClampFloat64(conf, 0, 1)

		if conf > naiveThreshold {
			totalDetections++
			if e.IsIntruder() {
				truePositives++
			}
		}
	}

	totalNoise := len(events) - totalIntruders
	falsePositives := totalDetections - truePositives

	detectionRate := 0.0
	if totalIntruders > 0 {
		detectionRate = float64(truePositives) / float64(totalIntruders)
	}
	fpr := 0.0
	if totalNoise > 0 {
		fpr = float64(falsePositives) / float64(totalNoise)
	}

	return &models.Baseline{
		DetectionRate:     utils.Round(detectionRate, 4),
		FalsePositiveRate: utils.Round(fpr, 4),
		TotalDetections:   totalDetections,
	}
}
