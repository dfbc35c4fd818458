package netsim

import (
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// Analyzer abstracts the on-node image classifier. Instead of running a CNN,
// it draws a confidence from the empirical distribution for what the camera
// is actually looking at: boars score high, rustling bushes score low.
type Analyzer struct {
	boarMean  float64
	boarStd   float64
	noiseMean float64
	noiseStd  float64
	rng       *utils.RandSource
}

// NewAnalyzer creates an analyzer using the configured confidence model
func NewAnalyzer(cfg *config.SimulationConfig, rng *utils.RandSource) *Analyzer {
	return &Analyzer{
		boarMean:  cfg.ImageModel.BoarConfidenceMean,
		boarStd:   cfg.ImageModel.BoarConfidenceStd,
		noiseMean: cfg.ImageModel.NoiseConfidenceMean,
		noiseStd:  cfg.ImageModel.NoiseConfidenceStd,
		rng:       rng,
	}
}

// Analyze draws a classification confidence for the given stimulus,
// clamped to [0, 1]. Each call consumes exactly one draw.
func (a *Analyzer) Analyze(kind models.EventKind) float64 {
	var conf float64
	if kind == models.EventIntruder {
		conf = a.rng.NormFloat64(a.boarMean, a.boarStd)
	} else {
		conf = a.rng.NormFloat64(a.noiseMean, a.noiseStd)
	}
	return utils.ClampFloat64(conf, 0.0, 1.0)
}
