package config

// Validate checks the configuration for semantic errors and returns every
// problem found, not just the first. An empty slice means the config is safe
// to simulate.
func (c *SimulationConfig) Validate() []string {
	var errors []string

	if c.Simulation.EventCount < 0 {
		errors = append(errors, "event_count cannot be negative")
	}
	if c.Simulation.EventCount > 100000 {
		errors = append(errors, "event_count cannot exceed 100000")
	}

	if c.Simulation.IntruderProbability < 0 || c.Simulation.IntruderProbability > 1 {
		errors = append(errors, "intruder_probability must be between 0 and 1")
	}

	if c.Simulation.EventIntervalMean <= 0 {
		errors = append(errors, "event_interval_mean must be positive")
	}

	if c.Topology.OuterRingNodes < 1 || c.Topology.InnerRingNodes < 1 {
		errors = append(errors, "Ring nodes must be at least 1")
	}

	if c.Topology.OuterRingRadius <= c.Topology.InnerRingRadius {
		errors = append(errors, "outer_ring_radius must be greater than inner_ring_radius")
	}

	if c.DecisionLogic.ConfirmThreshold < 0 || c.DecisionLogic.ConfirmThreshold > 1 {
		errors = append(errors, "confirm_threshold must be between 0 and 1")
	}

	if c.DecisionLogic.VerifyThreshold < 0 || c.DecisionLogic.VerifyThreshold > 1 {
		errors = append(errors, "verify_threshold must be between 0 and 1")
	}

	if c.DecisionLogic.VerifyThreshold > c.DecisionLogic.ConfirmThreshold {
		errors = append(errors, "verify_threshold should be less than confirm_threshold")
	}

	if c.DecisionLogic.VerificationTimeout <= 0 {
		errors = append(errors, "verification_timeout must be positive")
	}

	if c.Communication.LossBase < 0 || c.Communication.LossBase > 1 {
		errors = append(errors, "loss_base must be between 0 and 1")
	}

	// A non-positive mean would pin the gateway process to a single instant.
	if c.Gateway.UpDurationMean <= 0 || c.Gateway.DownDurationMean <= 0 {
		errors = append(errors, "gateway durations must be positive")
	}

	return errors
}
