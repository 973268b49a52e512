package tach

import (
	"math"
	"time"
)

const (
	// DefaultAlpha weights the newest sample in the exponential moving
	// average. Raw per-tick counts are noisy at low speed; the EMA trades a
	// little responsiveness for stability without unbounded memory.
	DefaultAlpha = 0.35

	// DefaultPulsesPerRev matches the common 2-pulse fan tachometer.
	DefaultPulsesPerRev = 2

	// DefaultMaxValidRPM rejects rate spikes from electrical noise. The fan
	// this was tuned against tops out around 2200 RPM.
	DefaultMaxValidRPM = 2200
)

// Estimator turns drained pulse counts into a smoothed RPM figure.
type Estimator struct {
	alpha        float64
	pulsesPerRev int
	maxValidRPM  int
	filtered     float64
}

func NewEstimator(alpha float64, pulsesPerRev, maxValidRPM int) *Estimator {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	if pulsesPerRev < 1 {
		pulsesPerRev = DefaultPulsesPerRev
	}
	if maxValidRPM < 1 {
		maxValidRPM = DefaultMaxValidRPM
	}
	return &Estimator{
		alpha:        alpha,
		pulsesPerRev: pulsesPerRev,
		maxValidRPM:  maxValidRPM,
	}
}

// Update folds one drained (count, elapsed) sample into the filter and
// returns the rounded RPM estimate. Implausible rates clamp to the valid
// range instead of propagating; a zero or negative interval leaves the
// filter untouched.
func (e *Estimator) Update(count uint32, elapsed time.Duration) int {
	elapsedMs := elapsed.Milliseconds()
	if elapsedMs <= 0 {
		return e.RPM()
	}

	raw := float64(count) * 60000.0 / (float64(elapsedMs) * float64(e.pulsesPerRev))
	if raw > float64(e.maxValidRPM) {
		raw = float64(e.maxValidRPM)
	}

	e.filtered = e.alpha*raw + (1-e.alpha)*e.filtered

	return e.RPM()
}

// RPM returns the current estimate without folding in a new sample.
func (e *Estimator) RPM() int {
	return int(math.Round(e.filtered))
}
