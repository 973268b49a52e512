package curve

import (
	"math"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/profile"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/sensor"
)

// Variant selects the posture an automatic mode runs the curve at.
type Variant uint8

const (
	// Classic is the plain environmental curve.
	Classic Variant = iota
	// Assist biases the risk upward and adds a small output offset, a
	// deliberately more aggressive posture than Classic.
	Assist
)

const (
	// Neutral substitutes when a reading is absent or invalid.
	neutralTemperatureC = 27.0
	neutralHumidityRisk = 0.35

	// Temperature risk ramps from the baseline and saturates 10 C above it.
	tempRiskBaseC = 24.0
	tempRiskSpanC = 10.0

	// Humidity risk ramps from 45 %RH and saturates 30 points above.
	humidityRiskBasePct = 45.0
	humidityRiskSpanPct = 30.0

	// Temperature dominates the blended risk.
	tempWeight     = 0.75
	humidityWeight = 0.25

	assistRiskBias    = 0.08
	assistSpeedOffset = 4
)

// TargetSpeed maps the environment onto a duty-cycle percentage within the
// profile's speed bounds. Pure function of its inputs: missing readings fall
// back to neutral defaults, so it always produces an in-range value.
func TargetSpeed(temperature, humidity sensor.Reading, v Variant, p profile.Profile) uint8 {
	temp := neutralTemperatureC
	if temperature.Valid {
		temp = temperature.Value
	}

	tempRisk := clampUnit((temp - tempRiskBaseC) / tempRiskSpanC)

	humidityRisk := neutralHumidityRisk
	if humidity.Valid {
		humidityRisk = clampUnit((humidity.Value - humidityRiskBasePct) / humidityRiskSpanPct)
	}

	risk := clampUnit(tempWeight*tempRisk + humidityWeight*humidityRisk)
	if v == Assist {
		risk = clampUnit(risk + assistRiskBias)
	}

	shaped := math.Pow(risk, p.Shape)

	span := float64(p.MaxSpeed) - float64(p.MinSpeed)
	target := int(math.Round(float64(p.MinSpeed) + shaped*span))
	if v == Assist {
		target += assistSpeedOffset
	}

	return uint8(clampInt(target, int(p.MinSpeed), int(p.MaxSpeed)))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
