package sensor

// Physical plausibility bounds. Readings outside these ranges are reported
// as invalid rather than passed through as numbers.
const (
	MinTemperatureC = -40.0
	MaxTemperatureC = 125.0
	MinHumidityPct  = 0.0
	MaxHumidityPct  = 100.0
)

// Reading is a single measurement with an explicit validity flag. Invalid
// readings carry no meaningful value; consumers must check Valid instead of
// relying on a numeric sentinel.
type Reading struct {
	Value float64
	Valid bool
}

// Invalid returns an absent or failed reading.
func Invalid() Reading {
	return Reading{}
}

// Temperature wraps a Celsius value, invalidating it when physically
// implausible.
func Temperature(v float64) Reading {
	if v < MinTemperatureC || v > MaxTemperatureC {
		return Invalid()
	}
	return Reading{Value: v, Valid: true}
}

// Humidity wraps a relative humidity percentage, invalidating it when
// physically implausible.
func Humidity(v float64) Reading {
	if v < MinHumidityPct || v > MaxHumidityPct {
		return Invalid()
	}
	return Reading{Value: v, Valid: true}
}

// TemperatureSource is the primary probe. It is always attemptable; a failed
// read surfaces as an invalid reading, never an error.
type TemperatureSource interface {
	ReadTemperature() Reading
}

// ClimateSource is the secondary high-accuracy temperature and humidity
// sensor. It may be absent; Online reports whether it responded at setup.
type ClimateSource interface {
	Online() bool
	ReadClimate() (temperature, humidity Reading)
}

// Offline is a ClimateSource placeholder for builds or deployments without
// the secondary sensor.
type Offline struct{}

func (Offline) Online() bool { return false }

func (Offline) ReadClimate() (Reading, Reading) {
	return Invalid(), Invalid()
}
