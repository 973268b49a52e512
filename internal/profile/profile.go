package profile

// Profile is an immutable catalog entry bundling the speed bounds and the
// curve/slew tuning constants an operator can select by name.
type Profile struct {
	Key      string
	MinSpeed uint8
	MaxSpeed uint8
	// Shape is the exponent applied to the normalized risk. Values above 1
	// suppress the response to low risk, values below 1 accentuate it.
	Shape float64
	// Step is the maximum speed-percent change allowed per control tick.
	Step uint8

	// Weighting fields reserved for multi-sensor risk blending. Populated per
	// profile but not read by the current risk formula.
	AQIWeight  float64
	PM25Weight float64
	PM10Weight float64
}

// DefaultKey selects the profile active at startup and the fallback when a
// configured key is unknown.
const DefaultKey = "balanced"

var catalog = []Profile{
	{
		Key:      "sleep",
		MinSpeed: 22,
		MaxSpeed: 58,
		Shape:    1.25,
		Step:     5,

		AQIWeight:  0.40,
		PM25Weight: 0.28,
		PM10Weight: 0.18,
	},
	{
		Key:      "quiet",
		MinSpeed: 28,
		MaxSpeed: 82,
		Shape:    1.15,
		Step:     7,

		AQIWeight:  0.40,
		PM25Weight: 0.30,
		PM10Weight: 0.16,
	},
	{
		Key:      "balanced",
		MinSpeed: 50,
		MaxSpeed: 96,
		Shape:    0.75,
		Step:     14,

		AQIWeight:  0.48,
		PM25Weight: 0.32,
		PM10Weight: 0.10,
	},
	{
		Key:      "turbo",
		MinSpeed: 90,
		MaxSpeed: 100,
		Shape:    0.60,
		Step:     20,

		AQIWeight:  0.50,
		PM25Weight: 0.32,
		PM10Weight: 0.10,
	},
}

var byKey = func() map[string]Profile {
	m := make(map[string]Profile, len(catalog))
	for _, p := range catalog {
		m[p.Key] = p
	}
	return m
}()

// Lookup returns the profile for key, reporting whether it exists.
func Lookup(key string) (Profile, bool) {
	p, ok := byKey[key]
	return p, ok
}

// Default returns the startup profile.
func Default() Profile {
	return byKey[DefaultKey]
}

// Keys returns the catalog keys in their canonical order.
func Keys() []string {
	keys := make([]string, len(catalog))
	for i, p := range catalog {
		keys[i] = p.Key
	}
	return keys
}
