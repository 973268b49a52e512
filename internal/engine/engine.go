package engine

import (
	"strconv"
	"sync"
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/actuator"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/curve"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/profile"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/sensor"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/tach"
)

// Config wires an Engine to its collaborators. Zero values fall back to
// sensible defaults so tests can construct engines tersely.
type Config struct {
	FanIndex int
	Profile  string

	Output    actuator.Output
	Primary   sensor.TemperatureSource
	Secondary sensor.ClimateSource

	Debounce     time.Duration
	Alpha        float64
	PulsesPerRev int
	MaxValidRPM  int

	// Clock overrides time.Now for command timestamps in tests.
	Clock func() time.Time
}

// Engine owns the complete control state for one fan: operating mode, active
// profile, slew accumulator, RPM filter and command telemetry. The tick
// handler and the command handlers are serialized by one mutex; the only
// state shared with the edge-event context is the pulse counter, which
// manages its own handoff.
type Engine struct {
	mu sync.Mutex

	fanIndex int
	mode     ControlMode
	prof     profile.Profile

	applied uint8
	slew    curve.Slew

	counter   *tach.Counter
	estimator *tach.Estimator
	rpm       int

	out       actuator.Output
	primary   sensor.TemperatureSource
	secondary sensor.ClimateSource

	// Raw readings captured on the last tick, surfaced in the snapshot.
	probeTemp   sensor.Reading
	climateTemp sensor.Reading
	humidity    sensor.Reading
	climateOK   bool

	cmdSeq    uint32
	lastCmd   string
	lastCmdAt time.Time

	clock func() time.Time
}

// New creates an engine in ClassicAuto with the configured profile and the
// applied speed parked at the profile minimum. Start issues the first
// actuator command.
func New(cfg Config) *Engine {
	p, ok := profile.Lookup(cfg.Profile)
	if !ok {
		p = profile.Default()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	out := cfg.Output
	if out == nil {
		out = actuator.NewRecorder()
	}

	now := clock()
	e := &Engine{
		fanIndex:  cfg.FanIndex,
		mode:      DefaultMode,
		prof:      p,
		applied:   p.MinSpeed,
		counter:   tach.NewCounter(cfg.Debounce, now),
		estimator: tach.NewEstimator(cfg.Alpha, cfg.PulsesPerRev, cfg.MaxValidRPM),
		out:       out,
		primary:   cfg.Primary,
		secondary: cfg.Secondary,
		lastCmdAt: now,
		clock:     clock,
	}
	e.slew.Sync(e.applied, p)

	return e
}

// Start writes the initial duty so the fan spins from the first moment even
// if the first tick is a full period away.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actuate(e.applied)
}

// OnEdge feeds one tachometer edge to the pulse counter. Safe to call from
// the edge-event goroutine at any rate; it never takes the engine mutex.
func (e *Engine) OnEdge(nowMicros uint32) {
	e.counter.OnEdge(nowMicros)
}

// Tick runs one control cycle: drain pulses, update the RPM estimate, read
// the environment, and in automatic modes advance the applied speed toward
// the curve target. Strictly sequential; ticks never overlap.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	count, elapsed := e.counter.Drain(now)
	e.rpm = e.estimator.Update(count, elapsed)

	if e.primary != nil {
		e.probeTemp = e.primary.ReadTemperature()
	} else {
		e.probeTemp = sensor.Invalid()
	}

	e.climateOK = e.secondary != nil && e.secondary.Online()
	if e.climateOK {
		e.climateTemp, e.humidity = e.secondary.ReadClimate()
	} else {
		e.climateTemp, e.humidity = sensor.Invalid(), sensor.Invalid()
	}

	if !e.mode.Automatic() {
		return
	}

	// Prefer the high-accuracy climate sensor; fall back to the probe.
	controlTemp := e.climateTemp
	if !controlTemp.Valid {
		controlTemp = e.probeTemp
	}

	variant := curve.Classic
	if e.mode == AiAssist {
		variant = curve.Assist
	}

	target := curve.TargetSpeed(controlTemp, e.humidity, variant, e.prof)
	next := e.slew.Advance(target, e.prof)
	if next != e.applied {
		logger.Debug().
			Uint8("from", e.applied).
			Uint8("to", next).
			Uint8("target", target).
			Msg("Fan speed advanced")
	}
	e.actuate(next)
}

// SetMode switches the operating mode. Unrecognized keys fall back to
// ClassicAuto. Entering an automatic mode resynchronizes the slew
// accumulator to the applied speed so control resumes without a jump; the
// applied speed itself only starts moving on the next tick.
func (e *Engine) SetMode(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := ModeFromKey(key)
	if mode.Automatic() {
		e.slew.Sync(e.applied, e.prof)
	}
	e.mode = mode
	e.recordCommand("mode:" + mode.Key())
}

// SetProfile selects a tuning profile. Unknown keys keep the current profile.
// The slew accumulator is resynchronized against the active bounds
// immediately, not at the next tick.
func (e *Engine) SetProfile(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := profile.Lookup(key); ok {
		e.prof = p
	}
	e.slew.Sync(e.applied, e.prof)
	e.recordCommand("profile:" + e.prof.Key)
}

// SetManualSpeed commands a duty percentage directly. Out-of-range input is
// clamped, not rejected. Only actuates in Manual; the value is mirrored into
// the slew accumulator either way so a later return to automatic control
// resumes from it smoothly.
func (e *Engine) SetManualSpeed(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pct := uint8(clampInt(percent, 0, 100))
	if e.mode == Manual {
		e.actuate(pct)
		e.slew.Sync(pct, e.prof)
	}
	e.recordCommand("speed:" + strconv.Itoa(int(pct)))
}

// Toggle flips between Manual and ClassicAuto, matching the single dashboard
// shortcut button. AiAssist toggles to Manual; it is never entered this way.
func (e *Engine) Toggle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == Manual {
		e.slew.Sync(e.applied, e.prof)
		e.mode = ClassicAuto
	} else {
		e.mode = Manual
	}
	e.recordCommand("toggle:" + e.mode.Key())
}

func (e *Engine) actuate(pct uint8) {
	if err := e.out.WriteDutyPercent(e.fanIndex, pct); err != nil {
		// The control loop must survive actuator hiccups.
		logger.Error().Err(err).Uint8("percent", pct).Msg("Duty write failed")
	}
	e.applied = pct
}

// recordCommand bumps the acceptance counter. Called with the mutex held.
// Every accepted command counts, including ones that changed nothing.
func (e *Engine) recordCommand(label string) {
	e.cmdSeq++
	e.lastCmd = label
	e.lastCmdAt = e.clock()
	logger.Info().Str("command", label).Uint32("seq", e.cmdSeq).Msg("Command accepted")
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
