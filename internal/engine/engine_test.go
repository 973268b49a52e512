package engine_test

import (
	"testing"
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/actuator"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/engine"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	reading sensor.Reading
}

func (f *fakeProbe) ReadTemperature() sensor.Reading { return f.reading }

type fakeClimate struct {
	online      bool
	temperature sensor.Reading
	humidity    sensor.Reading
}

func (f *fakeClimate) Online() bool { return f.online }

func (f *fakeClimate) ReadClimate() (sensor.Reading, sensor.Reading) {
	return f.temperature, f.humidity
}

type rig struct {
	eng  *engine.Engine
	out  *actuator.Recorder
	now  time.Time
	sht  *fakeClimate
	ds   *fakeProbe
	step time.Duration
}

func newRig(t *testing.T, profileKey string) *rig {
	t.Helper()

	out := actuator.NewRecorder()
	ds := &fakeProbe{reading: sensor.Temperature(25)}
	sht := &fakeClimate{online: true, temperature: sensor.Temperature(25), humidity: sensor.Humidity(50)}
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	r := &rig{out: out, now: now, sht: sht, ds: ds, step: time.Second}
	r.eng = engine.New(engine.Config{
		Profile:   profileKey,
		Output:    out,
		Primary:   ds,
		Secondary: sht,
		Clock:     func() time.Time { return r.now },
	})
	r.eng.Start()

	return r
}

func (r *rig) tick() {
	r.now = r.now.Add(r.step)
	r.eng.Tick(r.now)
}

func (r *rig) speed() uint8 {
	got, ok := r.out.Last(0)
	if !ok {
		return 0
	}
	return got
}

func TestStartupState(t *testing.T) {
	r := newRig(t, "balanced")

	snap := r.eng.Snapshot(r.now)
	assert.Equal(t, "classic_auto", snap.Mode)
	assert.Equal(t, "Classic Auto", snap.ModeLabel)
	assert.Equal(t, "balanced", snap.Profile)
	assert.Equal(t, uint8(50), snap.SpeedPct, "startup speed is the profile minimum")
	assert.Equal(t, uint8(50), r.speed(), "Start must actuate the initial duty")
	assert.Equal(t, uint32(0), snap.CmdSeq)
}

func TestReferenceTickSequence(t *testing.T) {
	// balanced, ClassicAuto, 34 C / 60 %RH, starting from applied=60:
	// target 92, slew steps 74, 88, 92, then holds.
	r := newRig(t, "balanced")

	r.eng.SetMode("manual")
	r.eng.SetManualSpeed(60)
	r.eng.SetMode("classic_auto")
	require.Equal(t, uint8(60), r.speed())

	r.sht.temperature = sensor.Temperature(34)
	r.sht.humidity = sensor.Humidity(60)

	expected := []uint8{74, 88, 92, 92}
	for i, want := range expected {
		r.tick()
		assert.Equal(t, want, r.speed(), "tick %d", i+1)
	}
}

func TestManualToAutoNoDiscontinuity(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.SetMode("manual")
	r.eng.SetManualSpeed(75)
	require.Equal(t, uint8(75), r.speed())

	// The transition itself must not move the fan.
	r.eng.SetMode("classic_auto")
	assert.Equal(t, uint8(75), r.speed())

	snap := r.eng.Snapshot(r.now)
	assert.Equal(t, uint8(75), snap.SpeedPct)

	// Movement begins on the next tick, bounded by the profile step.
	r.sht.temperature = sensor.Temperature(34)
	r.sht.humidity = sensor.Humidity(60)
	r.tick()
	assert.Equal(t, uint8(89), r.speed(), "one step of 14 from 75")
}

func TestManualSpeedIgnoredOutsideManual(t *testing.T) {
	r := newRig(t, "balanced")

	before := r.speed()
	r.eng.SetManualSpeed(10)
	assert.Equal(t, before, r.speed(), "speed command must not actuate in automatic mode")

	snap := r.eng.Snapshot(r.now)
	assert.Equal(t, uint32(1), snap.CmdSeq, "the command still counts as accepted")
	assert.Equal(t, "speed:10", snap.LastCmd)
}

func TestManualSpeedClampsInput(t *testing.T) {
	r := newRig(t, "balanced")
	r.eng.SetMode("manual")

	r.eng.SetManualSpeed(250)
	assert.Equal(t, uint8(100), r.speed())

	r.eng.SetManualSpeed(-5)
	assert.Equal(t, uint8(0), r.speed())
}

func TestSetProfileResyncsImmediately(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.SetMode("manual")
	r.eng.SetManualSpeed(75)
	r.eng.SetMode("classic_auto")

	// Switching to turbo clamps the accumulator into [90,100] at once. With
	// hot air the target is 100 and the very first tick reaches it from 90;
	// a stale accumulator of 75 would only make 95.
	r.eng.SetProfile("turbo")
	r.sht.temperature = sensor.Temperature(40)
	r.sht.humidity = sensor.Humidity(80)
	r.tick()
	assert.Equal(t, uint8(100), r.speed())
}

func TestSetProfileUnknownKeepsCurrent(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.SetProfile("ludicrous")
	snap := r.eng.Snapshot(r.now)
	assert.Equal(t, "balanced", snap.Profile)
	assert.Equal(t, uint32(1), snap.CmdSeq, "unknown profile is still an accepted command")
}

func TestSetModeUnknownFallsBackToClassic(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.SetMode("manual")
	r.eng.SetMode("warp9")
	snap := r.eng.Snapshot(r.now)
	assert.Equal(t, "classic_auto", snap.Mode)
}

func TestToggleFlipsManualClassicOnly(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.Toggle()
	assert.Equal(t, "manual", r.eng.Snapshot(r.now).Mode)

	r.eng.Toggle()
	assert.Equal(t, "classic_auto", r.eng.Snapshot(r.now).Mode)

	// AiAssist drops to Manual; Toggle can never reach AiAssist.
	r.eng.SetMode("ai_assist")
	r.eng.Toggle()
	assert.Equal(t, "manual", r.eng.Snapshot(r.now).Mode)
	r.eng.Toggle()
	assert.Equal(t, "classic_auto", r.eng.Snapshot(r.now).Mode)
}

func TestAiAssistRunsHotterThanClassic(t *testing.T) {
	classic := newRig(t, "balanced")
	assist := newRig(t, "balanced")

	for _, r := range []*rig{classic, assist} {
		r.sht.temperature = sensor.Temperature(30)
		r.sht.humidity = sensor.Humidity(55)
	}
	assist.eng.SetMode("ai_assist")

	for i := 0; i < 10; i++ {
		classic.tick()
		assist.tick()
	}

	assert.Greater(t, assist.speed(), classic.speed())
}

func TestSecondarySensorPreferredAndFallsBack(t *testing.T) {
	r := newRig(t, "balanced")

	// Hot probe, cool climate sensor: the climate sensor wins.
	r.ds.reading = sensor.Temperature(40)
	r.sht.temperature = sensor.Temperature(20)
	r.sht.humidity = sensor.Humidity(30)
	for i := 0; i < 10; i++ {
		r.tick()
	}
	coolSpeed := r.speed()

	// Climate sensor offline: control falls back to the probe and ramps up.
	r.sht.online = false
	for i := 0; i < 10; i++ {
		r.tick()
	}
	assert.Greater(t, r.speed(), coolSpeed)
}

func TestAllSensorsInvalidUsesNeutralDefaults(t *testing.T) {
	r := newRig(t, "balanced")

	r.ds.reading = sensor.Invalid()
	r.sht.online = false
	for i := 0; i < 12; i++ {
		r.tick()
	}

	// Neutral defaults: risk 0.3125, shaped by 0.75, target 69 for balanced.
	assert.Equal(t, uint8(69), r.speed())

	snap := r.eng.Snapshot(r.now)
	assert.Nil(t, snap.TempC, "invalid readings must serialize as unknown")
	assert.Nil(t, snap.HumidityPct)
	assert.Nil(t, snap.ProbeTempC)
	assert.False(t, snap.SHTOnline)
}

func TestCommandTelemetry(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.SetMode("manual")
	r.now = r.now.Add(500 * time.Millisecond)
	r.eng.SetManualSpeed(40)
	r.eng.SetProfile("quiet")
	r.eng.Toggle()

	r.now = r.now.Add(1500 * time.Millisecond)
	snap := r.eng.Snapshot(r.now)
	assert.Equal(t, uint32(4), snap.CmdSeq, "every accepted command increments the sequence")
	assert.Equal(t, "toggle:classic_auto", snap.LastCmd)
	assert.Equal(t, int64(1500), snap.CmdAgeMs)
}

func TestRPMPipelineThroughTicks(t *testing.T) {
	r := newRig(t, "balanced")

	// 40 debounced edges per second at 2 pulses/rev is 1200 RPM.
	for tick := 0; tick < 30; tick++ {
		base := uint32(tick) * 1_000_000
		for i := uint32(0); i < 40; i++ {
			r.eng.OnEdge(base + i*25_000)
		}
		r.tick()
	}

	snap := r.eng.Snapshot(r.now)
	assert.InDelta(t, 1200, snap.RPM, 2)
}

func TestManualTickLeavesSpeedAlone(t *testing.T) {
	r := newRig(t, "balanced")

	r.eng.SetMode("manual")
	r.eng.SetManualSpeed(33)

	r.sht.temperature = sensor.Temperature(40)
	for i := 0; i < 5; i++ {
		r.tick()
	}
	assert.Equal(t, uint8(33), r.speed(), "manual mode must not run the automatic pipeline")
}
