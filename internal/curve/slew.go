package curve

import "github.com/regisgambiza/Smart-Air-Purifier/internal/profile"

// snapBand is the error magnitude below which the limiter snaps straight to
// the target instead of stepping, so rounding can never leave the output
// oscillating around it.
const snapBand = 2

// Slew bounds the per-tick change of the applied fan speed. The accumulator
// persists across ticks and is resynchronized whenever an automatic mode
// resumes or the profile changes.
type Slew struct {
	applied uint8
}

// Sync resets the accumulator to the currently applied speed, clamped to the
// active profile's bounds, so automatic control resumes without a jump.
func (s *Slew) Sync(applied uint8, p profile.Profile) {
	s.applied = uint8(clampInt(int(applied), int(p.MinSpeed), int(p.MaxSpeed)))
}

// Advance moves the accumulator toward target by at most p.Step percentage
// points and returns the new applied speed, always within the profile bounds.
func (s *Slew) Advance(target uint8, p profile.Profile) uint8 {
	err := int(target) - int(s.applied)

	next := int(target)
	if err >= snapBand || err <= -snapBand {
		next = int(s.applied) + clampInt(err, -int(p.Step), int(p.Step))
	}

	s.applied = uint8(clampInt(next, int(p.MinSpeed), int(p.MaxSpeed)))

	return s.applied
}

// Value returns the accumulator without advancing it.
func (s *Slew) Value() uint8 {
	return s.applied
}
