package actuator

import (
	"sync"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
)

const (
	ErrNoPWMChip  = errors.ErrorCode("actuator_pwm_chip_not_found")
	ErrPWMWrite   = errors.ErrorCode("actuator_pwm_write_failed")
	ErrGPIOOpen   = errors.ErrorCode("actuator_gpio_open_failed")
	ErrBadPercent = errors.ErrorCode("actuator_invalid_percent")
)

// Output commands fan duty cycles. A single fan is wired today, but the
// index keeps the contract ready for more.
type Output interface {
	WriteDutyPercent(fanIndex int, percent uint8) error
	Close() error
}

// Recorder is an in-memory Output for tests and for running the daemon with
// hardware disabled. It remembers the last duty written per fan.
type Recorder struct {
	mu   sync.Mutex
	last map[int]uint8
	log  []uint8
}

func NewRecorder() *Recorder {
	return &Recorder{last: make(map[int]uint8)}
}

func (r *Recorder) WriteDutyPercent(fanIndex int, percent uint8) error {
	if percent > 100 {
		return errors.New().WithData(ErrBadPercent, percent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[fanIndex] = percent
	r.log = append(r.log, percent)

	return nil
}

func (r *Recorder) Close() error { return nil }

// Last returns the most recent duty written for the fan.
func (r *Recorder) Last(fanIndex int) (uint8, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.last[fanIndex]
	return p, ok
}

// History returns every duty written, in order.
func (r *Recorder) History() []uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint8, len(r.log))
	copy(out, r.log)
	return out
}
