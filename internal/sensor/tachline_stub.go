//go:build !linux

package sensor

import "github.com/regisgambiza/Smart-Air-Purifier/internal/errors"

const ErrTachLine = errors.ErrorCode("sensor_tach_line_failed")

// TachLine is unavailable without the Linux GPIO character device.
type TachLine struct{}

func OpenTachLine(chip string, offset int, onEdge func(nowMicros uint32)) (*TachLine, error) {
	return nil, errors.New().WithMessage(ErrTachLine, "gpio unsupported on this platform")
}

func (t *TachLine) Close() error { return nil }
