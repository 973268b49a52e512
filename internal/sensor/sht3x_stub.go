//go:build !linux

package sensor

import "github.com/regisgambiza/Smart-Air-Purifier/internal/errors"

// SHT3x is unavailable without the Linux I2C character device.
type SHT3x struct{}

func NewSHT3x(bus string, addr int) (*SHT3x, error) {
	return &SHT3x{}, errors.New().WithMessage(ErrBusOpen, "i2c unsupported on this platform")
}

func (*SHT3x) Online() bool { return false }

func (*SHT3x) ReadClimate() (Reading, Reading) {
	return Invalid(), Invalid()
}

func (*SHT3x) Close() error { return nil }
