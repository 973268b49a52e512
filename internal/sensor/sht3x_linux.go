//go:build linux

package sensor

import (
	"os"
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
	"golang.org/x/sys/unix"
)

const (
	i2cSlaveIoctl = 0x0703

	// Single-shot measurement, high repeatability, no clock stretching.
	sht3xCmdMSB = 0x24
	sht3xCmdLSB = 0x00

	// High-repeatability conversion takes at most 15 ms per datasheet.
	sht3xMeasureDelay = 20 * time.Millisecond
)

// SHT3x reads temperature and humidity over the I2C character device.
type SHT3x struct {
	file   *os.File
	online bool
}

// NewSHT3x opens the sensor on the given bus (e.g. "/dev/i2c-1") at addr
// (0x44 or 0x45). An unreachable sensor is not fatal: the source is returned
// offline and the engine falls back to the primary probe.
func NewSHT3x(bus string, addr int) (*SHT3x, error) {
	errFactory := errors.New()

	f, err := os.OpenFile(bus, os.O_RDWR, 0)
	if err != nil {
		return &SHT3x{}, errFactory.Wrap(ErrBusOpen, err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlaveIoctl, addr); err != nil {
		f.Close()
		return &SHT3x{}, errFactory.Wrap(ErrBusOpen, err)
	}

	s := &SHT3x{file: f}

	// Probe with one measurement so Online reflects reality from the start.
	if t, _ := s.measure(); t.Valid {
		s.online = true
		logger.Debug().Str("bus", bus).Int("addr", addr).Msg("SHT3x ready")
	} else {
		logger.Warn().Str("bus", bus).Int("addr", addr).Msg("SHT3x not responding")
	}

	return s, nil
}

func (s *SHT3x) Online() bool {
	return s.online
}

func (s *SHT3x) ReadClimate() (Reading, Reading) {
	if s.file == nil {
		return Invalid(), Invalid()
	}

	t, h := s.measure()
	if t.Valid {
		s.online = true
	}

	return t, h
}

func (s *SHT3x) measure() (Reading, Reading) {
	if _, err := s.file.Write([]byte{sht3xCmdMSB, sht3xCmdLSB}); err != nil {
		logger.Debug().Err(err).Msg("SHT3x command write failed")
		return Invalid(), Invalid()
	}

	time.Sleep(sht3xMeasureDelay)

	frame := make([]byte, 6)
	if _, err := s.file.Read(frame); err != nil {
		logger.Debug().Err(err).Msg("SHT3x frame read failed")
		return Invalid(), Invalid()
	}

	return convertSHT3x(frame)
}

// Close releases the bus handle.
func (s *SHT3x) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
