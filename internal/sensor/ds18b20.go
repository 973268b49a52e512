package sensor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
)

const (
	ErrNoProbe = errors.ErrorCode("sensor_w1_probe_not_found")

	w1DevicesDir    = "/sys/bus/w1/devices"
	w1FamilyDS18B20 = "28-"
)

// DS18B20 reads the one-wire temperature probe through the kernel w1 driver.
type DS18B20 struct {
	path string
}

// NewDS18B20 opens the probe with the given device ID (e.g. "28-0316a2c5d1ff").
// An empty ID discovers the first DS18B20 family device on the bus.
func NewDS18B20(deviceID string) (*DS18B20, error) {
	errFactory := errors.New()

	if deviceID == "" {
		entries, err := os.ReadDir(w1DevicesDir)
		if err != nil {
			return nil, errFactory.Wrap(ErrNoProbe, err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), w1FamilyDS18B20) {
				deviceID = e.Name()
				break
			}
		}
		if deviceID == "" {
			return nil, errFactory.WithMessage(ErrNoProbe, "no DS18B20 device on w1 bus")
		}
	}

	d := &DS18B20{path: filepath.Join(w1DevicesDir, deviceID, "w1_slave")}
	logger.Debug().Str("device", deviceID).Msg("DS18B20 probe attached")

	return d, nil
}

// ReadTemperature reads the probe. Bus errors and CRC failures yield an
// invalid reading; the probe is retried naturally on the next tick.
func (d *DS18B20) ReadTemperature() Reading {
	b, err := os.ReadFile(d.path)
	if err != nil {
		logger.Debug().Err(err).Msg("DS18B20 read failed")
		return Invalid()
	}

	v, err := parseW1Slave(string(b))
	if err != nil {
		logger.Debug().Err(err).Msg("DS18B20 parse failed")
		return Invalid()
	}

	return Temperature(v)
}

// parseW1Slave decodes the two-line w1_slave format:
//
//	4b 46 7f ff 0c 10 f4 : crc=f4 YES
//	4b 46 7f ff 0c 10 f4 t=23437
//
// Temperature is reported in milli-degrees C and only trusted when the
// kernel-side CRC check says YES.
func parseW1Slave(s string) (float64, error) {
	errFactory := errors.New()

	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) < 2 {
		return 0, errFactory.WithData(errors.ErrInternal, "short w1_slave payload")
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, errFactory.WithData(errors.ErrInternal, "w1 CRC check failed")
	}

	idx := strings.LastIndex(lines[1], "t=")
	if idx < 0 {
		return 0, errFactory.WithData(errors.ErrInternal, "missing t= field")
	}

	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][idx+2:]))
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrInternal, err)
	}

	return float64(milli) / 1000.0, nil
}
