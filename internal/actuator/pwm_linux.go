//go:build linux

package actuator

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
)

var pwmSysfsBase = "/sys/class/pwm"

// sysfsPWM drives a hardware PWM channel via /sys/class/pwm. On a Raspberry
// Pi this needs a pwm overlay so the fan header GPIO is exposed as channel 0
// of a pwmchip.
type sysfsPWM struct {
	pwmPath  string
	periodNS uint64
	enabled  bool
}

// OpenPWM exports channel 0 of the first usable pwmchip and programs the
// carrier frequency (25 kHz for a standard 4-wire fan).
func OpenPWM(frequencyHz int) (Output, error) {
	errFactory := errors.New()

	if frequencyHz <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "pwm frequency must be positive")
	}

	chipPath, err := findPWMChip()
	if err != nil {
		return nil, err
	}

	d := &sysfsPWM{pwmPath: filepath.Join(chipPath, "pwm0")}
	if err := d.ensureExported(chipPath); err != nil {
		return nil, err
	}

	_ = d.writeBool("enable", false)

	d.periodNS = uint64(1_000_000_000 / frequencyHz)
	if err := d.writeUint("period", d.periodNS); err != nil {
		return nil, errFactory.Wrap(ErrPWMWrite, err)
	}

	logger.Debug().Str("chip", chipPath).Int("frequency_hz", frequencyHz).Msg("PWM channel exported")

	return d, nil
}

func findPWMChip() (string, error) {
	errFactory := errors.New()

	entries, err := os.ReadDir(pwmSysfsBase)
	if err != nil {
		return "", errFactory.Wrap(ErrNoPWMChip, err)
	}

	// Prefer pwmchip0, the common mapping for the fan header overlay.
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "pwmchip") {
			names = append(names, e.Name())
		}
	}
	for _, preferred := range []string{"pwmchip0", "pwmchip1"} {
		for _, name := range names {
			if name == preferred {
				names = append([]string{name}, names...)
				break
			}
		}
	}

	for _, name := range names {
		chip := filepath.Join(pwmSysfsBase, name)
		if n, err := readInt(filepath.Join(chip, "npwm")); err == nil && n > 0 {
			return chip, nil
		}
	}

	return "", errFactory.WithMessage(ErrNoPWMChip, "no usable sysfs pwmchip (is the pwm overlay enabled?)")
}

func (d *sysfsPWM) ensureExported(chipPath string) error {
	errFactory := errors.New()

	if _, err := os.Stat(d.pwmPath); err == nil {
		return nil
	}

	if err := writeSysfs(filepath.Join(chipPath, "export"), "0"); err != nil {
		if _, statErr := os.Stat(d.pwmPath); statErr == nil {
			return nil
		}
		return errFactory.Wrap(ErrPWMWrite, err)
	}

	// The node and its udev permissions can lag the export briefly.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(d.pwmPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	_, err := os.Stat(d.pwmPath)
	if err != nil {
		return errFactory.Wrap(ErrPWMWrite, err)
	}

	return nil
}

func (d *sysfsPWM) WriteDutyPercent(fanIndex int, percent uint8) error {
	errFactory := errors.New()

	if fanIndex != 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, fmt.Sprintf("fan %d not wired", fanIndex))
	}
	if percent > 100 {
		return errFactory.WithData(ErrBadPercent, percent)
	}

	duty := uint64(math.Round(float64(d.periodNS) * float64(percent) / 100.0))
	if err := d.writeUint("duty_cycle", duty); err != nil {
		return errFactory.Wrap(ErrPWMWrite, err)
	}

	if !d.enabled {
		if err := d.writeBool("enable", true); err != nil {
			return errFactory.Wrap(ErrPWMWrite, err)
		}
		d.enabled = true
	}

	return nil
}

// Close parks the fan at full duty before disabling the channel, the safe
// failure posture for an unattended purifier.
func (d *sysfsPWM) Close() error {
	_ = d.WriteDutyPercent(0, 100)
	err := d.writeBool("enable", false)
	d.enabled = false
	return err
}

func (d *sysfsPWM) writeUint(name string, v uint64) error {
	return writeSysfs(filepath.Join(d.pwmPath, name), strconv.FormatUint(v, 10))
}

func (d *sysfsPWM) writeBool(name string, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return writeSysfs(filepath.Join(d.pwmPath, name), val)
}

func writeSysfs(path, value string) error {
	// O_WRONLY without truncation flags: some sysfs attributes reject
	// O_TRUNC at open() time even when writes are permitted.
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(value)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}
