//go:build !linux

package actuator

import "github.com/regisgambiza/Smart-Air-Purifier/internal/errors"

func OpenPWM(frequencyHz int) (Output, error) {
	return nil, errors.New().WithMessage(ErrNoPWMChip, "pwm unsupported on this platform")
}

func OpenGPIO(chip string, offset int) (Output, error) {
	return nil, errors.New().WithMessage(ErrGPIOOpen, "gpio unsupported on this platform")
}
