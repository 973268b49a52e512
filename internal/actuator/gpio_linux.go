//go:build linux

package actuator

import (
	"fmt"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
	"github.com/warthog618/go-gpiocdev"
)

// gpioOutput is the fallback for 2-wire fans switched by a transistor: any
// duty above zero turns the fan on.
type gpioOutput struct {
	line *gpiocdev.Line
}

// OpenGPIO requests the fan GPIO as a digital output.
func OpenGPIO(chip string, offset int) (Output, error) {
	errFactory := errors.New()

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("airpurifierd-fan"))
	if err != nil {
		return nil, errFactory.Wrap(ErrGPIOOpen, err)
	}

	logger.Debug().Str("chip", chip).Int("offset", offset).Msg("Fan GPIO requested (on/off drive)")

	return &gpioOutput{line: line}, nil
}

func (g *gpioOutput) WriteDutyPercent(fanIndex int, percent uint8) error {
	errFactory := errors.New()

	if fanIndex != 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, fmt.Sprintf("fan %d not wired", fanIndex))
	}
	if percent > 100 {
		return errFactory.WithData(ErrBadPercent, percent)
	}

	v := 0
	if percent > 0 {
		v = 1
	}

	if err := g.line.SetValue(v); err != nil {
		return errFactory.Wrap(ErrPWMWrite, err)
	}

	return nil
}

// Close leaves the fan running, the safe posture for an unattended purifier.
func (g *gpioOutput) Close() error {
	_ = g.line.SetValue(1)
	return g.line.Close()
}
