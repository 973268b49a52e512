//go:build linux

package sensor

import (
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
	"github.com/warthog618/go-gpiocdev"
)

const ErrTachLine = errors.ErrorCode("sensor_tach_line_failed")

// TachLine subscribes to falling edges on the fan tachometer GPIO and feeds
// them to the pulse counter. The handler runs on the gpiocdev event
// goroutine, so onEdge must stay short and non-blocking.
type TachLine struct {
	line *gpiocdev.Line
}

// OpenTachLine requests the tachometer GPIO with falling-edge detection.
// onEdge receives the kernel event timestamp truncated to the microsecond
// domain the debounce window operates in.
func OpenTachLine(chip string, offset int, onEdge func(nowMicros uint32)) (*TachLine, error) {
	errFactory := errors.New()

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithConsumer("airpurifierd-tach"),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			onEdge(uint32(evt.Timestamp / time.Microsecond))
		}))
	if err != nil {
		return nil, errFactory.Wrap(ErrTachLine, err)
	}

	logger.Debug().Str("chip", chip).Int("offset", offset).Msg("Tachometer line requested")

	return &TachLine{line: line}, nil
}

// Close releases the GPIO line.
func (t *TachLine) Close() error {
	if t == nil || t.line == nil {
		return nil
	}
	return t.line.Close()
}
