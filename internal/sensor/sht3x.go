package sensor

import "github.com/regisgambiza/Smart-Air-Purifier/internal/errors"

const (
	ErrBusOpen     = errors.ErrorCode("sensor_i2c_open_failed")
	ErrMeasurement = errors.ErrorCode("sensor_i2c_measurement_failed")
)

// crc8 is the SHT3x checksum: polynomial 0x31, init 0xFF, applied per
// 16-bit word on the wire.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// convertSHT3x decodes a 6-byte single-shot measurement frame into Celsius
// and relative humidity, rejecting frames with bad checksums.
func convertSHT3x(frame []byte) (temperature, humidity Reading) {
	if len(frame) != 6 {
		return Invalid(), Invalid()
	}
	if crc8(frame[0:2]) != frame[2] || crc8(frame[3:5]) != frame[5] {
		return Invalid(), Invalid()
	}

	rawT := uint16(frame[0])<<8 | uint16(frame[1])
	rawH := uint16(frame[3])<<8 | uint16(frame[4])

	t := -45.0 + 175.0*float64(rawT)/65535.0
	h := 100.0 * float64(rawH) / 65535.0

	return Temperature(t), Humidity(h)
}
