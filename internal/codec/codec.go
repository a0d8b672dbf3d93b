// internal/codec/codec.go

// Package codec converts raw Modbus register words into physical values.
// Pure functions only: no IO, no logging.
package codec

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOffset is returned when a decode rule points outside the register slice.
	ErrOffset = errors.New("codec: register offset out of range")

	// ErrScale is returned for a divisor that is not 1, 10, 100 or 1000.
	ErrScale = errors.New("codec: invalid scale")
)

// Scale is a power-of-ten divisor applied to a raw register value.
type Scale int

const (
	Unit  Scale = 1
	Deci  Scale = 10
	Centi Scale = 100
	Milli Scale = 1000
)

// Valid reports whether s is one of the supported divisors.
func (s Scale) Valid() bool {
	switch s {
	case Unit, Deci, Centi, Milli:
		return true
	}
	return false
}

// ScaleFromDecimals maps a decimal count (0..3) to its divisor.
func ScaleFromDecimals(d int) (Scale, error) {
	switch d {
	case 0:
		return Unit, nil
	case 1:
		return Deci, nil
	case 2:
		return Centi, nil
	case 3:
		return Milli, nil
	}
	return 0, fmt.Errorf("%w: decimals=%d", ErrScale, d)
}

// Signed16 reinterprets a register word as two's complement int16.
func Signed16(w uint16) int16 {
	return int16(w)
}

// Combine concatenates two words big-endian (hi first) into a 32-bit value.
func Combine(hi, lo uint16, signed bool) int64 {
	u := uint32(hi)<<16 | uint32(lo)
	if signed {
		return int64(int32(u))
	}
	return int64(u)
}

// Split is the inverse of Combine for values that fit in 32 bits.
func Split(v int64) (hi, lo uint16) {
	u := uint32(v)
	return uint16(u >> 16), uint16(u)
}

// Apply divides a raw integer value by the scale.
func Apply(v int64, s Scale) (float64, error) {
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrScale, int(s))
	}
	return float64(v) / float64(s), nil
}

// Unscale multiplies a decoded value back to its raw integer, rounding to nearest.
func Unscale(f float64, s Scale) int64 {
	return int64(math.Round(f * float64(s)))
}

// Long decodes the 32-bit value held in data[hi] (high word) and data[lo].
// On malformed input it returns 0 and a non-nil error.
func Long(data []uint16, hi, lo int, signed bool, s Scale) (float64, error) {
	if !inRange(data, hi) || !inRange(data, lo) {
		return 0, fmt.Errorf("%w: hi=%d lo=%d len=%d", ErrOffset, hi, lo, len(data))
	}
	return Apply(Combine(data[hi], data[lo], signed), s)
}

// Word decodes the 16-bit value held in data[off].
// On malformed input it returns 0 and a non-nil error.
func Word(data []uint16, off int, signed bool, s Scale) (float64, error) {
	if !inRange(data, off) {
		return 0, fmt.Errorf("%w: off=%d len=%d", ErrOffset, off, len(data))
	}
	v := int64(data[off])
	if signed {
		v = int64(Signed16(data[off]))
	}
	return Apply(v, s)
}

// Bit extracts bit n of a status word as 0.0 or 1.0.
func Bit(word uint16, n uint) float64 {
	return float64((word >> n) & 1)
}

func inRange(data []uint16, off int) bool {
	return off >= 0 && off < len(data)
}
