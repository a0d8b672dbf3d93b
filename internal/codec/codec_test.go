// internal/codec/codec_test.go
package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		hi, lo uint16
		signed bool
		want   int64
	}{
		{"zero", 0, 0, false, 0},
		{"low only", 0, 1234, false, 1234},
		{"high word first", 1, 0, false, 65536},
		{"unsigned max", 0xFFFF, 0xFFFF, false, 4294967295},
		{"signed minus one", 0xFFFF, 0xFFFF, true, -1},
		{"signed min", 0x8000, 0x0000, true, -2147483648},
		{"signed positive", 0x0001, 0x86A0, true, 100000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Combine(tc.hi, tc.lo, tc.signed))
		})
	}
}

func TestLong_RoundTrip(t *testing.T) {
	pairs := [][2]uint16{
		{0, 0}, {0, 1}, {1, 0}, {0x1234, 0x5678}, {0x7FFF, 0xFFFF},
		{0x8000, 0}, {0xFFFF, 0xFFFF}, {0xABCD, 0x0001},
	}
	scales := []Scale{Unit, Deci, Centi, Milli}

	for _, p := range pairs {
		for _, s := range scales {
			for _, signed := range []bool{false, true} {
				data := []uint16{p[0], p[1]}
				f, err := Long(data, 0, 1, signed, s)
				require.NoError(t, err)

				hi, lo := Split(Unscale(f, s))
				assert.Equal(t, p[0], hi, "hi pair=%v scale=%d signed=%v", p, s, signed)
				assert.Equal(t, p[1], lo, "lo pair=%v scale=%d signed=%v", p, s, signed)
			}
		}
	}
}

func TestLong_HighWordOffsetCanFollowLowWord(t *testing.T) {
	// Little-endian word order devices list the high word second.
	data := []uint16{0x0002, 0x0001}
	f, err := Long(data, 1, 0, false, Unit)
	require.NoError(t, err)
	assert.Equal(t, float64(0x00010002), f)
}

func TestLong_MissingOffsetYieldsZero(t *testing.T) {
	f, err := Long([]uint16{1, 2}, 1, 2, false, Unit)
	assert.True(t, errors.Is(err, ErrOffset))
	assert.Zero(t, f)

	f, err = Long([]uint16{1, 2}, -1, 0, false, Unit)
	assert.True(t, errors.Is(err, ErrOffset))
	assert.Zero(t, f)
}

func TestWord(t *testing.T) {
	data := []uint16{1000, 0xFFFF, 0x8000, 25}

	f, err := Word(data, 0, false, Milli)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	f, err = Word(data, 1, true, Unit)
	require.NoError(t, err)
	assert.Equal(t, -1.0, f)

	f, err = Word(data, 1, false, Unit)
	require.NoError(t, err)
	assert.Equal(t, 65535.0, f)

	f, err = Word(data, 2, true, Deci)
	require.NoError(t, err)
	assert.Equal(t, -3276.8, f)

	f, err = Word(data, 4, false, Unit)
	assert.ErrorIs(t, err, ErrOffset)
	assert.Zero(t, f)
}

func TestScale(t *testing.T) {
	for d, want := range []Scale{Unit, Deci, Centi, Milli} {
		s, err := ScaleFromDecimals(d)
		require.NoError(t, err)
		assert.Equal(t, want, s)
	}

	_, err := ScaleFromDecimals(4)
	assert.ErrorIs(t, err, ErrScale)

	f, err := Apply(10, Scale(7))
	assert.ErrorIs(t, err, ErrScale)
	assert.Zero(t, f)
}

func TestSigned16(t *testing.T) {
	assert.Equal(t, int16(0), Signed16(0))
	assert.Equal(t, int16(32767), Signed16(0x7FFF))
	assert.Equal(t, int16(-32768), Signed16(0x8000))
	assert.Equal(t, int16(-2), Signed16(0xFFFE))
}

func TestBit_IndependentAndNonMutating(t *testing.T) {
	words := []uint16{0, 1, 0x8000, 0xAAAA, 0x5555, 0xFFFF, 0x0F0F}

	for _, w := range words {
		orig := w
		var rebuilt uint16
		for n := uint(0); n < 16; n++ {
			first := Bit(w, n)
			// Reading other bits in between must not change bit n.
			for m := uint(0); m < 16; m++ {
				if m != n {
					_ = Bit(w, m)
				}
			}
			assert.Equal(t, first, Bit(w, n))
			assert.Contains(t, []float64{0, 1}, first)
			if first == 1 {
				rebuilt |= 1 << n
			}
		}
		assert.Equal(t, orig, w)
		assert.Equal(t, orig, rebuilt)
	}
}
