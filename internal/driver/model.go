// internal/driver/model.go
package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/codec"
	"github.com/solarian-energy/datalogger/internal/reading"
)

// Kind is the Modbus function code used for a range.
type Kind uint8

const (
	Holding Kind = 3
	Input   Kind = 4
)

// Range is one bus transaction: a contiguous block of registers.
type Range struct {
	Label   string
	Kind    Kind
	Address uint16
	Count   uint16

	// Check rejects a response that decoded but is not plausible.
	// A rejection consumes an attempt like a bus failure.
	Check func(regs []uint16) error
}

// Width of a decoded field in registers.
type Width uint8

const (
	W16 Width = 1
	W32 Width = 2
)

// Field maps register offsets of one range to a named value.
// The value is raw / Scale, multiplied by Mul when Mul is non-zero.
type Field struct {
	Name   string
	Range  int
	Width  Width
	Signed bool
	Off    int // W16 offset, or W32 high word
	Lo     int // W32 low word
	Scale  codec.Scale
	Mul    float64
}

func (f Field) decode(regs []uint16) (float64, error) {
	var (
		v   float64
		err error
	)
	switch f.Width {
	case W16:
		v, err = codec.Word(regs, f.Off, f.Signed, f.Scale)
	case W32:
		v, err = codec.Long(regs, f.Off, f.Lo, f.Signed, f.Scale)
	default:
		return 0, fmt.Errorf("driver: field %s: unsupported width %d", f.Name, f.Width)
	}
	if err != nil {
		return 0, err
	}
	if f.Mul != 0 {
		v *= f.Mul
	}
	return v, nil
}

// Bit names one flag of a status word.
type Bit struct {
	Pos  uint
	Name string
}

// StatusWord is a bitmask register. Each listed bit becomes a 0/1 field
// named Prefix+Bit.Name. Reserved bits are simply not listed.
type StatusWord struct {
	Range  int
	Off    int
	Prefix string
	Bits   []Bit
}

// Model is a table-driven driver for one device model.
type Model struct {
	id      string
	name    string
	version string

	transport Transport
	serial    SerialConfig
	timeout   time.Duration
	attempts  int
	delay     time.Duration

	// reconnect closes the bus after every attempt; the transport
	// re-dials on the next request.
	reconnect bool

	ranges []Range
	fields []Field
	status []StatusWord
}

var _ Driver = (*Model)(nil)

// ID returns the registry identifier.
func (m *Model) ID() string { return m.id }

// Version returns "<NAME> v<version>".
func (m *Model) Version() string { return m.name + " v" + m.version }

// Attempts returns the per-range attempt budget.
func (m *Model) Attempts() int { return m.attempts }

// Ranges returns the transactions issued per call.
func (m *Model) Ranges() []Range { return m.ranges }

func (m *Model) target(dev Device) Target {
	t := Target{
		Address:   dev.Address,
		Port:      dev.Port,
		UnitID:    dev.UnitID,
		Timeout:   m.timeout,
		Transport: m.transport,
		Serial:    m.serial,
	}
	if m.transport == RTU && dev.Serial != nil {
		t.Serial = *dev.Serial
	}
	return t
}

// Read performs every range transaction and decodes the result.
// All-or-nothing: any range exhausting its attempts fails the call.
func (m *Model) Read(ctx context.Context, env Env, dev Device) (*reading.Reading, error) {
	start := env.now()
	log := env.logger().With(
		zap.String("driver", m.name),
		zap.String("device", dev.Name),
		zap.String("address", dev.Address),
		zap.Int("port", dev.Port),
		zap.Uint8("unit", dev.UnitID),
	)
	log.Debug("reading device")

	if env.Dial == nil {
		return nil, fmt.Errorf("driver %s: no dialer", m.id)
	}
	bus, err := env.Dial(m.target(dev))
	if err != nil {
		log.Error("bus open failed", zap.Error(err))
		return nil, fmt.Errorf("driver %s: %w: %w", m.id, ErrReadFailed, err)
	}
	defer func() { _ = bus.Close() }()

	regs := make([][]uint16, len(m.ranges))
	for i, rg := range m.ranges {
		data, err := m.transact(ctx, env, log, bus, rg)
		if err != nil {
			log.Error("modbus scan failed",
				zap.String("range", rg.Label),
				zap.Int("attempts", m.attempts),
				zap.Duration("elapsed", env.now().Sub(start)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("driver %s: %s: %w", m.id, rg.Label, err)
		}
		regs[i] = data
	}

	out := reading.NewDevice(dev.Name, dev.Suffix, start)
	m.decode(log, out, regs)

	log.Debug("modbus scan completed", zap.Duration("elapsed", env.now().Sub(start)))
	return out, nil
}

// transact runs one range with the model's retry policy.
func (m *Model) transact(ctx context.Context, env Env, log *zap.Logger, bus Bus, rg Range) ([]uint16, error) {
	var lastErr error

	for attempt := 1; attempt <= m.attempts; attempt++ {
		data, err := readRange(bus, rg)
		if err == nil && rg.Check != nil {
			err = rg.Check(data)
		}
		if m.reconnect {
			_ = bus.Close()
		}

		if err == nil {
			log.Debug("read successful", zap.String("range", rg.Label), zap.Int("attempt", attempt))
			return data, nil
		}

		lastErr = err
		log.Error("read error",
			zap.String("range", rg.Label),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < m.attempts {
			if serr := env.sleep(ctx, m.delay); serr != nil {
				return nil, fmt.Errorf("%w: %w", ErrReadFailed, serr)
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrReadFailed, m.attempts, lastErr)
}

func readRange(bus Bus, rg Range) ([]uint16, error) {
	var (
		data []uint16
		err  error
	)
	switch rg.Kind {
	case Holding:
		data, err = bus.ReadHoldingRegisters(rg.Address, rg.Count)
	case Input:
		data, err = bus.ReadInputRegisters(rg.Address, rg.Count)
	default:
		return nil, fmt.Errorf("driver: unsupported function code %d", rg.Kind)
	}
	if err != nil {
		return nil, err
	}
	if len(data) < int(rg.Count) {
		return nil, fmt.Errorf("%w: got=%d want=%d", ErrShortResponse, len(data), rg.Count)
	}
	return data, nil
}

// decode applies field rules then status-word tables, in table order.
// A field that cannot be decoded is stored as 0.
func (m *Model) decode(log *zap.Logger, out *reading.Reading, regs [][]uint16) {
	for _, f := range m.fields {
		v, err := f.decode(regs[f.Range])
		if err != nil {
			log.Error("decode failed, using 0", zap.String("field", f.Name), zap.Error(err))
		}
		out.Set(f.Name, v)
	}

	for _, sw := range m.status {
		data := regs[sw.Range]
		var word uint16
		if sw.Off >= 0 && sw.Off < len(data) {
			word = data[sw.Off]
		} else {
			log.Error("status word out of range, using 0", zap.String("word", sw.Prefix), zap.Int("offset", sw.Off))
		}
		for _, b := range sw.Bits {
			out.Set(sw.Prefix+b.Name, codec.Bit(word, b.Pos))
		}
	}
}

// zeroVoltage rejects a response whose 32-bit word pair decodes to 0.
func zeroVoltage(hi, lo int) func([]uint16) error {
	return func(regs []uint16) error {
		v, err := codec.Long(regs, hi, lo, false, codec.Unit)
		if err != nil {
			return err
		}
		if v == 0 {
			return ErrZeroVoltage
		}
		return nil
	}
}

// ---- field constructors ----

func u16(rng int, name string, off int, s codec.Scale) Field {
	return Field{Name: name, Range: rng, Width: W16, Off: off, Scale: s}
}

func s16(rng int, name string, off int, s codec.Scale) Field {
	return Field{Name: name, Range: rng, Width: W16, Signed: true, Off: off, Scale: s}
}

func u32(rng int, name string, hi, lo int, s codec.Scale) Field {
	return Field{Name: name, Range: rng, Width: W32, Off: hi, Lo: lo, Scale: s}
}

func s32(rng int, name string, hi, lo int, s codec.Scale) Field {
	return Field{Name: name, Range: rng, Width: W32, Signed: true, Off: hi, Lo: lo, Scale: s}
}

// times sets a post-scale multiplier.
func (f Field) times(m float64) Field {
	f.Mul = m
	return f
}
