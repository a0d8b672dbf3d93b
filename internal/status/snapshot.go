// internal/status/snapshot.go
package status

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/goburrow/modbus"

	"github.com/solarian-energy/datalogger/internal/driver"
)

// Snapshot is the outcome of one device in one cycle.
type Snapshot struct {
	Device string
	Driver string

	Health         Health
	LastErrorCode  uint16
	SecondsInError uint16

	At      time.Time
	Elapsed time.Duration
	Err     error
}

// Tracker carries device state across cycles so that time in error
// accumulates in daemon mode. Not safe for concurrent use.
type Tracker struct {
	staleAfter time.Duration
	devices    map[string]*deviceState
}

type deviceState struct {
	health    Health
	lastOK    time.Time
	failSince time.Time
}

// NewTracker returns a tracker. A failing device whose last good reading
// is older than staleAfter is reported HealthStale; zero disables that.
func NewTracker(staleAfter time.Duration) *Tracker {
	return &Tracker{
		staleAfter: staleAfter,
		devices:    make(map[string]*deviceState),
	}
}

// Disabled records a skipped device.
func (t *Tracker) Disabled(device, driverID string, at time.Time) Snapshot {
	st := t.state(device)
	st.health = HealthDisabled
	st.failSince = time.Time{}
	return Snapshot{Device: device, Driver: driverID, Health: HealthDisabled, At: at}
}

// Observe records a read outcome. err == nil means the device produced a reading.
func (t *Tracker) Observe(device, driverID string, at time.Time, elapsed time.Duration, err error) Snapshot {
	st := t.state(device)
	s := Snapshot{
		Device:  device,
		Driver:  driverID,
		At:      at,
		Elapsed: elapsed,
		Err:     err,
	}

	if err == nil {
		st.health = HealthOK
		st.lastOK = at
		st.failSince = time.Time{}
		s.Health = HealthOK
		return s
	}

	if st.failSince.IsZero() {
		st.failSince = at
	}
	st.health = HealthError
	if t.staleAfter > 0 && !st.lastOK.IsZero() && at.Sub(st.lastOK) > t.staleAfter {
		st.health = HealthStale
	}

	s.Health = st.health
	s.LastErrorCode = ErrorCode(err)
	s.SecondsInError = secondsSince(st.failSince, at)
	return s
}

func (t *Tracker) state(device string) *deviceState {
	st, ok := t.devices[device]
	if !ok {
		st = &deviceState{health: HealthUnknown}
		t.devices[device] = st
	}
	return st
}

func secondsSince(from, to time.Time) uint16 {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	s := int64(d / time.Second)
	if s > SecondsInErrorMax {
		return SecondsInErrorMax
	}
	return uint16(s)
}

// ErrorCode extracts a code from an error without assuming concrete types.
// Returns CodeGeneric when nothing more specific applies.
func ErrorCode(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return CodeException + uint16(mbErr.ExceptionCode)
	}

	switch {
	case errors.Is(err, driver.ErrUnknownDriver):
		return CodeUnknownDriver
	case errors.Is(err, driver.ErrZeroVoltage):
		return CodeZeroVoltage
	case errors.Is(err, driver.ErrShortResponse):
		return CodeShortResponse
	case isTimeout(err):
		return CodeTimeout
	case errors.Is(err, driver.ErrReadFailed):
		return CodeReadFailed
	}
	return CodeGeneric
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
