// internal/driver/driver.go

// Package driver holds the per-model register maps and the bounded-retry
// read protocol used against them.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/reading"
)

var (
	// ErrReadFailed means a register range never succeeded within the attempt budget.
	ErrReadFailed = errors.New("driver: read failed")

	// ErrUnknownDriver is returned by Registry.Lookup for an unregistered id.
	ErrUnknownDriver = errors.New("driver: unknown driver")

	// ErrZeroVoltage is the sanity-gate rejection used by power analyzers.
	ErrZeroVoltage = errors.New("driver: voltage is zero")

	// ErrShortResponse means the bus returned fewer words than requested.
	ErrShortResponse = errors.New("driver: short response")
)

// Bus is the register-read surface a driver needs from the transport.
type Bus interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
	Close() error
}

// Transport selects how a device is reached.
type Transport uint8

const (
	TCP Transport = iota
	RTU
)

func (t Transport) String() string {
	switch t {
	case TCP:
		return "tcp"
	case RTU:
		return "rtu"
	}
	return fmt.Sprintf("transport(%d)", uint8(t))
}

// SerialConfig describes a serial line for RTU devices.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string // "N", "E" or "O"
}

// Device is the descriptor of one configured field device.
type Device struct {
	Name    string
	Suffix  string
	Address string
	Port    int
	UnitID  uint8

	// Serial overrides the model's default serial line (RTU models only).
	Serial *SerialConfig
}

// Target is what the dialer receives: the device plus model transport settings.
type Target struct {
	Address   string
	Port      int
	UnitID    uint8
	Timeout   time.Duration
	Transport Transport
	Serial    SerialConfig
}

// Dialer opens a bus connection for one driver call.
type Dialer func(t Target) (Bus, error)

// Env carries the collaborators of a driver call.
// Zero fields fall back to a no-op logger, time.Now and a context-aware sleep.
type Env struct {
	Log   *zap.Logger
	Dial  Dialer
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (e Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return e.Sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Driver reads one device model and returns its decoded reading.
type Driver interface {
	ID() string
	Version() string
	Read(ctx context.Context, env Env, dev Device) (*reading.Reading, error)
}
