// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/driver"
)

const idleTimeout = 60 * time.Second

// handler is what both goburrow client handlers provide.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client implements driver.Bus over a goburrow handler.
//
// The handler connects lazily on the first request and again after
// Close, so a closed Client can keep being used.
type Client struct {
	mu      sync.Mutex
	handler handler
	client  modbus.Client
}

var _ driver.Bus = (*Client)(nil)

// NewDialer returns a driver.Dialer building TCP or RTU clients.
// Frames are traced to log at debug level when log is non-nil.
func NewDialer(log *zap.Logger) driver.Dialer {
	return func(t driver.Target) (driver.Bus, error) {
		return Dial(t, log)
	}
}

// Dial builds a client for t. No IO happens until the first read.
func Dial(t driver.Target, log *zap.Logger) (*Client, error) {
	var h handler
	switch t.Transport {
	case driver.TCP:
		th, err := newTCPHandler(t)
		if err != nil {
			return nil, err
		}
		if log != nil {
			th.Logger = zap.NewStdLog(log.Named("modbus.tcp"))
		}
		h = th
	case driver.RTU:
		rh, err := newRTUHandler(t)
		if err != nil {
			return nil, err
		}
		if log != nil {
			rh.Logger = zap.NewStdLog(log.Named("modbus.rtu"))
		}
		h = rh
	default:
		return nil, fmt.Errorf("modbus client: unsupported transport %s", t.Transport)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func newTCPHandler(t driver.Target) (*modbus.TCPClientHandler, error) {
	if t.Address == "" {
		return nil, errors.New("modbus client: address required")
	}
	if t.Port <= 0 || t.Port > 65535 {
		return nil, fmt.Errorf("modbus client: invalid port %d", t.Port)
	}

	h := modbus.NewTCPClientHandler(net.JoinHostPort(t.Address, strconv.Itoa(t.Port)))
	h.Timeout = t.Timeout
	h.IdleTimeout = idleTimeout
	h.SlaveId = t.UnitID
	return h, nil
}

func newRTUHandler(t driver.Target) (*modbus.RTUClientHandler, error) {
	s := t.Serial
	if s.Device == "" {
		return nil, errors.New("modbus client: serial device required")
	}
	switch s.Parity {
	case "N", "E", "O":
	default:
		return nil, fmt.Errorf("modbus client: invalid parity %q", s.Parity)
	}

	h := modbus.NewRTUClientHandler(s.Device)
	h.Config = serial.Config{
		Address:  s.Device,
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		StopBits: s.StopBits,
		Parity:   s.Parity,
		Timeout:  t.Timeout,
	}
	h.IdleTimeout = idleTimeout
	h.SlaveId = t.UnitID
	return h, nil
}

// Close drops the connection. Safe to call repeatedly.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b)
}

func (c *Client) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b)
}

// unpackRegisters splits a big-endian register payload into words.
func unpackRegisters(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("modbus: odd register payload length %d", len(data))
	}
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}
