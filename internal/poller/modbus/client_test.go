// internal/poller/modbus/client_test.go
package modbus

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarian-energy/datalogger/internal/driver"
)

func TestUnpackRegisters(t *testing.T) {
	got, err := unpackRegisters([]byte{0x12, 0x34, 0xFF, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x1234, 0xFF00}, got)

	got, err = unpackRegisters(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = unpackRegisters([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDial_Validation(t *testing.T) {
	cases := []struct {
		name string
		t    driver.Target
	}{
		{"tcp no address", driver.Target{Transport: driver.TCP, Port: 502}},
		{"tcp bad port", driver.Target{Transport: driver.TCP, Address: "10.0.0.1", Port: 0}},
		{"rtu no device", driver.Target{Transport: driver.RTU, Serial: driver.SerialConfig{Parity: "N"}}},
		{"rtu bad parity", driver.Target{Transport: driver.RTU, Serial: driver.SerialConfig{Device: "/dev/ttyUSB0", Parity: "X"}}},
		{"unknown transport", driver.Target{Transport: driver.Transport(9)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Dial(tc.t, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewRTUHandler_AppliesSerialLine(t *testing.T) {
	h, err := newRTUHandler(driver.Target{
		Transport: driver.RTU,
		UnitID:    4,
		Timeout:   5 * time.Second,
		Serial:    driver.SerialConfig{Device: "/dev/ttyUSB0", BaudRate: 19200, DataBits: 8, StopBits: 1, Parity: "N"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", h.Address)
	assert.Equal(t, 19200, h.BaudRate)
	assert.Equal(t, 8, h.DataBits)
	assert.Equal(t, 1, h.StopBits)
	assert.Equal(t, "N", h.Parity)
	assert.Equal(t, 5*time.Second, h.Timeout)
	assert.Equal(t, byte(4), h.SlaveId)
}

func TestNewTCPHandler_Address(t *testing.T) {
	h, err := newTCPHandler(driver.Target{Transport: driver.TCP, Address: "192.168.1.20", Port: 1502, UnitID: 2, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20:1502", h.Address)
	assert.Equal(t, byte(2), h.SlaveId)
	assert.Equal(t, time.Second, h.Timeout)
}

// serveRegisters answers read requests with register i = start+i,
// closing each connection after one response.
func serveRegisters(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				req := make([]byte, 12) // MBAP(7) + FC, addr, qty
				if _, err := io.ReadFull(c, req); err != nil {
					return
				}
				start := binary.BigEndian.Uint16(req[8:10])
				qty := binary.BigEndian.Uint16(req[10:12])

				pdu := []byte{req[7], byte(qty * 2)}
				for i := uint16(0); i < qty; i++ {
					pdu = binary.BigEndian.AppendUint16(pdu, start+i)
				}
				resp := make([]byte, 7, 7+len(pdu))
				copy(resp[0:4], req[0:4])
				binary.BigEndian.PutUint16(resp[4:6], uint16(len(pdu)+1))
				resp[6] = req[6]
				_, _ = c.Write(append(resp, pdu...))
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestClient_ReadsAndReconnectsAfterClose(t *testing.T) {
	host, port := serveRegisters(t)

	c, err := Dial(driver.Target{Transport: driver.TCP, Address: host, Port: port, UnitID: 1, Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.ReadHoldingRegisters(100, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint16{100, 101, 102}, got)

	require.NoError(t, c.Close())

	got, err = c.ReadInputRegisters(7, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 8}, got)
}

func TestClient_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c, err := Dial(driver.Target{Transport: driver.TCP, Address: "127.0.0.1", Port: port, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = c.ReadHoldingRegisters(0, 1)
	assert.Error(t, err)
}
