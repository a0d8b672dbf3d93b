// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarian-energy/datalogger/internal/driver"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const deviceMap = `
devices:
  - name: INV-01
    driver: inv_abb_pvs800
    ip_address: 192.168.1.21
    port: 502
    slave_id: 2
    measurement: _inverter
    enabled: true
  - name: "  WS-01 "
    driver: sensor_meteorology_boydak
    ip_address: 192.168.1.40
    slave_id: 1
    measurement: _weather
    enabled: false
  - name: MTR-01
    driver: ekk_socomec_dirisa10
    slave_id: 5
    measurement: _meter
    serial:
      device: /dev/ttyAMA0
      baud_rate: 9600
      parity: e
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yml", deviceMap))
	require.NoError(t, err)
	require.Len(t, cfg.Devices, 3)

	inv := cfg.Devices[0]
	assert.Equal(t, "INV-01", inv.Name)
	assert.True(t, inv.IsEnabled())
	assert.Equal(t, driver.Device{
		Name:    "INV-01",
		Suffix:  "_inverter",
		Address: "192.168.1.21",
		Port:    502,
		UnitID:  2,
	}, inv.Descriptor())

	ws := cfg.Devices[1]
	assert.Equal(t, "WS-01", ws.Name)
	assert.Equal(t, DefaultModbusPort, ws.Port)
	assert.False(t, ws.IsEnabled())

	mtr := cfg.Devices[2]
	assert.True(t, mtr.IsEnabled(), "enabled defaults to true")
	assert.Equal(t, &driver.SerialConfig{
		Device:   "/dev/ttyAMA0",
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 1,
		Parity:   "E",
	}, mtr.Descriptor().Serial)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "empty.yml", "  \n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Load(writeFile(t, "bad.yml", "devices: [name: x"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "nodev.yml", "devices: []\n"))
	assert.ErrorIs(t, err, ErrNoDevices)
}

func TestLoadMQTT(t *testing.T) {
	p := writeFile(t, "mqtt.yml", `
servers:
  - topic: solarian/plant1/
    ip_address: broker.example.com
    username: logger
    password: secret
    enabled: true
  - topic: local
    ip_address: 10.0.0.2
    enabled: true
    tls: false
  - topic: old
    ip_address: 10.0.0.3
    port: 1884
    enabled: false
`)

	cfg, err := LoadMQTT(p)
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 3)

	assert.Equal(t, "solarian/plant1", cfg.Servers[0].Topic)
	assert.Equal(t, DefaultMQTTSPort, cfg.Servers[0].Port)
	assert.True(t, cfg.Servers[0].UseTLS())

	assert.Equal(t, DefaultMQTTPort, cfg.Servers[1].Port)
	assert.False(t, cfg.Servers[1].UseTLS())

	assert.Equal(t, 1884, cfg.Servers[2].Port)
}
