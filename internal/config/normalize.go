// internal/config/normalize.go
package config

import "strings"

const (
	DefaultModbusPort = 502
	DefaultMQTTPort   = 1883
	DefaultMQTTSPort  = 8883
)

// Placeholders for a partially given serial block.
var defaultSerial = SerialConfig{
	Device:   "/dev/ttyUSB0",
	BaudRate: 19200,
	DataBits: 8,
	StopBits: 1,
	Parity:   "N",
}

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]

		d.Name = strings.TrimSpace(d.Name)
		d.Driver = strings.TrimSpace(d.Driver)
		d.IPAddress = strings.TrimSpace(d.IPAddress)

		if d.Port == 0 {
			d.Port = DefaultModbusPort
		}

		if s := d.Serial; s != nil {
			s.Parity = strings.ToUpper(s.Parity)
			if s.Device == "" {
				s.Device = defaultSerial.Device
			}
			if s.BaudRate == 0 {
				s.BaudRate = defaultSerial.BaudRate
			}
			if s.DataBits == 0 {
				s.DataBits = defaultSerial.DataBits
			}
			if s.StopBits == 0 {
				s.StopBits = defaultSerial.StopBits
			}
			if s.Parity == "" {
				s.Parity = defaultSerial.Parity
			}
		}
	}
}

// NormalizeMQTT applies post-validation defaults to the broker list.
func NormalizeMQTT(cfg *MQTTConfig) {
	if cfg == nil {
		return
	}

	for i := range cfg.Servers {
		s := &cfg.Servers[i]
		s.Topic = strings.TrimRight(strings.TrimSpace(s.Topic), "/")
		s.IPAddress = strings.TrimSpace(s.IPAddress)
		s.CAFile = strings.TrimSpace(s.CAFile)
		if s.Port == 0 {
			if s.UseTLS() {
				s.Port = DefaultMQTTSPort
			} else {
				s.Port = DefaultMQTTPort
			}
		}
	}
}
