// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the device map file (config.yml).
type Config struct {
	Devices []DeviceConfig `yaml:"devices"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name        string `yaml:"name"`
	Driver      string `yaml:"driver"`
	IPAddress   string `yaml:"ip_address"`
	Port        int    `yaml:"port"`
	SlaveID     uint8  `yaml:"slave_id"`
	Measurement string `yaml:"measurement"`

	// Enabled defaults to true when the key is absent.
	Enabled *bool `yaml:"enabled"`

	// Serial overrides the RTU line of serial drivers (optional).
	Serial *SerialConfig `yaml:"serial"`
}

// IsEnabled reports the effective enabled flag.
func (d DeviceConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// ---- SERIAL LINE ----

type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

// ---- MQTT ----

// MQTTConfig is the broker list file (mqtt.yml).
type MQTTConfig struct {
	Servers []ServerConfig `yaml:"servers"`
}

type ServerConfig struct {
	Topic     string `yaml:"topic"`
	IPAddress string `yaml:"ip_address"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Enabled   bool   `yaml:"enabled"`

	// TLS defaults to true (TLS 1.2) when the key is absent.
	TLS *bool `yaml:"tls"`

	// CAFile is a PEM bundle for the broker certificate; empty uses the
	// system roots.
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// UseTLS reports the effective TLS flag.
func (s ServerConfig) UseTLS() bool {
	return s.TLS == nil || *s.TLS
}

// ---- LOADING ----

// ErrEmpty is returned for a file without any document.
var ErrEmpty = errors.New("config: empty file")

// Load reads, validates and normalizes a device map.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	Normalize(&cfg)
	return &cfg, nil
}

// LoadMQTT reads, validates and normalizes a broker list.
func LoadMQTT(path string) (*MQTTConfig, error) {
	var cfg MQTTConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := ValidateMQTT(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	NormalizeMQTT(&cfg)
	return &cfg, nil
}

func decodeFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
