// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrNoDevices means the device map lists nothing to poll.
var ErrNoDevices = errors.New("config: no devices defined")

// Validate checks the device map.
// It performs declarative validation only and MUST NOT mutate configuration.
// Every problem found is reported, combined with multierr.
func Validate(cfg *Config) error {
	if cfg == nil || len(cfg.Devices) == 0 {
		return ErrNoDevices
	}

	var errs error
	seen := make(map[string]int, len(cfg.Devices))

	for i, d := range cfg.Devices {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			errs = multierr.Append(errs, fmt.Errorf("device #%d: name required", i+1))
		} else if prev, dup := seen[name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("device %q: duplicate name (also device #%d)", name, prev+1))
		} else {
			seen[name] = i
		}

		label := name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		if strings.TrimSpace(d.Driver) == "" {
			errs = multierr.Append(errs, fmt.Errorf("device %q: driver required", label))
		}

		// port 0 means "use the default"
		if d.Port < 0 || d.Port > 65535 {
			errs = multierr.Append(errs, fmt.Errorf("device %q: port %d out of range", label, d.Port))
		}

		if d.Serial != nil {
			errs = multierr.Append(errs, validateSerial(label, d.Serial))
		}
	}

	return errs
}

func validateSerial(label string, s *SerialConfig) error {
	var errs error
	if s.BaudRate < 0 {
		errs = multierr.Append(errs, fmt.Errorf("device %q: serial baud_rate %d invalid", label, s.BaudRate))
	}
	if s.DataBits != 0 && (s.DataBits < 5 || s.DataBits > 8) {
		errs = multierr.Append(errs, fmt.Errorf("device %q: serial data_bits %d invalid", label, s.DataBits))
	}
	if s.StopBits != 0 && s.StopBits != 1 && s.StopBits != 2 {
		errs = multierr.Append(errs, fmt.Errorf("device %q: serial stop_bits %d invalid", label, s.StopBits))
	}
	switch strings.ToUpper(s.Parity) {
	case "", "N", "E", "O":
	default:
		errs = multierr.Append(errs, fmt.Errorf("device %q: serial parity %q invalid", label, s.Parity))
	}
	return errs
}

// ValidateMQTT checks the broker list. Disabled servers are not checked.
func ValidateMQTT(cfg *MQTTConfig) error {
	if cfg == nil {
		return errors.New("config: no mqtt config")
	}

	var errs error
	for i, s := range cfg.Servers {
		if !s.Enabled {
			continue
		}
		label := fmt.Sprintf("server #%d", i+1)
		if strings.TrimSpace(s.IPAddress) == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: ip_address required", label))
		}
		if strings.TrimSpace(s.Topic) == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: topic required", label))
		}
		if s.Port < 0 || s.Port > 65535 {
			errs = multierr.Append(errs, fmt.Errorf("%s: port %d out of range", label, s.Port))
		}
	}
	return errs
}
