// internal/poller/builder.go
package poller

import (
	"errors"

	"go.uber.org/zap"

	cfg "github.com/solarian-energy/datalogger/internal/config"
)

// Units converts a normalized device map, keeping configuration order.
func Units(c *cfg.Config) []Unit {
	if c == nil {
		return nil
	}
	units := make([]Unit, 0, len(c.Devices))
	for _, d := range c.Devices {
		units = append(units, Unit{
			Device:  d.Descriptor(),
			Driver:  d.Driver,
			Enabled: d.IsEnabled(),
		})
	}
	return units
}

// Build constructs a Poller for a device map. The Units field of base is
// replaced. Unknown driver ids are reported here once and again every
// cycle they are polled.
func Build(c *cfg.Config, base Config) (*Poller, error) {
	if c == nil {
		return nil, errors.New("poller: config required")
	}
	base.Units = Units(c)

	p, err := New(base)
	if err != nil {
		return nil, err
	}

	for _, u := range p.cfg.Units {
		p.log.Debug("device configured",
			zap.String("device", u.Device.Name),
			zap.String("driver", u.Driver),
			zap.String("address", u.Device.Address),
			zap.Int("port", u.Device.Port),
			zap.Uint8("unit", u.Device.UnitID),
			zap.Bool("enabled", u.Enabled),
		)
		if _, err := p.cfg.Registry.Lookup(u.Driver); err != nil && u.Enabled {
			p.log.Warn("device uses an unknown driver", zap.String("device", u.Device.Name), zap.Error(err))
		}
	}
	return p, nil
}
