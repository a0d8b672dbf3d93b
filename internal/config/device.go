// internal/config/device.go
package config

import (
	"github.com/solarian-energy/datalogger/internal/driver"
)

// Descriptor converts a normalized device entry for the driver layer.
func (d DeviceConfig) Descriptor() driver.Device {
	dev := driver.Device{
		Name:    d.Name,
		Suffix:  d.Measurement,
		Address: d.IPAddress,
		Port:    d.Port,
		UnitID:  d.SlaveID,
	}
	if d.Serial != nil {
		dev.Serial = &driver.SerialConfig{
			Device:   d.Serial.Device,
			BaudRate: d.Serial.BaudRate,
			DataBits: d.Serial.DataBits,
			StopBits: d.Serial.StopBits,
			Parity:   d.Serial.Parity,
		}
	}
	return dev
}
