// internal/driver/meteorology.go
package driver

import (
	"time"

	"github.com/solarian-energy/datalogger/internal/codec"
)

// MeteorologyBoydak is the plant weather station (input registers 0..123).
var MeteorologyBoydak = &Model{
	id:        "sensor_meteorology_boydak",
	name:      "SENSORS_METEOROLOGY_VANARISU",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     3 * time.Second,
	ranges: []Range{
		{Label: "Read1", Kind: Input, Address: 0, Count: 124},
	},
	fields: []Field{
		s16(0, "Relative_Humidity", 10, codec.Deci),
		s16(0, "Air_Pressure", 14, codec.Deci),
		s16(0, "Wind_Direction", 18, codec.Deci),
		s16(0, "GlobalRadiation", 27, codec.Deci),
		s16(0, "Air_Temperature", 31, codec.Deci),
		s16(0, "Dew_Point", 35, codec.Deci),
		s16(0, "Wind_Speed", 42, codec.Deci),
		s16(0, "Precipitation", 48, codec.Centi),
	},
}
