// internal/driver/socomec_dirisa10.go
package driver

import (
	"time"

	"github.com/solarian-energy/datalogger/internal/codec"
)

// SocomecDirisA10 is the Socomec DIRIS A10 multifunction meter on RS-485.
var SocomecDirisA10 = &Model{
	id:        "ekk_socomec_dirisa10",
	name:      "SOCOMEC_DIRIS_A10",
	version:   "0.1",
	transport: RTU,
	serial: SerialConfig{
		Device:   "/dev/ttyUSB0",
		BaudRate: 19200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
	},
	timeout:  5 * time.Second,
	attempts: 3,
	delay:    500 * time.Millisecond,
	ranges: []Range{
		{Label: "Read1", Kind: Holding, Address: 50514, Count: 30},
		{Label: "Read2", Kind: Holding, Address: 50780, Count: 10},
		{Label: "Read3", Kind: Holding, Address: 51536, Count: 9},
	},
	fields: []Field{
		u32(0, "U12", 0, 1, codec.Centi),
		u32(0, "U23", 2, 3, codec.Centi),
		u32(0, "U31", 4, 5, codec.Centi),
		u32(0, "V1", 6, 7, codec.Centi),
		u32(0, "V2", 8, 9, codec.Centi),
		u32(0, "V3", 10, 11, codec.Centi),
		u32(0, "F", 12, 13, codec.Centi),
		u32(0, "I1", 14, 15, codec.Milli),
		u32(0, "I2", 16, 17, codec.Milli),
		u32(0, "I3", 18, 19, codec.Milli),
		u32(0, "In", 20, 21, codec.Milli),
		s32(0, "P", 22, 23, codec.Unit).times(10),
		s32(0, "Q", 24, 25, codec.Unit).times(10),
		u32(0, "S", 26, 27, codec.Unit).times(10),
		s32(0, "Pf", 28, 29, codec.Milli),

		u32(1, "Active_Energy_Positive", 0, 1, codec.Unit),
		u32(1, "Reactive_Energy_Positive", 2, 3, codec.Unit),
		s32(1, "Apparent_Energy", 4, 5, codec.Unit),
		s32(1, "Active_Energy_Negative", 6, 7, codec.Unit),
		s32(1, "Reactive_Energy_Negative", 8, 9, codec.Unit),

		u16(2, "THD_U12", 0, codec.Deci),
		u16(2, "THD_U23", 1, codec.Deci),
		u16(2, "THD_U31", 2, codec.Deci),
		u16(2, "THD_V1", 3, codec.Deci),
		u16(2, "THD_V2", 4, codec.Deci),
		u16(2, "THD_V3", 5, codec.Deci),
		u16(2, "THD_I1", 6, codec.Deci),
		u16(2, "THD_I2", 7, codec.Deci),
		u16(2, "THD_I3", 8, codec.Deci),
	},
}
