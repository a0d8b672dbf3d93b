// internal/driver/dcb_kernel.go
package driver

import (
	"fmt"
	"time"

	"github.com/solarian-energy/datalogger/internal/codec"
)

// DCBKernelST0HS2425 is the Kernel DC combiner box current monitor.
//
// Input registers 30052..30098 (PLC base), read as one block from 51:
//
//	0..23  I_DC_1..I_DC_24   uint16  mA
//	32     DCB voltage       uint16  V
//	37     cabinet temp      uint16  °C
//	38     board temp        uint16  °C
//	39     total current     uint16  0.1 A
//	40/41  power LSB/MSB     uint32  W (word-swapped)
var DCBKernelST0HS2425 = &Model{
	id:        "dcb_kernel_st0hs2425",
	name:      "KERNEL_DCB_ST0HS2425",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     500 * time.Millisecond,
	ranges: []Range{
		{Label: "Read1", Kind: Input, Address: 51, Count: 47},
	},
	fields: dcbFields(),
}

func dcbFields() []Field {
	fields := make([]Field, 0, 29)
	for i := 0; i < 24; i++ {
		fields = append(fields, u16(0, fmt.Sprintf("I_DC_%d", i+1), i, codec.Milli))
	}
	return append(fields,
		u16(0, "V_DC", 32, codec.Unit),
		u16(0, "Cabinet_Temp", 37, codec.Unit),
		u16(0, "Board_Temp", 38, codec.Unit),
		u16(0, "Total_Current", 39, codec.Deci),
		u32(0, "Power", 41, 40, codec.Unit),
	)
}
