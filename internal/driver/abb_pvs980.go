// internal/driver/abb_pvs980.go
package driver

import (
	"fmt"
	"time"

	"github.com/solarian-energy/datalogger/internal/codec"
)

// ABBPVS980 is the ABB PVS980 central inverter. Its gateway drops
// stale sessions, so the bus is closed after every attempt.
var ABBPVS980 = &Model{
	id:        "inv_abb_pvs980",
	name:      "ABB_PVS980_TCP",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  10,
	delay:     500 * time.Millisecond,
	reconnect: true,
	ranges: []Range{
		{Label: "Read1", Kind: Holding, Address: 42496, Count: 7},
		{Label: "Read2", Kind: Holding, Address: 42545, Count: 33},
		{Label: "Read3", Kind: Holding, Address: 42599, Count: 13},
	},
	fields: append(pvsGridFields(),
		u16(1, "Code_ActiveFault", 0, codec.Unit),
		u16(1, "L1_Voltage", 1, codec.Deci),
		u16(1, "L2_Voltage", 2, codec.Deci),
		u16(1, "L3_Voltage", 3, codec.Deci),
		u16(1, "Grid_Current", 4, codec.Deci),
		u16(1, "DC_Input_Voltage", 5, codec.Deci),
		u16(1, "DC_Bus_Voltage", 6, codec.Deci),
		u16(1, "DC_Input_Current", 7, codec.Deci),
		u16(1, "Grounding_Current", 8, codec.Unit),
		u16(1, "Isolation_Resistance", 9, codec.Unit),
		s16(1, "Inverter_Ambient_Temp", 10, codec.Deci),
		s16(1, "Highest_IGBT_Temp_M1", 11, codec.Deci),
		s16(1, "Highest_IGBT_Temp_M2", 12, codec.Deci),
		s16(1, "Highest_IGBT_Temp_M3", 13, codec.Deci),
		s16(1, "Highest_IGBT_Temp_M4", 14, codec.Deci),
		s16(1, "Control_Section_Temp", 15, codec.Deci),
		s16(1, "Highest_Cabinet_Temp_M1", 16, codec.Deci),
		s16(1, "Highest_Cabinet_Temp_M2", 17, codec.Deci),
		s16(1, "Highest_Cabinet_Temp_M3", 18, codec.Deci),
		s16(1, "Highest_Cabinet_Temp_M4", 19, codec.Deci),
		s16(1, "Highest_LCL_Temp_M1", 20, codec.Deci),
		s16(1, "Highest_LCL_Temp_M2", 21, codec.Deci),
		s16(1, "Highest_LCL_Temp_M3", 22, codec.Deci),
		s16(1, "Highest_LCL_Temp_M4", 23, codec.Deci),
		s16(1, "Inverter_Section_Humidity", 24, codec.Deci),
		u32(1, "Daily_kWh", 25, 26, codec.Milli),
		u32(1, "Total_kWh", 27, 28, codec.Deci).times(10),
		u32(1, "Daily_kVAh", 29, 30, codec.Milli),
		u32(1, "Total_kVAh", 31, 32, codec.Deci).times(10),
	),
	status: []StatusWord{
		{Range: 2, Off: 0, Prefix: "Status_Electromechanical_", Bits: pvs980ElectromechanicalBits()},
		{Range: 0, Off: 1, Prefix: "Status_Main_", Bits: pvsMainBits()},
		{Range: 2, Off: 3, Prefix: "Status_Limiting_", Bits: append(pvsLimitingBits(),
			Bit{10, "ControlSectionTempLimitation"},
			Bit{11, "ACDCSectionTempLimitation"},
			Bit{12, "LCLSectionTempLimitation"},
			Bit{14, "InputDCDCSectionTempLimitation"},
		)},
		{Range: 2, Off: 5, Prefix: "Status_MPPT_", Bits: pvsMPPTBits()},
		{Range: 2, Off: 6, Prefix: "Status_Grid_", Bits: pvsGridBits()},
		{Range: 2, Off: 7, Prefix: "Status_Fan_", Bits: pvs980MainChannelFanBits()},
		{Range: 2, Off: 8, Prefix: "Status_Fan_", Bits: []Bit{
			{0, "LCLM1Fan1"},
			{1, "LCLM1Fan2"},
			{2, "LCLM2Fan1"},
			{3, "LCLM2Fan2"},
			{4, "LCLM3Fan1"},
			{5, "LCLM3Fan2"},
			{6, "LCLM4Fan1"},
			{7, "LCLM4Fan2"},
			{8, "ACDCIndoorFanM1"},
			{9, "ACDCIndoorFanM2"},
			{10, "ACDCIndoorFanM3"},
			{11, "ACDCIndoorFanM4"},
		}},
		{Range: 2, Off: 9, Prefix: "Status_Environment_", Bits: []Bit{
			{1, "OverTempDetected"},
			{2, "ColdAmbientTempDetected"},
			{3, "ExcessHumidityDetected"},
			{4, "CabinetHeatingOn"},
			{5, "HotAmbientTempDetected"},
			{6, "ColdPowerSectionTemp"},
		}},
		{Range: 2, Off: 10, Prefix: "Status_Fault_", Bits: []Bit{
			{0, "FastPoweroff"},
			{1, "AmbientSituation"},
			{2, "GroundingCurrent"},
			{3, "InsulationResistance"},
			{4, "GroundingCircuitVoltage"},
			{5, "ReverseCurrentFault"},
			{6, "DCOvercurrentFault"},
			{7, "PLCLinkFault"},
			{8, "FanFault"},
			{9, "ACContactor"},
			{10, "DCContactor"},
			{11, "DCSwitch"},
			{12, "MainCircuitSPDFault"},
			{13, "DCFuse"},
			{14, "48VPowerSupply"},
			{15, "InternalSWFault1"},
		}},
		{Range: 2, Off: 11, Prefix: "Status_Fault_", Bits: []Bit{
			{0, "48VBuffer"},
			{1, "24VBuffer"},
			{2, "AuxCircuit"},
			{3, "LCLPressureSensor"},
			{4, "Door"},
			{5, "ACBreaker"},
			{6, "ACOvercurrent"},
			{7, "ShortCircuit"},
			{8, "BUCurrentDifference"},
			{9, "InputPhaseLoss"},
			{10, "ControlSectionOverTemp"},
			{11, "IGBTOverTemp"},
			{12, "ACDCCabinetOverTemp"},
			{13, "LCLSectionOverTemp"},
			{14, "PowerUnitLost"},
			{15, "InternalSWFault2"},
		}},
		{Range: 2, Off: 12, Prefix: "Status_Alarm_", Bits: []Bit{
			{0, "GroundingCurrentSuddenChange"},
			{1, "ResidualCurrent"},
			{2, "GroundingCurrentOvervoltage"},
			{3, "InsulationResistance"},
			{4, "TempSensorAlarm"},
			{5, "SCADADataInputOutOfRange"},
			{6, "DCLinkOvervoltage"},
			{7, "DCInputOvervoltage"},
			{8, "MainCircuit"},
			{9, "SPD"},
			{10, "48VPowerSupply"},
			{11, "48VBuffer"},
			{12, "24VBuffer"},
			{13, "AuxCircuitBreaker"},
			{14, "LCLPressureSensor"},
			{15, "ACDCDoor"},
		}},
	},
}

// bits 0..15: AC contactor, DC contactor, AC switch, DC switch; M1..M4 each.
func pvs980ElectromechanicalBits() []Bit {
	bits := make([]Bit, 0, 16)
	for g, kind := range []string{"ACContactor", "DCContactor", "ACSwitch", "DCSwitch"} {
		for m := 1; m <= 4; m++ {
			bits = append(bits, Bit{uint(g*4 + m - 1), fmt.Sprintf("%sM%d", kind, m)})
		}
	}
	return bits
}

// bit (c-1)*4+(f-1) is fan f of main channel c.
func pvs980MainChannelFanBits() []Bit {
	bits := make([]Bit, 0, 16)
	for c := 1; c <= 4; c++ {
		for f := 1; f <= 4; f++ {
			bits = append(bits, Bit{uint((c-1)*4 + f - 1), fmt.Sprintf("MainChannel%dFan%d", c, f)})
		}
	}
	return bits
}
