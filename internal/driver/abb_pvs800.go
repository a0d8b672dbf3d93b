// internal/driver/abb_pvs800.go
package driver

import (
	"time"

	"github.com/solarian-energy/datalogger/internal/codec"
)

// ABBPVS800 is the ABB PVS800 central inverter.
var ABBPVS800 = &Model{
	id:        "inv_abb_pvs800",
	name:      "ABB_PVS800_TCP",
	version:   "0.2",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     500 * time.Millisecond,
	ranges: []Range{
		{Label: "Read1", Kind: Holding, Address: 42496, Count: 7},
		{Label: "Read2", Kind: Holding, Address: 42545, Count: 27},
		{Label: "Read3", Kind: Holding, Address: 42599, Count: 8},
	},
	fields: append(pvsGridFields(),
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
		s16(1, "Highest_IGBT_Temp_PU1", 11, codec.Deci),
		s16(1, "Highest_IGBT_Temp_PU21", 12, codec.Deci),
		s16(1, "Highest_IGBT_Temp_PU31", 13, codec.Deci),
		s16(1, "Highest_IGBT_Temp_PU41", 14, codec.Deci),
		s16(1, "Control_Section_Temp", 15, codec.Deci),
		u32(1, "Daily_kWh", 19, 20, codec.Milli),
		u32(1, "Total_kWh", 21, 22, codec.Deci).times(10),
		u32(1, "Daily_kVAh", 23, 24, codec.Milli),
		u32(1, "Total_kVAh", 25, 26, codec.Deci).times(10),
	),
	status: []StatusWord{
		{Range: 0, Off: 1, Prefix: "Status_Main_", Bits: append(pvsMainBits(), Bit{11, "GridConnected"})},
		{Range: 2, Off: 1, Prefix: "Status_Limiting_", Bits: append(pvsLimitingBits(),
			Bit{11, "PowerSectionTempLimitation"},
		)},
		{Range: 2, Off: 3, Prefix: "Status_MPPT_", Bits: pvsMPPTBits()},
		{Range: 2, Off: 4, Prefix: "Status_Grid_", Bits: pvsGridBits()},
		{Range: 2, Off: 5, Prefix: "Status_Fan_", Bits: []Bit{
			{0, "PowerUnit1"},
			{1, "PowerUnit2"},
			{2, "PowerUnit3"},
			{3, "PowerUnit4"},
			{4, "ISU1Fan"},
			{5, "ISU2Fan"},
			{6, "DoorFanCircuitBreaker"},
		}},
		{Range: 2, Off: 7, Prefix: "Status_Environment_", Bits: []Bit{
			{0, "ACBusbarThermalProtection"},
			{1, "DCBusbarThermalProtection"},
			{2, "ColdAmbientTempWarning"},
			{3, "ColdAmbientTempFault"},
			{4, "HotAmbientTempWarning"},
			{5, "HotAmbientTempFault"},
			{6, "IGBTTempWarning"},
			{7, "IGBTTempFault"},
		}},
	},
}

// Tables shared by the PVS800 and PVS980. Each call returns a fresh
// slice so the models may append their own bits.

func pvsGridFields() []Field {
	return []Field{
		s16(0, "Active_Power", 2, codec.Unit),
		s16(0, "Reactive_Power", 3, codec.Unit),
		u16(0, "Grid_Voltage", 4, codec.Deci),
		u16(0, "Grid_Frequency", 5, codec.Centi),
		s16(0, "PowerFactor", 6, codec.Milli),
	}
}

func pvsMainBits() []Bit {
	return []Bit{
		{0, "ReadyToSwitchOn"},
		{1, "Faulted"},
		{2, "Warning"},
		{3, "MPPTEnabled"},
		{4, "GridStable"},
		{5, "DCVoltageWithinLimits"},
		{6, "StartInhibited"},
		{7, "ReducedRun"},
		{8, "RedundantRun"},
		{9, "QCompansation"},
		{10, "Limited"},
	}
}

func pvsLimitingBits() []Bit {
	return []Bit{
		{0, "IGBTTempCurrentLimitation"},
		{1, "PfLimitation"},
		{2, "PuLimitation"},
		{3, "GridFaultLimitation"},
		{4, "ExternalPowerLimit"},
		{5, "FRTRecoveryLimit"},
		{6, "ShutdownRampLimit"},
		{7, "PowerGradientLimit"},
		{8, "FRTInteraction"},
		{9, "AmbientTempLimitation"},
	}
}

func pvsMPPTBits() []Bit {
	return []Bit{
		{0, "MPPTMode"},
		{1, "PowerLimitationActive"},
		{2, "MinVoltageLimitActive"},
		{3, "MaxVoltageLimitActive"},
	}
}

func pvsGridBits() []Bit {
	return []Bit{
		{0, "Undervoltage"},
		{1, "Overvoltage"},
		{2, "Underfrequency"},
		{3, "Overfrequency"},
		{4, "AntiIslandingTrip"},
		{5, "RoCoFTrip"},
		{6, "CombinatoryTrip"},
		{7, "MovingAverageTrip"},
		{8, "ZeroCrossingTrip"},
		{9, "LVRTTrip"},
		{10, "HVRTTrip"},
		{11, "ExternalMonitorTrip"},
	}
}
