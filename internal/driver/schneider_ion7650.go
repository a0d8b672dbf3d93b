// internal/driver/schneider_ion7650.go
package driver

import (
	"time"

	"github.com/solarian-energy/datalogger/internal/codec"
)

// Schneider ION 7650 power quality analyzer, Modbus TCP.
// Three register maps are deployed in the field, depending on the
// meter's Modbus slave module configuration.

// SchneiderION7650 reads the full default map at 40150.
// Currents/frequency are stored pre-divided by the meter and are
// multiplied back; 32-bit values are read unscaled.
var SchneiderION7650 = &Model{
	id:        "schneider_ion_7650",
	name:      "SCHNEIDER_ION_7650_TCP",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     500 * time.Millisecond,
	ranges: []Range{
		{Label: "Read1", Kind: Holding, Address: 40150, Count: 94, Check: zeroVoltage(16, 17)},
	},
	fields: ion7650DefaultFields(),
}

func ion7650DefaultFields() []Field {
	var fields []Field

	// 40150..40165 UINT16
	for i, name := range []string{
		"Ia", "Ib", "Ic", "I4", "I5",
		"I_Avg", "I_Avg_min", "I_Avg_max", "I_Avg_mean",
		"Freq", "Freq_min", "Freq_max", "Freq_mean",
		"V_unbal", "I_unbal", "Phase_Rev",
	} {
		fields = append(fields, u16(0, name, i, codec.Unit).times(10))
	}

	// 40166..40189 UINT32
	for i, name := range []string{
		"Vln_a", "Vln_b", "Vln_c", "Vln_avg", "Vln_avg_max",
		"Vll_ab", "Vll_ac", "Vll_ca", "Vll_avg", "Vll_avg_max", "Vll_avg_min",
	} {
		off := 16 + 2*i
		fields = append(fields, u32(0, name, off, off+1, codec.Unit))
	}

	// 40198..40239 INT32
	for i, name := range []string{
		"kW_a", "kW_b", "kW_c", "kW_tot", "kW_tot_max",
		"kVAR_a", "kVAR_b", "kVAR_c", "kVAR_tot", "kVAR_tot_max",
		"kVA_a", "kVA_b", "kVA_c", "kVA_tot", "kVA_tot_max",
		"kWh_del", "kWh_rec", "kVARh_del", "kVARh_rec", "kVAh_drec",
	} {
		off := 38 + 2*i
		fields = append(fields, s32(0, name, off, off+1, codec.Unit))
	}

	// 40262..40277 INT16
	for i, name := range []string{
		"PF_sign_a", "PF_sign_b", "PF_sign_c", "PF_sign_tot",
		"V1_THD_max", "V2_THD_max", "V3_THD_max",
		"I1_THD_max", "I2_THD_max", "I3_THD_max",
		"I1_K_Fact", "I2_K_Fact", "I3_K_Fact",
		"I1_Crest_Fact", "I2_Crest_Fact", "I3_Crest_Fact",
	} {
		fields = append(fields, s16(0, name, 78+i, codec.Unit).times(100))
	}

	return fields
}

// SchneiderION7650Voltages reads only the line-to-line voltages.
var SchneiderION7650Voltages = &Model{
	id:        "schneider_ion_7650_stupid",
	name:      "SCHNEIDER_ION_7650_TCP",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     500 * time.Millisecond,
	ranges: []Range{
		{Label: "Read1", Kind: Holding, Address: 40150, Count: 20},
	},
	fields: []Field{
		u32(0, "Vll_ab", 12, 13, codec.Unit),
		u32(0, "Vll_ac", 14, 15, codec.Unit),
		u32(0, "Vll_ca", 16, 17, codec.Unit),
	},
}

// SchneiderION7650Inavitas reads the map exposed to the Inavitas SCADA at 149.
var SchneiderION7650Inavitas = &Model{
	id:        "schneider_ion_7650_inavitas",
	name:      "SCHNEIDER_ION_7650_TCP_INAVITAS",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     500 * time.Millisecond,
	ranges:    ion7650InavitasRanges(),
	fields:    ion7650InavitasFields(),
}

// EKKSchneiderION7650 is the same Inavitas map registered under the EKK site id.
var EKKSchneiderION7650 = &Model{
	id:        "ekk_schneider_ion_7650",
	name:      "SCHNEIDER_ION_7650_TCP_INAVITAS",
	version:   "0.1",
	transport: TCP,
	timeout:   3 * time.Second,
	attempts:  3,
	delay:     500 * time.Millisecond,
	ranges:    ion7650InavitasRanges(),
	fields:    ion7650InavitasFields(),
}

func ion7650InavitasRanges() []Range {
	return []Range{
		{Label: "Read1", Kind: Holding, Address: 149, Count: 122, Check: zeroVoltage(16, 17)},
	}
}

func ion7650InavitasFields() []Field {
	return []Field{
		u16(0, "Ia", 0, codec.Deci),
		u16(0, "Ib", 1, codec.Deci),
		u16(0, "Ic", 2, codec.Deci),

		u16(0, "Freq", 9, codec.Deci),

		u32(0, "Vll_ab", 28, 29, codec.Unit),
		u32(0, "Vll_ac", 30, 31, codec.Unit),
		u32(0, "Vll_ca", 32, 33, codec.Unit),

		s32(0, "kW_tot", 54, 55, codec.Unit),
		s32(0, "kVAR_tot", 64, 65, codec.Unit),
		s32(0, "kVA_tot", 74, 75, codec.Unit),
		s32(0, "kWh_del", 80, 81, codec.Unit),
		s32(0, "kWh_rec", 82, 83, codec.Unit),
		s32(0, "kVARh_del", 84, 85, codec.Unit),
		s32(0, "kVARh_rec", 86, 87, codec.Unit),

		s16(0, "I1_THD_max", 119, codec.Centi),
		s16(0, "I2_THD_max", 120, codec.Centi),
		s16(0, "I3_THD_max", 121, codec.Centi),
		s16(0, "V1_THD_max", 116, codec.Centi),
		s16(0, "V2_THD_max", 117, codec.Centi),
		s16(0, "V3_THD_max", 118, codec.Centi),

		s16(0, "PF_tot", 115, codec.Centi),
	}
}
