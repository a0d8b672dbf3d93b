// internal/status/constants.go
package status

import "strconv"

// Health is the per-device state after a cycle.
type Health uint16

// ---- HEALTH CODES ----

const (
	HealthUnknown  Health = 0 // not polled yet
	HealthOK       Health = 1
	HealthError    Health = 2
	HealthStale    Health = 3 // last good reading older than the stale limit
	HealthDisabled Health = 4
)

func (h Health) String() string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	}
	return "health(" + strconv.Itoa(int(h)) + ")"
}

// ---- ERROR CODES ----

// Error codes summarize why a device failed. Modbus exceptions are
// reported as CodeException + exception code.
const (
	CodeNone          uint16 = 0
	CodeGeneric       uint16 = 1
	CodeUnknownDriver uint16 = 2
	CodeReadFailed    uint16 = 3
	CodeZeroVoltage   uint16 = 4
	CodeShortResponse uint16 = 5
	CodeTimeout       uint16 = 6

	CodeException uint16 = 0x100
)

// SecondsInErrorMax saturates the time-in-error counter.
const SecondsInErrorMax = 65535

