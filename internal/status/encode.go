// internal/status/encode.go
package status

import (
	"go.uber.org/zap/zapcore"
)

// MarshalLogObject lets a Snapshot be logged with zap.Object.
func (s Snapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("device", s.Device)
	enc.AddString("driver", s.Driver)
	enc.AddString("health", s.Health.String())
	if s.LastErrorCode != CodeNone {
		enc.AddUint16("last_error_code", s.LastErrorCode)
		enc.AddUint16("seconds_in_error", s.SecondsInError)
	}
	if s.Elapsed > 0 {
		enc.AddDuration("elapsed", s.Elapsed)
	}
	if s.Err != nil {
		enc.AddString("error", s.Err.Error())
	}
	return nil
}

// Summary counts the devices of one cycle per health.
type Summary struct {
	OK       int
	Failed   int // error or stale
	Disabled int
}

// Summarize folds the snapshots of one cycle.
func Summarize(snaps []Snapshot) Summary {
	var sum Summary
	for _, s := range snaps {
		switch s.Health {
		case HealthOK:
			sum.OK++
		case HealthError, HealthStale:
			sum.Failed++
		case HealthDisabled:
			sum.Disabled++
		}
	}
	return sum
}

func (s Summary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("ok", s.OK)
	enc.AddInt("failed", s.Failed)
	enc.AddInt("disabled", s.Disabled)
	return nil
}
