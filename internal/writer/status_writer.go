// internal/writer/status_writer.go
package writer

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter logs device health. Transitions (health or error
// code changes) are logged at info, repeats at debug.
type deviceStatusWriter struct {
	log  *zap.Logger
	last map[string]status.Snapshot
}

// NewDeviceStatusWriter returns a StatusWriter that logs to log.
func NewDeviceStatusWriter(log *zap.Logger) StatusWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &deviceStatusWriter{log: log, last: make(map[string]status.Snapshot)}
}

func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if s.Device == "" {
		return errors.New("status writer: device name required")
	}

	prev, seen := sw.last[s.Device]
	sw.last[s.Device] = s

	if seen && prev.Health == s.Health && prev.LastErrorCode == s.LastErrorCode {
		sw.log.Debug("device status", zap.Object("status", s))
		return nil
	}

	from := status.HealthUnknown
	if seen {
		from = prev.Health
	}
	sw.log.Info("device status changed",
		zap.Stringer("from", from),
		zap.Object("status", s),
	)
	return nil
}

// WriteAll delivers every snapshot of a cycle.
func WriteAll(sw StatusWriter, snaps []status.Snapshot) error {
	var errs error
	for _, s := range snaps {
		errs = multierr.Append(errs, sw.WriteStatus(s))
	}
	return errs
}
