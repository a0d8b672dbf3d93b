// internal/poller/types.go
package poller

import (
	"context"
	"time"

	"github.com/solarian-energy/datalogger/internal/driver"
	"github.com/solarian-energy/datalogger/internal/reading"
	"github.com/solarian-energy/datalogger/internal/status"
)

// Unit is one configured device as the poller sees it.
type Unit struct {
	Device  driver.Device
	Driver  string
	Enabled bool
}

// Source produces a reading that is not tied to a field device.
type Source interface {
	Read(ctx context.Context) (*reading.Reading, error)
}

// Result is what one acquisition cycle produced.
type Result struct {
	At      time.Time
	Elapsed time.Duration

	// Batch holds the successful readings in configuration order,
	// followed by the telemetry reading when enabled.
	Batch reading.Batch

	// Status has one entry per unit, in configuration order.
	Status []status.Snapshot
}
