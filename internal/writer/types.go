// internal/writer/types.go
package writer

import (
	"context"

	"github.com/solarian-energy/datalogger/internal/poller"
	"github.com/solarian-energy/datalogger/internal/reading"
)

// Writer delivers the batch of one cycle to a sink.
// A failing Write does not affect other sinks.
type Writer interface {
	Name() string
	Write(ctx context.Context, res poller.Result) error
	Close() error
}

// Payload returns the batch to encode; an empty cycle encodes as [].
func Payload(res poller.Result) reading.Batch {
	if res.Batch == nil {
		return reading.Batch{}
	}
	return res.Batch
}
