// internal/writer/writer.go
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/poller"
)

// Fanout writes every result to all sinks in order.
type Fanout struct {
	writers []Writer
	log     *zap.Logger
}

var _ Writer = (*Fanout)(nil)

func NewFanout(log *zap.Logger, ws ...Writer) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{writers: ws, log: log}
}

func (f *Fanout) Name() string { return "fanout" }

// Write calls every sink, even after a failure, and returns the combined errors.
func (f *Fanout) Write(ctx context.Context, res poller.Result) error {
	var errs error
	for _, w := range f.writers {
		if err := w.Write(ctx, res); err != nil {
			f.log.Error("sink write failed", zap.String("sink", w.Name()), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("writer %s: %w", w.Name(), err))
			continue
		}
		f.log.Debug("sink write successful", zap.String("sink", w.Name()), zap.Int("readings", len(res.Batch)))
	}
	return errs
}

func (f *Fanout) Close() error {
	var errs error
	for _, w := range f.writers {
		errs = multierr.Append(errs, w.Close())
	}
	return errs
}

// Len reports the number of sinks.
func (f *Fanout) Len() int { return len(f.writers) }

// ---- console ----

// Console prints the batch as indented JSON.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console { return &Console{out: out} }

func (c *Console) Name() string { return "console" }

func (c *Console) Write(_ context.Context, res poller.Result) error {
	b, err := json.MarshalIndent(Payload(res), "", "    ")
	if err != nil {
		return err
	}
	_, err = c.out.Write(append(b, '\n'))
	return err
}

func (c *Console) Close() error { return nil }
