// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/driver"
	"github.com/solarian-energy/datalogger/internal/reading"
	"github.com/solarian-energy/datalogger/internal/status"
)

// Config is the runtime config the poller needs.
type Config struct {
	Units    []Unit
	Registry *driver.Registry

	// Env is handed to every driver call. Env.Log is replaced by a
	// per-poller child when nil.
	Env driver.Env

	// Telemetry, when set, is read after all devices.
	Telemetry Source

	// Interval drives Run; PollOnce ignores it.
	Interval time.Duration

	// StaleAfter marks a failing device stale once its last good
	// reading is older than this. Zero disables.
	StaleAfter time.Duration

	Log *zap.Logger
}

// Poller reads every configured device once per cycle, sequentially.
type Poller struct {
	cfg     Config
	log     *zap.Logger
	tracker *status.Tracker
}

// New creates a poller with immutable config.
func New(cfg Config) (*Poller, error) {
	if cfg.Registry == nil {
		return nil, errors.New("poller: registry required")
	}
	if len(cfg.Units) == 0 {
		return nil, errors.New("poller: at least one unit required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("poller: interval must be >= 0")
	}

	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Env.Log == nil {
		cfg.Env.Log = log.Named("driver")
	}
	if cfg.Env.Now == nil {
		cfg.Env.Now = time.Now
	}

	units := make([]Unit, len(cfg.Units))
	copy(units, cfg.Units)
	cfg.Units = units

	return &Poller{
		cfg:     cfg,
		log:     log,
		tracker: status.NewTracker(cfg.StaleAfter),
	}, nil
}

// PollOnce performs exactly one acquisition cycle.
// A failing device is logged and skipped; it never aborts the cycle.
func (p *Poller) PollOnce(ctx context.Context) Result {
	now := p.cfg.Env.Now
	start := now()
	res := Result{At: start}

	for _, u := range p.cfg.Units {
		if !u.Enabled {
			p.log.Debug("device disabled", zap.String("device", u.Device.Name))
			res.Status = append(res.Status, p.tracker.Disabled(u.Device.Name, u.Driver, start))
			continue
		}

		r, snap := p.pollUnit(ctx, u)
		res.Status = append(res.Status, snap)
		if r != nil {
			res.Batch = append(res.Batch, r)
		}
	}

	if p.cfg.Telemetry != nil {
		r, err := p.cfg.Telemetry.Read(ctx)
		if err != nil {
			p.log.Error("telemetry read failed", zap.Error(err))
		} else {
			res.Batch = append(res.Batch, r)
			p.log.Debug("host telemetry appended")
		}
	}

	res.Elapsed = now().Sub(start)
	p.log.Info("cycle completed",
		zap.Int("readings", len(res.Batch)),
		zap.Object("devices", status.Summarize(res.Status)),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (p *Poller) pollUnit(ctx context.Context, u Unit) (*reading.Reading, status.Snapshot) {
	now := p.cfg.Env.Now
	start := now()
	log := p.log.With(zap.String("device", u.Device.Name), zap.String("driver", u.Driver))

	d, err := p.cfg.Registry.Lookup(u.Driver)
	if err != nil {
		log.Error("driver not found", zap.Error(err))
		return nil, p.tracker.Observe(u.Device.Name, u.Driver, start, 0, fmt.Errorf("poller: %w", err))
	}
	log.Debug("driver loaded",
		zap.String("version", d.Version()),
		zap.String("address", u.Device.Address),
		zap.Int("port", u.Device.Port),
	)

	r, err := d.Read(ctx, p.cfg.Env, u.Device)
	elapsed := now().Sub(start)
	snap := p.tracker.Observe(u.Device.Name, u.Driver, start, elapsed, err)
	if err != nil {
		log.Error("device read failed", zap.Object("status", snap))
		return nil, snap
	}
	return r, snap
}
