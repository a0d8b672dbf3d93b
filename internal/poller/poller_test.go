// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solarian-energy/datalogger/internal/config"
	"github.com/solarian-energy/datalogger/internal/driver"
	"github.com/solarian-energy/datalogger/internal/reading"
	"github.com/solarian-energy/datalogger/internal/status"
)

// fakeDriver fails for the device names in fail.
type fakeDriver struct {
	id    string
	fail  map[string]bool
	calls []string

	// onRead runs inside Read, before returning.
	onRead func(ctx context.Context)
	ctxErr []error
}

func (f *fakeDriver) ID() string      { return f.id }
func (f *fakeDriver) Version() string { return "FAKE v1" }

func (f *fakeDriver) Read(ctx context.Context, env driver.Env, dev driver.Device) (*reading.Reading, error) {
	f.calls = append(f.calls, dev.Name)
	if f.onRead != nil {
		f.onRead(ctx)
	}
	f.ctxErr = append(f.ctxErr, ctx.Err())
	if f.fail[dev.Name] {
		return nil, driver.ErrReadFailed
	}
	return reading.NewDevice(dev.Name, dev.Suffix, env.Now()), nil
}

type fakeSource struct {
	err error
}

func (s fakeSource) Read(context.Context) (*reading.Reading, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := reading.New()
	r.Set(reading.KeyDeviceName, "SOLARIAN_DATALOGGER")
	return r, nil
}

func unit(name, drv string, enabled bool) Unit {
	return Unit{Device: driver.Device{Name: name}, Driver: drv, Enabled: enabled}
}

func newPoller(t *testing.T, d *fakeDriver, units []Unit, telemetry Source) (*Poller, *observer.ObservedLogs) {
	t.Helper()
	reg, err := driver.NewRegistry(d)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	p, err := New(Config{
		Units:     units,
		Registry:  reg,
		Telemetry: telemetry,
		Log:       zap.New(core),
	})
	require.NoError(t, err)
	return p, logs
}

func names(b reading.Batch) []string {
	out := make([]string, 0, len(b))
	for _, r := range b {
		out = append(out, r.DeviceName())
	}
	return out
}

// ---- tests ----

func TestPollOnce_FailuresAreSkippedInOrder(t *testing.T) {
	d := &fakeDriver{id: "fake", fail: map[string]bool{"B": true, "D": true}}
	p, logs := newPoller(t, d, []Unit{
		unit("A", "fake", true),
		unit("B", "fake", true),
		unit("C", "fake", true),
		unit("D", "fake", true),
		unit("E", "fake", true),
	}, nil)

	res := p.PollOnce(context.Background())

	assert.Equal(t, []string{"A", "C", "E"}, names(res.Batch))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, d.calls)
	require.Len(t, res.Status, 5)
	assert.Equal(t, status.HealthError, res.Status[1].Health)
	assert.Equal(t, status.CodeReadFailed, res.Status[1].LastErrorCode)
	assert.Equal(t, status.HealthOK, res.Status[4].Health)
	assert.Equal(t, 2, logs.FilterMessage("device read failed").Len())
}

func TestPollOnce_DisabledAndUnknown(t *testing.T) {
	d := &fakeDriver{id: "fake"}
	p, logs := newPoller(t, d, []Unit{
		unit("A", "fake", false),
		unit("B", "acme_9000", true),
		unit("C", "fake", true),
	}, nil)

	res := p.PollOnce(context.Background())

	assert.Equal(t, []string{"C"}, names(res.Batch))
	assert.Equal(t, []string{"C"}, d.calls)
	assert.Equal(t, status.HealthDisabled, res.Status[0].Health)
	assert.Equal(t, status.HealthError, res.Status[1].Health)
	assert.Equal(t, status.CodeUnknownDriver, res.Status[1].LastErrorCode)
	assert.True(t, errors.Is(res.Status[1].Err, driver.ErrUnknownDriver))
	assert.Equal(t, 1, logs.FilterMessage("driver not found").Len())
	assert.Equal(t, 1, logs.FilterMessage("driver loaded").Len())
}

func TestPollOnce_TelemetryAppendedLast(t *testing.T) {
	d := &fakeDriver{id: "fake"}
	p, _ := newPoller(t, d, []Unit{unit("A", "fake", true), unit("B", "fake", true)}, fakeSource{})

	res := p.PollOnce(context.Background())
	assert.Equal(t, []string{"A", "B", "SOLARIAN_DATALOGGER"}, names(res.Batch))
	assert.Len(t, res.Status, 2)
}

func TestPollOnce_TelemetryFailureSkipped(t *testing.T) {
	d := &fakeDriver{id: "fake"}
	p, logs := newPoller(t, d, []Unit{unit("A", "fake", true)}, fakeSource{err: errors.New("no /proc")})

	res := p.PollOnce(context.Background())
	assert.Equal(t, []string{"A"}, names(res.Batch))
	assert.Equal(t, 1, logs.FilterMessage("telemetry read failed").Len())
}

func TestPollOnce_AllFail(t *testing.T) {
	d := &fakeDriver{id: "fake", fail: map[string]bool{"A": true}}
	p, _ := newPoller(t, d, []Unit{unit("A", "fake", true)}, nil)

	res := p.PollOnce(context.Background())
	assert.Empty(t, res.Batch)
	assert.Len(t, res.Status, 1)
}

func TestNew_Validation(t *testing.T) {
	reg := driver.Default()

	_, err := New(Config{Units: []Unit{unit("A", "x", true)}})
	assert.Error(t, err)

	_, err = New(Config{Registry: reg})
	assert.Error(t, err)

	_, err = New(Config{Registry: reg, Units: []Unit{unit("A", "x", true)}, Interval: -time.Second})
	assert.Error(t, err)
}

func TestRun_SingleCycle(t *testing.T) {
	d := &fakeDriver{id: "fake"}
	p, _ := newPoller(t, d, []Unit{unit("A", "fake", true)}, nil)

	out := make(chan Result, 1)
	p.Run(context.Background(), out)

	require.Len(t, out, 1)
	res := <-out
	assert.Equal(t, []string{"A"}, names(res.Batch))
}

func TestRun_CancelDoesNotInterruptInFlightRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &fakeDriver{id: "fake", onRead: func(context.Context) { cancel() }}

	reg, err := driver.NewRegistry(d)
	require.NoError(t, err)
	p, err := New(Config{Units: []Unit{unit("A", "fake", true), unit("B", "fake", true)}, Registry: reg, Interval: time.Hour})
	require.NoError(t, err)

	out := make(chan Result)
	go func() {
		defer close(out)
		p.Run(ctx, out)
	}()

	var got []Result
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case res, ok := <-out:
			if !ok {
				done = true
				break
			}
			got = append(got, res)
		case <-timeout:
			t.Fatal("Run did not stop after cancel")
		}
	}

	// the cycle in flight finished both devices with a live context
	assert.Equal(t, []string{"A", "B"}, d.calls)
	assert.Equal(t, []error{nil, nil}, d.ctxErr)
	require.Len(t, got, 1, "the completed cycle is delivered")
	assert.Len(t, got[0].Status, 2)
}

func TestRun_CancelledCycleAlwaysDelivered(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		d := &fakeDriver{id: "fake", onRead: func(context.Context) { cancel() }}
		reg, err := driver.NewRegistry(d)
		require.NoError(t, err)
		p, err := New(Config{Units: []Unit{unit("A", "fake", true)}, Registry: reg})
		require.NoError(t, err)

		out := make(chan Result)
		go func() {
			defer close(out)
			p.Run(ctx, out)
		}()

		n := 0
		for range out {
			n++
		}
		require.Equal(t, 1, n, "iteration %d", i)
	}
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	d := &fakeDriver{id: "fake"}
	p, _ := newPoller(t, d, []Unit{unit("A", "fake", true)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Result, 1)
	p.Run(ctx, out)
	assert.Empty(t, d.calls)
}

func TestBuild_FromConfig(t *testing.T) {
	off := false
	c := &config.Config{Devices: []config.DeviceConfig{
		{Name: "INV-1", Driver: "inv_abb_pvs800", IPAddress: "10.0.0.2", Port: 502, SlaveID: 3, Measurement: "_inv"},
		{Name: "WS", Driver: "sensor_meteorology_boydak", Enabled: &off},
	}}

	p, err := Build(c, Config{Registry: driver.Default()})
	require.NoError(t, err)
	require.Len(t, p.cfg.Units, 2)
	assert.Equal(t, Unit{
		Device:  driver.Device{Name: "INV-1", Suffix: "_inv", Address: "10.0.0.2", Port: 502, UnitID: 3},
		Driver:  "inv_abb_pvs800",
		Enabled: true,
	}, p.cfg.Units[0])
	assert.False(t, p.cfg.Units[1].Enabled)
}
