// internal/telemetry/telemetry.go

// Package telemetry reads the datalogger host itself: CPU, memory, disk
// and the board serial, as one extra reading per cycle.
package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/reading"
)

// DeviceName is the Device_Name of the host reading.
const DeviceName = "SOLARIAN_DATALOGGER"

const (
	mib = 1 << 20
	gib = 1 << 30
)

// Collector samples host statistics. The zero value is not usable; use New.
type Collector struct {
	log *zap.Logger

	procRoot string
	sysRoot  string
	diskPath string
	cpuinfo  string

	sample time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithRoots points the collector at alternative proc and sys mounts.
func WithRoots(proc, sys string) Option {
	return func(c *Collector) {
		c.procRoot = proc
		c.sysRoot = sys
	}
}

// WithDiskPath selects the filesystem reported as DISK_*.
func WithDiskPath(p string) Option { return func(c *Collector) { c.diskPath = p } }

// WithCPUInfo sets the cpuinfo file used for Device_Serial.
func WithCPUInfo(p string) Option { return func(c *Collector) { c.cpuinfo = p } }

// WithSampling sets the CPU usage sampling window and the sleep used for it.
func WithSampling(d time.Duration, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Collector) {
		c.sample = d
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(c *Collector) { c.now = now } }

// New returns a collector reading the live system by default.
func New(log *zap.Logger, opts ...Option) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Collector{
		log:      log,
		procRoot: procfs.DefaultMountPoint,
		sysRoot:  "/sys",
		diskPath: "/",
		cpuinfo:  DefaultCPUInfo,
		sample:   500 * time.Millisecond,
		sleep:    sleepContext,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Read collects one host reading.
// A missing CPU temperature is logged and reported as 0.
func (c *Collector) Read(ctx context.Context) (*reading.Reading, error) {
	at := c.now()

	proc, err := procfs.NewFS(c.procRoot)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	usage, err := c.cpuUsage(ctx, proc)
	if err != nil {
		return nil, err
	}

	load, err := proc.LoadAvg()
	if err != nil {
		return nil, fmt.Errorf("telemetry: loadavg: %w", err)
	}

	mi, err := proc.Meminfo()
	if err != nil {
		return nil, fmt.Errorf("telemetry: meminfo: %w", err)
	}
	ram := memoryFrom(mi)

	disk, err := diskUsage(c.diskPath)
	if err != nil {
		return nil, fmt.Errorf("telemetry: disk %s: %w", c.diskPath, err)
	}

	temp, err := cpuTemp(c.sysRoot)
	if err != nil {
		c.log.Warn("cpu temperature unavailable, using 0", zap.Error(err))
		temp = 0
	}

	r := reading.New()
	r.Set(reading.KeyDeviceName, DeviceName)
	r.Set("CPU_Temp", round(temp, 2))
	r.Set("CPU_Usage", usage)
	// 1/5/15 minute averages; the key names are kept for existing dashboards.
	r.Set("SystemLoad_5mins", load.Load1)
	r.Set("SystemLoad_10mins", load.Load5)
	r.Set("SystemLoad_15mins", load.Load15)
	r.Set("RAM_Cached", round(float64(ram.cached)/mib, 2))
	r.Set("RAM_Used", round(float64(ram.used)/mib, 2))
	r.Set("RAM_Free", round(float64(ram.free)/mib, 2))
	r.Set("RAM_Available", round(float64(ram.available)/mib, 2))
	r.Set("RAM_Percent", ram.percent())
	r.Set("DISK_Total", round(float64(disk.total)/gib, 2))
	r.Set("DISK_Used", round(float64(disk.used)/gib, 2))
	r.Set("DISK_Free", round(float64(disk.free)/gib, 2))
	r.Set("DISK_Percent", disk.percent())
	r.Set(reading.KeyDate, reading.FormatDate(at))
	r.Set("Device_Serial", Serial(c.cpuinfo))

	c.log.Debug("host telemetry acquired", zap.Duration("elapsed", c.now().Sub(at)))
	return r, nil
}

// ---- cpu ----

func (c *Collector) cpuUsage(ctx context.Context, proc procfs.FS) (float64, error) {
	first, err := proc.Stat()
	if err != nil {
		return 0, fmt.Errorf("telemetry: stat: %w", err)
	}
	if err := c.sleep(ctx, c.sample); err != nil {
		return 0, fmt.Errorf("telemetry: %w", err)
	}
	second, err := proc.Stat()
	if err != nil {
		return 0, fmt.Errorf("telemetry: stat: %w", err)
	}
	return busyPercent(first.CPUTotal, second.CPUTotal), nil
}

func busyPercent(a, b procfs.CPUStat) float64 {
	total := cpuTotal(b) - cpuTotal(a)
	if total <= 0 {
		return 0
	}
	idle := (b.Idle + b.Iowait) - (a.Idle + a.Iowait)
	return round((total-idle)/total*100, 1)
}

func cpuTotal(s procfs.CPUStat) float64 {
	return s.User + s.Nice + s.System + s.Idle + s.Iowait + s.IRQ + s.SoftIRQ + s.Steal
}

// ---- memory ----

type memory struct {
	total, free, available, cached, used uint64
}

func memoryFrom(mi procfs.Meminfo) memory {
	kb := func(p *uint64) uint64 {
		if p == nil {
			return 0
		}
		return *p * 1024
	}
	m := memory{
		total:     kb(mi.MemTotal),
		free:      kb(mi.MemFree),
		available: kb(mi.MemAvailable),
		cached:    kb(mi.Cached),
	}
	buffers := kb(mi.Buffers)

	m.used = m.total - m.free
	if m.used > m.cached+buffers {
		m.used -= m.cached + buffers
	}
	if mi.MemAvailable == nil {
		m.available = m.free + m.cached + buffers
	}
	return m
}

func (m memory) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return round(float64(m.total-min(m.available, m.total))/float64(m.total)*100, 1)
}

// ---- disk ----

type disk struct {
	total, used, free uint64
}

func (d disk) percent() float64 {
	if d.used+d.free == 0 {
		return 0
	}
	return round(float64(d.used)/float64(d.used+d.free)*100, 1)
}

// ---- helpers ----

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
