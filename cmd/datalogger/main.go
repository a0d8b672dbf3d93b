// cmd/datalogger/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/config"
	"github.com/solarian-energy/datalogger/internal/driver"
	"github.com/solarian-energy/datalogger/internal/logging"
	"github.com/solarian-energy/datalogger/internal/poller"
	"github.com/solarian-energy/datalogger/internal/poller/modbus"
	"github.com/solarian-energy/datalogger/internal/telemetry"
	"github.com/solarian-energy/datalogger/internal/writer"
	"github.com/solarian-energy/datalogger/internal/writer/sinks"
)

const (
	defaultConfig = "config.yml"
	mqttConfig    = "mqtt.yml"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "datalogger:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "datalogger",
		Usage: "poll plant devices over Modbus and store or publish their readings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultConfig, Usage: "device map, relative to <base-dir>/config"},
			&cli.StringFlag{Name: "base-dir", Usage: "root of config/, data/, tmp/ and logs/ (default: executable dir)"},
			&cli.StringFlag{Name: "log", Value: "WARNING", Usage: "level: DEBUG, INFO, WARNING, ERROR, CRITICAL"},
			&cli.BoolFlag{Name: "pi-analytics", Usage: "append a reading of the datalogger host"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print readings and logs to the terminal"},
			&cli.BoolFlag{Name: "write-disabled", Usage: "do not write data files"},
			&cli.BoolFlag{Name: "mqtt", Usage: "publish readings to the servers in mqtt.yml"},
			&cli.DurationFlag{Name: "interval", Usage: "poll continuously at this interval; 0 polls once"},
		},
		Action: func(c *cli.Context) error {
			s, err := settingsFrom(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, s)
		},
	}
}

type settings struct {
	BaseDir     string
	ConfigPath  string
	Level       string
	Analytics   bool
	Verbose     bool
	WriteFiles  bool
	MQTT        bool
	Interval    time.Duration
	CPUInfoPath string

	// dial replaces the Modbus dialer; nil means the real transport.
	dial driver.Dialer
}

func settingsFrom(c *cli.Context) (settings, error) {
	base := c.String("base-dir")
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return settings{}, fmt.Errorf("resolve base dir: %w", err)
		}
		base = filepath.Dir(exe)
	}
	return settings{
		BaseDir:     base,
		ConfigPath:  configPath(base, c.String("config")),
		Level:       c.String("log"),
		Analytics:   c.Bool("pi-analytics"),
		Verbose:     c.Bool("verbose"),
		WriteFiles:  !c.Bool("write-disabled"),
		MQTT:        c.Bool("mqtt"),
		Interval:    c.Duration("interval"),
		CPUInfoPath: telemetry.DefaultCPUInfo,
	}, nil
}

// configPath resolves a relative name under <base>/config.
func configPath(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(base, "config", name)
}

// configName is the file name without directory and extension.
func configName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func run(ctx context.Context, s settings) (err error) {
	start := time.Now()

	level, err := logging.ParseLevel(s.Level)
	if err != nil {
		return err
	}

	name := configName(s.ConfigPath)
	logDir := filepath.Join(s.BaseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("log dir: %w", err)
	}

	opts := logging.Options{
		File:       filepath.Join(logDir, "log_"+name+".log"),
		Level:      level,
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
	if s.Verbose {
		opts.Console = os.Stderr
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	log.Info("datalogger started", zap.String("config", s.ConfigPath), zap.Duration("interval", s.Interval))
	defer func() {
		log.Info("datalogger completed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	}()

	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		log.Error("config load failed", zap.Error(err))
		return err
	}

	var brokers *config.MQTTConfig
	if s.MQTT {
		brokers, err = config.LoadMQTT(filepath.Join(s.BaseDir, "config", mqttConfig))
		if err != nil {
			log.Error("mqtt config load failed", zap.Error(err))
			return err
		}
	}

	serial := telemetry.Serial(s.CPUInfoPath)

	sinkOpts := sinks.Options{
		BaseDir:    s.BaseDir,
		ConfigName: name,
		Serial:     serial,
		WriteFiles: s.WriteFiles,
		MQTT:       brokers,
		Log:        log.Named("writer"),
	}
	if s.Verbose {
		sinkOpts.Console = os.Stdout
	}
	out, err := sinks.Build(sinkOpts)
	if err != nil {
		return err
	}
	defer out.Close()

	dial := s.dial
	if dial == nil {
		dial = modbus.NewDialer(log.Named("modbus"))
	}
	base := poller.Config{
		Registry: driver.Default(),
		Env:      driver.Env{Log: log.Named("driver"), Dial: dial},
		Interval: s.Interval,
		Log:      log.Named("poller"),
	}
	if s.Interval > 0 {
		base.StaleAfter = 3 * s.Interval
	}
	if s.Analytics {
		base.Telemetry = telemetry.New(log.Named("telemetry"), telemetry.WithCPUInfo(s.CPUInfoPath))
	}

	p, err := poller.Build(cfg, base)
	if err != nil {
		return err
	}

	deliver(ctx, p, out, writer.NewDeviceStatusWriter(log.Named("status")), log)
	return nil
}

// deliver runs the poller and hands every result to the sinks. Sink errors
// are logged by the fan-out and never stop the loop.
func deliver(ctx context.Context, p *poller.Poller, out writer.Writer, sw writer.StatusWriter, log *zap.Logger) {
	results := make(chan poller.Result)
	go func() {
		defer close(results)
		p.Run(ctx, results)
	}()

	for res := range results {
		if err := out.Write(context.WithoutCancel(ctx), res); err != nil {
			log.Warn("cycle output incomplete", zap.Error(err))
		}
		if err := writer.WriteAll(sw, res.Status); err != nil {
			log.Warn("status write failed", zap.Error(err))
		}
	}
}
