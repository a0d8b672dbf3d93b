// internal/writer/sinks/sinks.go

// Package sinks assembles the output fan-out from runtime options.
package sinks

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/config"
	"github.com/solarian-energy/datalogger/internal/writer"
	"github.com/solarian-energy/datalogger/internal/writer/file"
	"github.com/solarian-energy/datalogger/internal/writer/mqtt"
)

// Options selects which sinks are built.
type Options struct {
	BaseDir    string
	ConfigName string
	Serial     string

	// WriteFiles enables the gzip file sink under BaseDir/data.
	WriteFiles bool
	// Console, when set, receives every batch as indented JSON.
	Console io.Writer
	// MQTT, when set, enables the broker sink.
	MQTT *config.MQTTConfig
	// MQTTDial replaces the paho client, for tests.
	MQTTDial mqtt.Dialer

	Log *zap.Logger
}

// DataDir and TmpDir are the output directories under a base directory.
func DataDir(base string) string { return filepath.Join(base, "data") }
func TmpDir(base string) string  { return filepath.Join(base, "tmp") }

// Build creates every selected sink. On error, sinks already built are closed.
func Build(opts Options) (*writer.Fanout, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	var ws []writer.Writer
	fail := func(err error) (*writer.Fanout, error) {
		for _, w := range ws {
			err = multierr.Append(err, w.Close())
		}
		return nil, err
	}

	if opts.Console != nil {
		ws = append(ws, writer.NewConsole(opts.Console))
	}

	if opts.WriteFiles {
		if opts.BaseDir == "" {
			return fail(errors.New("sinks: base dir required for file output"))
		}
		fw, err := file.New(file.Options{
			DataDir:    DataDir(opts.BaseDir),
			TmpDir:     TmpDir(opts.BaseDir),
			Serial:     opts.Serial,
			ConfigName: opts.ConfigName,
			Log:        log.Named("file"),
		})
		if err != nil {
			return fail(fmt.Errorf("sinks: %w", err))
		}
		ws = append(ws, fw)
	}

	if opts.MQTT != nil {
		mw, err := mqtt.New(mqtt.Options{
			Servers:    opts.MQTT.Servers,
			Serial:     opts.Serial,
			ConfigName: opts.ConfigName,
			Dial:       opts.MQTTDial,
			Log:        log.Named("mqtt"),
		})
		if err != nil {
			return fail(fmt.Errorf("sinks: %w", err))
		}
		ws = append(ws, mw)
	}

	names := make([]string, 0, len(ws))
	for _, w := range ws {
		names = append(names, w.Name())
	}
	log.Debug("sinks configured", zap.Strings("sinks", names))

	return writer.NewFanout(log, ws...), nil
}
