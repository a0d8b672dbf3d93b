// internal/telemetry/sources_other.go

//go:build !linux

package telemetry

import "errors"

var errUnsupported = errors.New("telemetry: unsupported platform")

func cpuTemp(string) (float64, error) { return 0, errUnsupported }

func diskUsage(string) (disk, error) { return disk{}, errUnsupported }
