// internal/telemetry/sources_linux.go

//go:build linux

package telemetry

import (
	"errors"
	"strings"

	"github.com/prometheus/procfs/sysfs"
	"golang.org/x/sys/unix"
)

// cpuTemp returns the SoC temperature in °C, preferring the "cpu-thermal" zone.
func cpuTemp(sysRoot string) (float64, error) {
	fs, err := sysfs.NewFS(sysRoot)
	if err != nil {
		return 0, err
	}
	zones, err := fs.ClassThermalZoneStats()
	if err != nil {
		return 0, err
	}
	if len(zones) == 0 {
		return 0, errors.New("no thermal zones")
	}

	z := zones[0]
	for _, cand := range zones {
		if strings.Contains(cand.Type, "cpu") {
			z = cand
			break
		}
	}
	return float64(z.Temp) / 1000, nil
}

func diskUsage(path string) (disk, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return disk{}, err
	}
	bs := uint64(st.Frsize)
	if bs == 0 {
		bs = uint64(st.Bsize)
	}
	return disk{
		total: st.Blocks * bs,
		used:  (st.Blocks - st.Bfree) * bs,
		free:  st.Bavail * bs,
	}, nil
}
