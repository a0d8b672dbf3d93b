// internal/telemetry/serial.go
package telemetry

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// DefaultCPUInfo is where the board serial is read from.
const DefaultCPUInfo = "/proc/cpuinfo"

const (
	SerialAbsent     = "00000000"
	SerialUnreadable = "ERROR0000"
)

// Serial returns the last 8 hex digits of the board serial in path.
func Serial(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return SerialUnreadable
	}
	defer f.Close()

	s, err := parseSerial(f)
	if err != nil {
		return SerialUnreadable
	}
	return s
}

func parseSerial(r io.Reader) (string, error) {
	serial := SerialAbsent

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Serial") {
			continue
		}
		_, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) > 8 {
			v = v[len(v)-8:]
		}
		if v != "" {
			serial = v
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return serial, nil
}
