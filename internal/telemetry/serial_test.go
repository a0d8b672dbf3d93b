// internal/telemetry/serial_test.go
package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSerial(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"raspberry", "processor\t: 0\nSerial\t\t: 00000000deadbeef\n", "deadbeef"},
		{"absent", "processor\t: 0\nmodel name\t: ARMv7\n", SerialAbsent},
		{"short", "Serial\t: 1234\n", "1234"},
		{"last wins", "Serial\t: 00000000aaaaaaaa\nSerial\t: 00000000bbbbbbbb\n", "bbbbbbbb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSerial(strings.NewReader(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSerial_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(p, []byte("Serial\t\t: 100000001a2b3c4d\n"), 0o644))
	assert.Equal(t, "1a2b3c4d", Serial(p))

	assert.Equal(t, SerialUnreadable, Serial(filepath.Join(t.TempDir(), "missing")))
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "/", c.diskPath)
	assert.Equal(t, DefaultCPUInfo, c.cpuinfo)
	assert.Equal(t, "/sys", c.sysRoot)
}
