// internal/writer/writer_test.go
package writer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solarian-energy/datalogger/internal/poller"
	"github.com/solarian-energy/datalogger/internal/reading"
)

type recordingWriter struct {
	name   string
	err    error
	writes int
	closed bool
}

func (r *recordingWriter) Name() string { return r.name }

func (r *recordingWriter) Write(context.Context, poller.Result) error {
	r.writes++
	return r.err
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func TestFanout_FailingSinkDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bad := &recordingWriter{name: "file", err: errors.New("disk full")}
	good := &recordingWriter{name: "mqtt"}

	f := NewFanout(zap.New(core), bad, good)
	err := f.Write(context.Background(), poller.Result{})

	require.Error(t, err)
	assert.ErrorContains(t, err, "writer file: disk full")
	assert.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, 1, bad.writes)
	assert.Equal(t, 1, good.writes)
	assert.Equal(t, 1, logs.FilterMessage("sink write failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("sink write successful").Len())

	require.NoError(t, f.Close())
	assert.True(t, bad.closed)
	assert.True(t, good.closed)
	assert.Equal(t, 2, f.Len())
}

func TestConsole_IndentedOrderedJSON(t *testing.T) {
	r := reading.New()
	r.Set(reading.KeyDeviceName, "INV-1")
	r.Set("Active_Power", 12)

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Write(context.Background(), poller.Result{Batch: reading.Batch{r}}))

	want := "[\n    {\n        \"Device_Name\": \"INV-1\",\n        \"Active_Power\": 12\n    }\n]\n"
	assert.Equal(t, want, buf.String())
}

func TestConsole_EmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Write(context.Background(), poller.Result{}))
	assert.Equal(t, "[]\n", buf.String())
}
