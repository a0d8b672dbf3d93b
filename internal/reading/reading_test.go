// internal/reading/reading_test.go
package reading

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice_HeaderOrderAndDate(t *testing.T) {
	at := time.Date(2021, 3, 4, 15, 16, 47, 999, time.FixedZone("TRT", 3*3600))
	r := NewDevice("INV-1", "_inv", at)

	assert.Equal(t, []string{KeyDeviceName, KeyMeasurementSuffix, KeyDate}, r.Keys())
	assert.Equal(t, "2021-03-04T12:16:00Z", r.Text(KeyDate))
	assert.Equal(t, "INV-1", r.DeviceName())
}

func TestMarshalJSON_PreservesInsertionOrder(t *testing.T) {
	r := New()
	r.Set("b", 2.5)
	r.Set("a", "x")
	r.Set("c", 0.0)
	r.Set("b", 3.0) // position kept

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":3,"a":"x","c":0}`, string(out))
}

func TestBatch_MarshalsAsArray(t *testing.T) {
	r1 := New()
	r1.Set("x", 1.0)
	r2 := New()
	r2.Set("y", 2.0)

	out, err := json.Marshal(Batch{r1, r2})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":1},{"y":2}]`, string(out))
}

func TestAccessors(t *testing.T) {
	r := New()
	r.Set("f", 1.5)
	r.Set("s", "str")

	f, ok := r.Float("f")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	_, ok = r.Float("s")
	assert.False(t, ok)
	assert.Equal(t, "", r.Text("f"))
	assert.Equal(t, 2, r.Len())

	keys := r.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "f", r.Keys()[0])
}
