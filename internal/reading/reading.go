// internal/reading/reading.go

// Package reading holds the decoded output of one device for one cycle.
package reading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Mandatory keys present in every reading, in this order.
const (
	KeyDeviceName        = "Device_Name"
	KeyMeasurementSuffix = "Measurement_Suffix"
	KeyDate              = "Date"
)

// DateLayout is the minute-truncated UTC timestamp format.
const DateLayout = "2006-01-02T15:04:00Z"

// Reading is an ordered mapping of field name to value.
// Values are float64 or string.
type Reading struct {
	keys   []string
	values map[string]any
}

// New returns an empty reading.
func New() *Reading {
	return &Reading{values: make(map[string]any)}
}

// NewDevice returns a reading seeded with the device header fields.
func NewDevice(deviceName, suffix string, at time.Time) *Reading {
	r := New()
	r.Set(KeyDeviceName, deviceName)
	r.Set(KeyMeasurementSuffix, suffix)
	r.Set(KeyDate, FormatDate(at))
	return r
}

// FormatDate renders t as UTC truncated to the minute.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Set stores a value. Re-setting a key keeps its original position.
func (r *Reading) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Reading) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Float returns the float64 stored under key.
func (r *Reading) Float(key string) (float64, bool) {
	v, ok := r.values[key].(float64)
	return v, ok
}

// Text returns the string stored under key.
func (r *Reading) Text(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// DeviceName is a shorthand for the Device_Name field.
func (r *Reading) DeviceName() string {
	return r.Text(KeyDeviceName)
}

// Keys returns the field names in insertion order.
func (r *Reading) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Reading) Len() int { return len(r.keys) }

// MarshalJSON encodes the reading as an object with keys in insertion order.
func (r *Reading) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("reading: field %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Batch is the ordered set of readings produced by one acquisition cycle.
type Batch []*Reading
