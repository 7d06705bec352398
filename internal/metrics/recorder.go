// Package metrics provides a small metrics recorder for classifier calls.
// A Recorder accumulates dimensions and values for one operation and flushes
// them as a single structured log event, so latency and error counts are
// visible with LAPSE_LOG_LEVEL=debug without any metrics backend.
package metrics

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Units attached to recorded values.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

type metricDef struct {
	Name  string
	Unit  string
	Value float64
}

// Recorder accumulates dimensions and metrics for a single flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per operation.
type Recorder struct {
	namespace  string
	dimensions map[string]string
	metrics    map[string]metricDef
	logger     *zerolog.Logger
}

// New creates a Recorder that flushes to the global logger.
func New(namespace string) *Recorder {
	return &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
	}
}

// To redirects the flush to a specific logger.
func (r *Recorder) To(l zerolog.Logger) *Recorder {
	r.logger = &l
	return r
}

// Dimension adds a dimension key-value pair.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit, Value: value}
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Value returns a recorded metric value.
func (r *Recorder) Value(name string) (float64, bool) {
	m, ok := r.metrics[name]
	return m.Value, ok
}

// Flush emits the recorded metrics as one debug event.
// After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	logger := log.Logger
	if r.logger != nil {
		logger = *r.logger
	}

	evt := logger.Debug().Str("namespace", r.namespace)

	dims := zerolog.Dict()
	for k, v := range r.dimensions {
		dims = dims.Str(k, v)
	}
	evt = evt.Dict("dimensions", dims)

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	values := zerolog.Dict()
	for _, name := range names {
		m := r.metrics[name]
		values = values.Dict(name, zerolog.Dict().Float64("value", m.Value).Str("unit", m.Unit))
	}
	evt.Dict("metrics", values).Msg("metrics")
}
