package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunLogger collects the configuration of a single classification run and
// emits it as one structured zerolog event, so a run can be reconstructed
// from its log output alone.
type RunLogger struct {
	name      string
	runID     string
	startedAt time.Time

	provider   string
	model      string
	capability string
	workers    int
	candidates int

	features map[string]bool
	config   map[string]string
}

// NewRunLogger creates a RunLogger for the named binary and assigns a fresh run id.
func NewRunLogger(name string) *RunLogger {
	return &RunLogger{
		name:      name,
		runID:     uuid.NewString(),
		startedAt: time.Now(),
		features:  make(map[string]bool),
		config:    make(map[string]string),
	}
}

// RunID returns the identifier attached to every event of this run.
func (r *RunLogger) RunID() string {
	return r.runID
}

// Provider records the classifier provider and model.
func (r *RunLogger) Provider(name, model string) *RunLogger {
	r.provider = name
	r.model = model
	return r
}

// Capability records the terminal graphics capability chosen by the probe.
func (r *RunLogger) Capability(c string) *RunLogger {
	r.capability = c
	return r
}

// Workers records the classification pool size.
func (r *RunLogger) Workers(n int) *RunLogger {
	r.workers = n
	return r
}

// Candidates records how many images were enumerated.
func (r *RunLogger) Candidates(n int) *RunLogger {
	r.candidates = n
	return r
}

// Feature registers a boolean toggle (e.g. "autoConfirm").
func (r *RunLogger) Feature(name string, enabled bool) *RunLogger {
	r.features[name] = enabled
	return r
}

// Config registers a non-sensitive configuration key-value pair.
func (r *RunLogger) Config(key, value string) *RunLogger {
	r.config[key] = value
	return r
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Attach makes every subsequent global log event carry the run id.
func (r *RunLogger) Attach() {
	log.Logger = log.With().Str("run", r.runID).Logger()
}

// Log emits a single structured INFO log event with all collected information.
func (r *RunLogger) Log() {
	evt := log.Info()

	run := zerolog.Dict().
		Str("name", r.name).
		Str("id", r.runID).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", EnvOrDefault("LAPSE_LOG_LEVEL", "info"))
	evt = evt.Dict("run", run)

	classifier := zerolog.Dict().
		Str("provider", r.provider).
		Str("model", r.model).
		Int("workers", r.workers)
	evt = evt.Dict("classifier", classifier)

	if r.capability != "" {
		evt = evt.Str("terminal", r.capability)
	}
	evt = evt.Int("candidates", r.candidates)

	if len(r.features) > 0 {
		d := zerolog.Dict()
		for k, v := range r.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(r.config) > 0 {
		evt = evt.Dict("config", dictFromMap(r.config))
	}

	evt = evt.Dur("setupDuration", time.Since(r.startedAt))

	evt.Msg("Run configured")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
