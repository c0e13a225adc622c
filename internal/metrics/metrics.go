// Package metrics counts gateway activity in a private Prometheus registry.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "lma"

// Recorder owns the registry and every collector the assistant updates.
type Recorder struct {
	Registry *prometheus.Registry

	LLMAttempts       *prometheus.CounterVec
	LLMFailovers      *prometheus.CounterVec
	LLMExhausted      prometheus.Counter
	CommandVerdicts   *prometheus.CounterVec
	CommandExecutions *prometheus.CounterVec
	AutomationActions *prometheus.CounterVec
	Runs              *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
}

// New creates a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),

		LLMAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "llm",
			Name:      "attempts_total",
			Help:      "LLM request attempts by backend and outcome.",
		}, []string{"backend", "outcome"}),

		LLMFailovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "llm",
			Name:      "failovers_total",
			Help:      "Switches from the primary to the fallback backend.",
		}, []string{"from", "to"}),

		LLMExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "llm",
			Name:      "exhausted_total",
			Help:      "Prompts for which every backend failed.",
		}),

		CommandVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "commands",
			Name:      "verdicts_total",
			Help:      "Security policy verdicts for extracted command candidates.",
		}, []string{"verdict"}),

		CommandExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "commands",
			Name:      "executions_total",
			Help:      "Executed commands by outcome.",
		}, []string{"outcome"}),

		AutomationActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "automation",
			Name:      "actions_total",
			Help:      "Applied automation actions by kind and outcome.",
		}, []string{"kind", "outcome"}),

		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "runs_total",
			Help:      "Pipeline runs by trigger mode and outcome.",
		}, []string{"mode", "outcome"}),

		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of pipeline runs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"mode"}),
	}

	r.Registry.MustRegister(
		r.LLMAttempts,
		r.LLMFailovers,
		r.LLMExhausted,
		r.CommandVerdicts,
		r.CommandExecutions,
		r.AutomationActions,
		r.Runs,
		r.RunDuration,
	)
	return r
}

func (r *Recorder) ObserveLLMAttempt(backend string, outcome string) {
	r.LLMAttempts.WithLabelValues(backend, outcome).Inc()
}

func (r *Recorder) ObserveLLMFailover(from string, to string) {
	r.LLMFailovers.WithLabelValues(from, to).Inc()
}

func (r *Recorder) ObserveLLMExhausted() {
	r.LLMExhausted.Inc()
}

func (r *Recorder) ObserveVerdict(verdict string) {
	r.CommandVerdicts.WithLabelValues(verdict).Inc()
}

func (r *Recorder) ObserveExecution(outcome string) {
	r.CommandExecutions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveAction(kind string, outcome string) {
	r.AutomationActions.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) ObserveRun(mode string, outcome string, elapsed time.Duration) {
	r.Runs.WithLabelValues(mode, outcome).Inc()
	r.RunDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// WriteTextfile exports the registry in node-exporter textfile format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
