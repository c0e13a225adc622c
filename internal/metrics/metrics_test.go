package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := New()

	r.ObserveLLMAttempt("remote", "network")
	r.ObserveLLMAttempt("remote", "network")
	r.ObserveLLMAttempt("local", "success")
	r.ObserveLLMFailover("remote", "local")
	r.ObserveLLMExhausted()
	r.ObserveVerdict("denied")
	r.ObserveExecution("success")
	r.ObserveAction("click", "ok")
	r.ObserveRun("voice", "ok", 2*time.Second)

	require.Equal(t, 2.0, testutil.ToFloat64(r.LLMAttempts.WithLabelValues("remote", "network")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.LLMAttempts.WithLabelValues("local", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.LLMFailovers.WithLabelValues("remote", "local")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.LLMExhausted))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CommandVerdicts.WithLabelValues("denied")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CommandExecutions.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.AutomationActions.WithLabelValues("click", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("voice", "ok")))
	require.Equal(t, 1, testutil.CollectAndCount(r.RunDuration))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveVerdict("allowed")

	path := filepath.Join(t.TempDir(), "textfile", "lma.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `lma_commands_verdicts_total{verdict="allowed"} 1`)
}

func TestWriteTextfileEmptyPathIsNoop(t *testing.T) {
	require.NoError(t, New().WriteTextfile("  "))
}
