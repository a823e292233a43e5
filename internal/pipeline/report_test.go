package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStageLifecycle(t *testing.T) {
	r := NewReport("parity")

	h := r.BeginStage("fetch")
	r.EndStage(h, map[string]float64{"files": 42}, []string{"reports/parity/functions.csv"}, nil)

	h = r.BeginStage("match")
	r.EndStage(h, nil, nil, errors.New("index empty"))

	r.Finalize()
	require.Len(t, r.Stages, 2)
	assert.Equal(t, "ok", r.Stages[0].Status)
	assert.Equal(t, 42.0, r.Stages[0].Counters["files"])
	assert.Equal(t, "error", r.Stages[1].Status)
	assert.Equal(t, "index empty", r.Stages[1].Error)
	assert.Equal(t, 2, r.Summary.StageCount)
	assert.Equal(t, 1, r.Summary.FailedStages)
}

func TestReportSignalOrdering(t *testing.T) {
	r := NewReport("gate")
	r.AddSignal("gate_fail", "surface", "info", "P2 only", 3)
	r.AddSignal("gate_fail", "traceability", "critical", "unresolved rows", 12)
	r.AddSignal("", "surface", "warning", "ignored", 0)

	r.Finalize()
	require.Len(t, r.Signals, 2)
	assert.Equal(t, "critical", r.Signals[0].Severity)
	assert.Equal(t, map[string]int{"critical": 1, "info": 1}, r.Summary.SignalsBySeverity)
}

func TestReportSave(t *testing.T) {
	r := NewReport("matrix")
	h := r.BeginStage("resolve")
	r.EndStage(h, map[string]float64{"rows": 10, " ": 1}, nil, nil)

	path := filepath.Join(t.TempDir(), "nested", "pipeline_report.json")
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Report
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "v1", loaded.Version)
	assert.Equal(t, "matrix", loaded.Stage)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, 10.0, loaded.Stages[0].Counters["rows"])
	_, hasBlank := loaded.Stages[0].Counters[" "]
	assert.False(t, hasBlank)
}

func TestReportNilSafe(t *testing.T) {
	var r *Report
	r.EndStage(StageHandle{name: "x"}, nil, nil, nil)
	r.AddSignal("c", "s", "info", "m", 0)
	r.Finalize()
	assert.NoError(t, r.Save(filepath.Join(t.TempDir(), "r.json")))
}
