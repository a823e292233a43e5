package coverage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `{
  "data": [
    {
      "files": [
        {
          "filename": "/build/root/math/minuit2/src/MnHesse.cxx",
          "summary": {"lines": {"covered": 80, "count": 100}}
        },
        {
          "filename": "/build/root/core/base/TObject.cxx",
          "summary": {"lines": {"covered": 5, "count": 50}}
        }
      ],
      "functions": [
        {
          "name": "_ZN4ROOT7Minuit27MnHesseclEv",
          "count": 12,
          "filenames": ["/build/root/math/minuit2/src/MnHesse.cxx"]
        },
        {
          "name": "_ZN4ROOT7Minuit27MnCrossD2Ev",
          "count": 0,
          "filenames": ["/build/root/math/minuit2/src/MnCross.cxx"]
        },
        {
          "name": "_ZN7TObjectD2Ev",
          "count": 400,
          "filenames": ["/build/root/core/base/TObject.cxx"]
        },
        {
          "name": "orphan",
          "count": 3,
          "filenames": []
        }
      ]
    }
  ]
}`

func TestParseExportScopesAndNormalizes(t *testing.T) {
	r, err := ParseExport([]byte(sampleExport), "math/minuit2")
	require.NoError(t, err)

	assert.Equal(t, 2, r.FunctionsInScope)
	assert.Equal(t, 1, r.FunctionsExecuted)
	assert.Equal(t, 80, r.LinesCovered)
	assert.Equal(t, 100, r.LinesTotal)
	assert.InDelta(t, 50.0, r.FunctionCoveragePct(), 1e-9)
	assert.InDelta(t, 80.0, r.LineCoveragePct(), 1e-9)

	executed := r.Executed()
	require.Len(t, executed, 1)
	assert.Equal(t, "math/minuit2/src/MnHesse.cxx", executed[0].File)
	assert.Equal(t, 12, executed[0].Count)

	unexecuted := r.Unexecuted()
	require.Len(t, unexecuted, 1)
	assert.Equal(t, "_ZN4ROOT7Minuit27MnCrossD2Ev", unexecuted[0].Name)
}

func TestParseExportExecutedSortFirst(t *testing.T) {
	r, err := ParseExport([]byte(sampleExport), "math/minuit2")
	require.NoError(t, err)
	require.Len(t, r.Functions, 2)
	assert.Equal(t, 12, r.Functions[0].Count, "executed records sort before unexecuted")
}

func TestParseExportRejectsMalformedJSON(t *testing.T) {
	_, err := ParseExport([]byte("{"), "math/minuit2")
	assert.Error(t, err)
}

func TestEmptyReportPercentagesAreZero(t *testing.T) {
	r := &Report{}
	assert.Equal(t, 0.0, r.FunctionCoveragePct())
	assert.Equal(t, 0.0, r.LineCoveragePct())
}

func TestWriteFunctionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference_coverage", "executed_functions.csv")
	records := []FunctionRecord{{Name: "_Zf", File: "math/minuit2/src/A.cxx", Count: 7}}
	require.NoError(t, WriteFunctionsCSV(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "function,file,count\n_Zf,math/minuit2/src/A.cxx,7\n", string(data))
}

func TestManifestRoundTrip(t *testing.T) {
	m := Manifest{
		ReferenceTag: "v6-36-08",
		RunnerBinary: "ref_runner",
		Workloads:    []string{"rosenbrock_migrad"},
		Counts: ManifestCounts{
			FunctionsInScope:    100,
			FunctionsExecuted:   73,
			FunctionCoveragePct: 73.0,
			LineCoveragePct:     64.5,
		},
		Artifacts: map[string]string{"executed_functions_csv": "executed_functions.csv"},
	}
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}
