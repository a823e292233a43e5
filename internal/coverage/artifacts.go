package coverage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// FunctionColumns is the column order of both coverage CSVs.
var FunctionColumns = []string{"function", "file", "count"}

// WriteFunctionsCSV writes one set of function records.
func WriteFunctionsCSV(path string, records []FunctionRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(FunctionColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.Name, rec.File, strconv.Itoa(rec.Count)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Manifest records how one coverage run was produced.
type Manifest struct {
	ReferenceTag string            `json:"reference_tag"`
	RunnerBinary string            `json:"runner_binary"`
	Workloads    []string          `json:"workloads"`
	Counts       ManifestCounts    `json:"counts"`
	Artifacts    map[string]string `json:"artifacts"`
}

type ManifestCounts struct {
	FunctionsInScope    int     `json:"functions_in_scope"`
	FunctionsExecuted   int     `json:"functions_executed"`
	FunctionCoveragePct float64 `json:"function_coverage_pct"`
	LineCoveragePct     float64 `json:"line_coverage_pct"`
}

// WriteManifest writes the coverage manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadManifest loads a coverage manifest, e.g. to recover workload ids for
// the surface mapper.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	return m, nil
}
