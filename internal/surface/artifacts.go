package surface

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// GapColumns is the column order of the gaps CSV.
var GapColumns = []string{
	"upstream_file", "upstream_symbol",
	"function_mangled", "function_demangled", "call_count",
	"mapping_status", "gap_priority",
	"waiver_types", "target_refs", "workload_ids", "notes",
}

// ReadExecutedCSV loads runtime-executed function records.
func ReadExecutedCSV(path string) ([]ExecutedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read executed csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range head {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"function", "file", "count"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("executed csv missing columns: %s", required)
		}
	}

	var out []ExecutedRecord
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read executed csv: %w", err)
		}
		out = append(out, ExecutedRecord{
			Function: strings.TrimSpace(record[col["function"]]),
			File:     strings.TrimSpace(record[col["file"]]),
			Count:    strings.TrimSpace(record[col["count"]]),
		})
	}
	return out, nil
}

// WriteGapsCSV writes the sorted gap list.
func WriteGapsCSV(path string, gaps []Gap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(GapColumns); err != nil {
		return err
	}
	for _, g := range gaps {
		record := []string{
			g.UpstreamFile, g.UpstreamSymbol,
			g.Mangled, g.Demangled, g.CallCount,
			g.MappingStatus, g.Priority,
			strings.Join(g.WaiverTypes, ";"),
			strings.Join(g.TargetRefs, ";"),
			strings.Join(g.WorkloadIDs, ";"),
			strings.Join(g.Notes, " | "),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadGapsCSV loads a previously written gap list, e.g. a gate baseline.
func ReadGapsCSV(path string) ([]Gap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read gaps csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range head {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"upstream_file", "upstream_symbol", "function_mangled", "gap_priority"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("gaps csv missing columns: %s", required)
		}
	}
	get := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var gaps []Gap
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read gaps csv: %w", err)
		}
		gaps = append(gaps, Gap{
			UpstreamFile:   get(record, "upstream_file"),
			UpstreamSymbol: get(record, "upstream_symbol"),
			Mangled:        get(record, "function_mangled"),
			Demangled:      get(record, "function_demangled"),
			CallCount:      get(record, "call_count"),
			MappingStatus:  get(record, "mapping_status"),
			Priority:       get(record, "gap_priority"),
			WaiverTypes:    splitList(get(record, "waiver_types"), ";"),
			TargetRefs:     splitList(get(record, "target_refs"), ";"),
			WorkloadIDs:    splitList(get(record, "workload_ids"), ";"),
			Notes:          splitList(get(record, "notes"), " | "),
		})
	}
	return gaps, nil
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// ID is the identity triple used by the non-regression gate.
func (g Gap) ID() string {
	return g.UpstreamFile + "::" + g.UpstreamSymbol + "::" + g.Mangled
}

// Manifest is the machine-readable run summary consumed by the gate.
type Manifest struct {
	ExecutedFunctionsTotal int               `json:"executed_functions_total"`
	MappedImplementedTotal int               `json:"mapped_implemented_total"`
	UnmappedTotal          int               `json:"unmapped_total"`
	PriorityCounts         map[string]int    `json:"priority_counts"`
	Gate                   ManifestGate      `json:"gate"`
	Workloads              []string          `json:"workloads"`
	Artifacts              map[string]string `json:"artifacts"`
}

type ManifestGate struct {
	Rule string `json:"rule"`
	Pass bool   `json:"pass"`
}

// BuildManifest assembles the manifest from a mapping result.
func BuildManifest(res *Result, workloads []string, mappingMD, gapsCSV string) Manifest {
	counts := map[string]int{
		"P0": res.PriorityCounts["P0"],
		"P1": res.PriorityCounts["P1"],
		"P2": res.PriorityCounts["P2"],
	}
	return Manifest{
		ExecutedFunctionsTotal: res.TotalExecuted,
		MappedImplementedTotal: res.MappedImplemented,
		UnmappedTotal:          len(res.Gaps),
		PriorityCounts:         counts,
		Gate: ManifestGate{
			Rule: "P0 == 0 and P1 == 0",
			Pass: res.GatePass(),
		},
		Workloads: workloads,
		Artifacts: map[string]string{
			"mapping_md": mappingMD,
			"gaps_csv":   gapsCSV,
		},
	}
}

// WriteManifest writes the manifest as indented JSON.
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

// ReadManifest loads a previously written manifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}
