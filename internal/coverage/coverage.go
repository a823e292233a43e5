// Package coverage turns llvm-cov export payloads into the executed-surface
// datasets consumed by the mapper: per-function execution counts restricted
// to the legacy subtree under audit.
package coverage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// exportPayload mirrors the llvm-cov export JSON shape, keeping only the
// fields the pipeline reads.
type exportPayload struct {
	Data []struct {
		Files []struct {
			Filename string `json:"filename"`
			Summary  struct {
				Lines struct {
					Covered int `json:"covered"`
					Count   int `json:"count"`
				} `json:"lines"`
			} `json:"summary"`
		} `json:"files"`
		Functions []struct {
			Name      string   `json:"name"`
			Count     int      `json:"count"`
			Filenames []string `json:"filenames"`
		} `json:"functions"`
	} `json:"data"`
}

// FunctionRecord is one instrumented function with its execution count.
type FunctionRecord struct {
	Name  string
	File  string
	Count int
}

// Report is the in-scope view of one coverage export.
type Report struct {
	Functions []FunctionRecord
	// Executed and total function counts within scope.
	FunctionsExecuted int
	FunctionsInScope  int
	// Line totals summed over in-scope files.
	LinesCovered int
	LinesTotal   int
}

// FunctionCoveragePct is the executed share of in-scope functions.
func (r *Report) FunctionCoveragePct() float64 {
	if r.FunctionsInScope == 0 {
		return 0
	}
	return 100 * float64(r.FunctionsExecuted) / float64(r.FunctionsInScope)
}

// LineCoveragePct is the covered share of in-scope lines.
func (r *Report) LineCoveragePct() float64 {
	if r.LinesTotal == 0 {
		return 0
	}
	return 100 * float64(r.LinesCovered) / float64(r.LinesTotal)
}

// Executed returns the records with a nonzero count, in report order.
func (r *Report) Executed() []FunctionRecord {
	var out []FunctionRecord
	for _, f := range r.Functions {
		if f.Count > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Unexecuted returns the in-scope records that never ran.
func (r *Report) Unexecuted() []FunctionRecord {
	var out []FunctionRecord
	for _, f := range r.Functions {
		if f.Count == 0 {
			out = append(out, f)
		}
	}
	return out
}

// ParseExport reads an llvm-cov export payload and keeps functions whose
// primary file lies under the scope subdir (e.g. "math/minuit2"). File
// paths are normalized to be relative to the scope marker's parent.
func ParseExport(data []byte, scopeSubdir string) (*Report, error) {
	var payload exportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse llvm-cov export: %w", err)
	}

	scope := strings.Trim(scopeSubdir, "/")
	report := &Report{}

	for _, entry := range payload.Data {
		for _, f := range entry.Files {
			if !inScope(f.Filename, scope) {
				continue
			}
			report.LinesCovered += f.Summary.Lines.Covered
			report.LinesTotal += f.Summary.Lines.Count
		}
		for _, fn := range entry.Functions {
			if len(fn.Filenames) == 0 {
				continue
			}
			primary := fn.Filenames[0]
			if !inScope(primary, scope) {
				continue
			}
			report.FunctionsInScope++
			if fn.Count > 0 {
				report.FunctionsExecuted++
			}
			report.Functions = append(report.Functions, FunctionRecord{
				Name:  fn.Name,
				File:  normalizeFile(primary, scope),
				Count: fn.Count,
			})
		}
	}

	// Executed first, then by file and name, matching the CSV layout the
	// downstream join expects.
	sort.SliceStable(report.Functions, func(i, j int) bool {
		a, b := report.Functions[i], report.Functions[j]
		aZero, bZero := a.Count == 0, b.Count == 0
		if aZero != bZero {
			return !aZero
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Name < b.Name
	})
	return report, nil
}

func inScope(filename, scope string) bool {
	if scope == "" {
		return true
	}
	clean := strings.ReplaceAll(filename, "\\", "/")
	return strings.Contains(clean, "/"+scope+"/") || strings.HasPrefix(clean, scope+"/")
}

// normalizeFile rewrites an absolute build path to the scope-relative form
// used in traceability rows, e.g. ".../math/minuit2/src/MnHesse.cxx" to
// "math/minuit2/src/MnHesse.cxx".
func normalizeFile(filename, scope string) string {
	clean := strings.ReplaceAll(filename, "\\", "/")
	if scope == "" {
		return clean
	}
	if i := strings.Index(clean, "/"+scope+"/"); i >= 0 {
		return clean[i+1:]
	}
	return clean
}
