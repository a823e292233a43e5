package diffcmp

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ResultColumns is the column order of diff_results.csv.
var ResultColumns = []string{
	"workload", "status", "issues", "warnings",
	"fval_abs", "edm_abs", "max_param_abs", "max_error_abs",
	"max_cov_abs", "minos_abs", "nfcn_rel",
}

// Row pairs a workload id with its comparison outcome.
type Row struct {
	Workload string
	Outcome  Outcome
}

// WriteResultsCSV writes per-workload diff outcomes.
func WriteResultsCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ResultColumns); err != nil {
		return err
	}
	for _, row := range rows {
		o := row.Outcome
		record := []string{
			row.Workload,
			o.Status,
			strings.Join(o.Issues, " | "),
			strings.Join(o.Warnings, " | "),
			fmt.Sprintf("%.6e", o.FvalAbs),
			fmt.Sprintf("%.6e", o.EdmAbs),
			fmt.Sprintf("%.6e", o.MaxParamAbs),
			fmt.Sprintf("%.6e", o.MaxErrorAbs),
			fmt.Sprintf("%.6e", o.MaxCovAbs),
			fmt.Sprintf("%.6e", o.MinosAbs),
			fmt.Sprintf("%.6e", o.NfcnRel),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadStatuses loads workload id to status pairs from a diff results CSV,
// keeping file order. The gate consumes this view.
func ReadStatuses(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read diff results header: %w", err)
	}
	col := map[string]int{}
	for i, name := range head {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"workload", "status"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("diff results missing columns: %s", required)
		}
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read diff results: %w", err)
		}
		rows = append(rows, Row{
			Workload: strings.TrimSpace(record[col["workload"]]),
			Outcome:  Outcome{Status: strings.TrimSpace(record[col["status"]])},
		})
	}
	return rows, nil
}
