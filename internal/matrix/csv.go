package matrix

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParityColumns is the column order of the parity CSV.
var ParityColumns = []string{
	"upstream_repo", "upstream_subdir", "upstream_ref", "upstream_commit",
	"upstream_file", "upstream_symbol", "upstream_line",
	"target_file", "target_symbol", "target_line",
	"status", "rationale",
}

// MatrixColumns is the column order of the traceability matrix CSV.
var MatrixColumns = []string{
	"legacy_id",
	"upstream_repo", "upstream_subdir", "upstream_ref", "upstream_commit",
	"upstream_file", "upstream_symbol", "upstream_line",
	"target_file", "target_symbol", "target_line",
	"raw_status", "effective_status", "waived",
	"waiver_type", "waiver_reason", "waiver_source",
	"ambiguous_implemented", "rationale",
}

// header maps column names to indexes and rejects missing required columns.
type header map[string]int

func readHeader(r *csv.Reader, required []string, what string) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", what, err)
	}
	h := header{}
	for i, name := range record {
		h[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s missing columns: %s", what, strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadParityCSV loads parity rows, validating the column set.
func ReadParityCSV(path string) ([]ParityRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r, ParityColumns, "parity csv")
	if err != nil {
		return nil, err
	}

	var rows []ParityRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parity csv: %w", err)
		}
		rows = append(rows, ParityRow{
			UpstreamRepo:   h.get(record, "upstream_repo"),
			UpstreamSubdir: h.get(record, "upstream_subdir"),
			UpstreamRef:    h.get(record, "upstream_ref"),
			UpstreamCommit: h.get(record, "upstream_commit"),
			UpstreamFile:   h.get(record, "upstream_file"),
			UpstreamSymbol: h.get(record, "upstream_symbol"),
			UpstreamLine:   h.get(record, "upstream_line"),
			TargetFile:     h.get(record, "target_file"),
			TargetSymbol:   h.get(record, "target_symbol"),
			TargetLine:     h.get(record, "target_line"),
			Status:         h.get(record, "status"),
			Rationale:      h.get(record, "rationale"),
		})
	}
	return rows, nil
}

// WriteParityCSV writes parity rows, creating parent directories.
func WriteParityCSV(path string, rows []ParityRow) error {
	return writeCSV(path, ParityColumns, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.UpstreamRepo, r.UpstreamSubdir, r.UpstreamRef, r.UpstreamCommit,
			r.UpstreamFile, r.UpstreamSymbol, r.UpstreamLine,
			r.TargetFile, r.TargetSymbol, r.TargetLine,
			r.Status, r.Rationale,
		}
	})
}

// ReadWaivers loads explicit waivers. A missing file is an empty set.
func ReadWaivers(path string) ([]Waiver, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r, []string{"legacy_id", "waiver_type", "reason"}, "waiver file")
	if err != nil {
		return nil, err
	}

	var out []Waiver
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read waiver file: %w", err)
		}
		id := h.get(record, "legacy_id")
		if id == "" {
			continue
		}
		out = append(out, Waiver{
			LegacyID: id,
			Type:     h.get(record, "waiver_type"),
			Reason:   h.get(record, "reason"),
		})
	}
	return out, nil
}

// ReadWaiverRules loads the ordered rule list and compiles its regex
// filters. A missing file is an empty list.
func ReadWaiverRules(path string) ([]WaiverRule, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	required := []string{
		"raw_status", "rationale_contains",
		"upstream_file_regex", "upstream_symbol_regex",
		"waiver_type", "reason",
	}
	r := csv.NewReader(f)
	h, err := readHeader(r, required, "waiver rules file")
	if err != nil {
		return nil, err
	}

	var out []WaiverRule
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read waiver rules file: %w", err)
		}
		rule := WaiverRule{
			RawStatus:           h.get(record, "raw_status"),
			RationaleContains:   h.get(record, "rationale_contains"),
			UpstreamFileRegex:   h.get(record, "upstream_file_regex"),
			UpstreamSymbolRegex: h.get(record, "upstream_symbol_regex"),
			Type:                h.get(record, "waiver_type"),
			Reason:              h.get(record, "reason"),
		}
		if err := rule.Compile(); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

// WriteMatrixCSV writes resolved traceability rows.
func WriteMatrixCSV(path string, rows []Row) error {
	return writeCSV(path, MatrixColumns, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.ID,
			r.UpstreamRepo, r.UpstreamSubdir, r.UpstreamRef, r.UpstreamCommit,
			r.UpstreamFile, r.UpstreamSymbol, r.UpstreamLine,
			r.TargetFile, r.TargetSymbol, r.TargetLine,
			r.RawStatus, r.EffectiveStatus, strconv.FormatBool(r.Waived),
			r.WaiverType, r.WaiverReason, r.WaiverSource,
			strconv.FormatBool(r.AmbiguousImplemented), r.Rationale,
		}
	})
}

// ReadMatrixCSV loads a previously written traceability matrix.
func ReadMatrixCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r, MatrixColumns, "traceability matrix")
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read traceability matrix: %w", err)
		}
		rows = append(rows, Row{
			ParityRow: ParityRow{
				UpstreamRepo:   h.get(record, "upstream_repo"),
				UpstreamSubdir: h.get(record, "upstream_subdir"),
				UpstreamRef:    h.get(record, "upstream_ref"),
				UpstreamCommit: h.get(record, "upstream_commit"),
				UpstreamFile:   h.get(record, "upstream_file"),
				UpstreamSymbol: h.get(record, "upstream_symbol"),
				UpstreamLine:   h.get(record, "upstream_line"),
				TargetFile:     h.get(record, "target_file"),
				TargetSymbol:   h.get(record, "target_symbol"),
				TargetLine:     h.get(record, "target_line"),
				Status:         h.get(record, "raw_status"),
				Rationale:      h.get(record, "rationale"),
			},
			ID:                   h.get(record, "legacy_id"),
			RawStatus:            h.get(record, "raw_status"),
			EffectiveStatus:      h.get(record, "effective_status"),
			Waived:               h.get(record, "waived") == "true",
			WaiverType:           h.get(record, "waiver_type"),
			WaiverReason:         h.get(record, "waiver_reason"),
			WaiverSource:         h.get(record, "waiver_source"),
			AmbiguousImplemented: h.get(record, "ambiguous_implemented") == "true",
		})
	}
	return rows, nil
}

func writeCSV(path string, columns []string, n int, record func(int) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
