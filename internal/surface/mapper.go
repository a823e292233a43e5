package surface

import (
	"sort"
	"strings"

	"paritycheck/internal/matrix"
)

// ExecutedRecord is one runtime-executed legacy function.
type ExecutedRecord struct {
	Function string
	File     string
	Count    string
}

// Gap is one executed symbol that is not cleanly implemented.
type Gap struct {
	UpstreamFile   string
	UpstreamSymbol string
	Mangled        string
	Demangled      string
	CallCount      string
	MappingStatus  string
	Priority       string
	WaiverTypes    []string
	TargetRefs     []string
	WorkloadIDs    []string
	Notes          []string
}

// Result summarizes one executed-surface mapping run.
type Result struct {
	Gaps              []Gap
	TotalExecuted     int
	MappedImplemented int
	PriorityCounts    map[string]int
	FileGapCounts     map[string]int
}

// GatePass is the surface gate rule: no P0 and no P1 gaps.
func (r *Result) GatePass() bool {
	return r.PriorityCounts["P0"] == 0 && r.PriorityCounts["P1"] == 0
}

// Mapper joins executed legacy functions against the traceability matrix.
type Mapper struct {
	Matrix    []matrix.Row
	Rules     []matrix.WaiverRule
	Demangler Demangler
	// SubdirMarker is the upstream subdir whose prefix is stripped from
	// coverage file paths, e.g. "math/minuit2".
	SubdirMarker string
	WorkloadIDs  []string
}

// Map classifies every executed record, producing the sorted gap list.
func (m *Mapper) Map(records []ExecutedRecord) *Result {
	byKey := map[[2]string][]matrix.Row{}
	byFile := map[string][]matrix.Row{}
	for _, row := range m.Matrix {
		symbol := strings.ReplaceAll(strings.TrimSpace(row.UpstreamSymbol), " ", "")
		byKey[[2]string{row.UpstreamFile, symbol}] = append(byKey[[2]string{row.UpstreamFile, symbol}], row)
		byFile[row.UpstreamFile] = append(byFile[row.UpstreamFile], row)
	}

	mangled := make([]string, 0, len(records))
	for _, rec := range records {
		mangled = append(mangled, ExtractMangledName(rec.Function))
	}
	demangledMap := m.Demangler.Demangle(mangled)

	res := &Result{
		TotalExecuted:  len(records),
		PriorityCounts: map[string]int{},
		FileGapCounts:  map[string]int{},
	}

	for _, rec := range records {
		name := ExtractMangledName(strings.TrimSpace(rec.Function))
		demangled, ok := demangledMap[name]
		if !ok {
			demangled = name
		}
		info := ExtractSymbolInfo(demangled)
		file := m.normalizeUpstreamFile(rec.File)

		matches, ruleWaiver := m.join(file, info.Symbol, byKey, byFile)
		status := rankStatus(matches, ruleWaiver)
		if status == matrix.EffectiveImplemented {
			res.MappedImplemented++
			continue
		}

		priority := classifyPriority(status, info, matches, ruleWaiver)
		if priority != "" {
			res.PriorityCounts[priority]++
			res.FileGapCounts[file]++
		}

		gap := Gap{
			UpstreamFile:   file,
			UpstreamSymbol: info.Symbol,
			Mangled:        name,
			Demangled:      demangled,
			CallCount:      rec.Count,
			MappingStatus:  status,
			Priority:       priority,
			WaiverTypes:    collectWaiverTypes(matches, ruleWaiver),
			TargetRefs:     collectTargetRefs(matches),
			WorkloadIDs:    m.WorkloadIDs,
			Notes:          collectNotes(matches),
		}
		if gap.Priority == "" {
			gap.Priority = "P2"
		}
		res.Gaps = append(res.Gaps, gap)
	}

	sort.Slice(res.Gaps, func(i, j int) bool {
		a, b := res.Gaps[i], res.Gaps[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.UpstreamFile != b.UpstreamFile {
			return a.UpstreamFile < b.UpstreamFile
		}
		if a.UpstreamSymbol != b.UpstreamSymbol {
			return a.UpstreamSymbol < b.UpstreamSymbol
		}
		return a.Mangled < b.Mangled
	})
	return res
}

// join resolves an executed (file, symbol) pair against the matrix with
// three fallbacks: case-insensitive symbol match in the same file, a
// whole-file waiver when every row of the file is waived with low-priority
// types, and finally file/symbol-only waiver rules.
func (m *Mapper) join(file, symbol string, byKey map[[2]string][]matrix.Row, byFile map[string][]matrix.Row) ([]matrix.Row, *matrix.WaiverRule) {
	if rows := byKey[[2]string{file, symbol}]; len(rows) > 0 {
		return rows, nil
	}

	lower := strings.ToLower(symbol)
	var ci []matrix.Row
	for _, row := range byFile[file] {
		rowSym := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(row.UpstreamSymbol), " ", ""))
		if rowSym == lower {
			ci = append(ci, row)
		}
	}
	if len(ci) > 0 {
		return ci, nil
	}

	if rows := byFile[file]; len(rows) > 0 && allLowPriorityWaived(rows) {
		return rows, nil
	}

	probe := matrix.ParityRow{UpstreamFile: file, UpstreamSymbol: symbol}
	for i := range m.Rules {
		if m.Rules[i].FileSymbolOnly() && m.Rules[i].Match(probe) {
			return nil, &m.Rules[i]
		}
	}
	return nil, nil
}

func allLowPriorityWaived(rows []matrix.Row) bool {
	for _, row := range rows {
		if row.EffectiveStatus != matrix.EffectiveWaived || !matrix.LowPriorityWaiverTypes[row.WaiverType] {
			return false
		}
	}
	return true
}

func rankStatus(rows []matrix.Row, ruleWaiver *matrix.WaiverRule) string {
	if ruleWaiver != nil {
		return matrix.EffectiveWaived
	}
	has := map[string]bool{}
	for _, row := range rows {
		has[row.EffectiveStatus] = true
	}
	switch {
	case has[matrix.EffectiveImplemented]:
		return matrix.EffectiveImplemented
	case has[matrix.EffectiveUnresolved]:
		return matrix.EffectiveUnresolved
	case has[matrix.EffectiveWaived]:
		return matrix.EffectiveWaived
	default:
		return "missing"
	}
}

func classifyPriority(status string, info SymbolInfo, rows []matrix.Row, ruleWaiver *matrix.WaiverRule) string {
	switch status {
	case matrix.EffectiveImplemented:
		return ""
	case matrix.EffectiveUnresolved:
		return "P0"
	case "missing":
		if info.IsConstructor || info.IsDestructor || info.IsOperator {
			return "P2"
		}
		return "P1"
	}

	types := map[string]bool{}
	for _, row := range rows {
		if row.WaiverType != "" {
			types[row.WaiverType] = true
		}
	}
	if ruleWaiver != nil && ruleWaiver.Type != "" {
		types[ruleWaiver.Type] = true
	}
	if len(types) == 0 {
		return "P1"
	}
	for t := range types {
		if !matrix.LowPriorityWaiverTypes[t] {
			return "P1"
		}
	}
	return "P2"
}

func collectWaiverTypes(rows []matrix.Row, ruleWaiver *matrix.WaiverRule) []string {
	set := map[string]bool{}
	for _, row := range rows {
		if row.WaiverType != "" {
			set[row.WaiverType] = true
		}
	}
	if ruleWaiver != nil && ruleWaiver.Type != "" {
		set[ruleWaiver.Type] = true
	}
	return sortedKeys(set)
}

func collectTargetRefs(rows []matrix.Row) []string {
	set := map[string]bool{}
	for _, row := range rows {
		if row.TargetFile != "" && row.TargetSymbol != "" {
			set[row.TargetFile+"::"+row.TargetSymbol] = true
		}
	}
	return sortedKeys(set)
}

func collectNotes(rows []matrix.Row) []string {
	set := map[string]bool{}
	for _, row := range rows {
		if row.Rationale != "" {
			set[row.Rationale] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Mapper) normalizeUpstreamFile(path string) string {
	raw := strings.TrimSpace(strings.ReplaceAll(path, "\\", "/"))
	if m.SubdirMarker == "" {
		return raw
	}
	marker := "/" + strings.Trim(m.SubdirMarker, "/") + "/"
	if i := strings.Index(raw, marker); i >= 0 {
		return raw[i+len(marker):]
	}
	prefix := strings.Trim(m.SubdirMarker, "/") + "/"
	return strings.TrimPrefix(raw, prefix)
}
