package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paritycheck/internal/legacy"
	"paritycheck/internal/matrix"
	"paritycheck/internal/target"
)

func testIndex(syms ...target.Symbol) *target.Index {
	idx := &target.Index{
		ByFile:      map[string][]target.Symbol{},
		ByNorm:      map[string][]target.Symbol{},
		Annotations: map[string][]string{},
	}
	for _, s := range syms {
		idx.Symbols = append(idx.Symbols, s)
		idx.ByFile[s.File] = append(idx.ByFile[s.File], s)
		idx.ByNorm[target.NormalizeName(s.Name)] = append(idx.ByNorm[target.NormalizeName(s.Name)], s)
	}
	return idx
}

func TestAliasNames(t *testing.T) {
	m := NewMatcher(testIndex(), nil, map[string]map[string][]string{
		"MnMachinePrecision": {"Eps": {"epsilon"}},
	}, nil)

	assert.Equal(t, []string{"GetFval", "Fval"}, m.AliasNames("GetFval", "FunctionMinimum"))
	assert.Equal(t, []string{"IsValid", "Valid"}, m.AliasNames("IsValid", "FunctionMinimum"))
	assert.Equal(t, []string{"MnStrategy", "new", "default"}, m.AliasNames("MnStrategy", "MnStrategy"))
	assert.Equal(t, []string{"~MnStrategy", "drop"}, m.AliasNames("~MnStrategy", "MnStrategy"))
	assert.Equal(t, []string{"operator()", "call", "value"}, m.AliasNames("operator()", "FCNBase"))
	assert.Equal(t, []string{"Eps", "epsilon"}, m.AliasNames("Eps", "MnMachinePrecision"))
	assert.Equal(t, []string{"Min"}, m.AliasNames("Min", "MnParabola"), "plain names pass through unchanged")
}

func TestMatchSymbolSingleMatchInMappedFile(t *testing.T) {
	idx := testIndex(
		target.Symbol{Name: "min", File: "src/mn_parabola.rs", Line: 30},
		target.Symbol{Name: "min", File: "src/other.rs", Line: 5},
	)
	m := NewMatcher(idx, map[string][]string{"MnParabola": {"src/mn_parabola.rs"}}, nil, nil)

	v := m.MatchSymbol(legacy.Symbol{Name: "Min"}, "MnParabola", m.CandidateFiles("MnParabola"))
	assert.Equal(t, matrix.StatusImplemented, v.Status)
	assert.Equal(t, "src/mn_parabola.rs", v.TargetFile)
	assert.Equal(t, "min", v.TargetSymbol)
	assert.Equal(t, 30, v.TargetLine)
}

func TestMatchSymbolMultipleCandidatesKeepsFirstEvidence(t *testing.T) {
	idx := testIndex(
		target.Symbol{Name: "min", File: "src/mn_parabola.rs", Line: 30},
		target.Symbol{Name: "Min", File: "src/mn_parabola.rs", Line: 12},
	)
	m := NewMatcher(idx, map[string][]string{"MnParabola": {"src/mn_parabola.rs"}}, nil, nil)

	v := m.MatchSymbol(legacy.Symbol{Name: "Min"}, "MnParabola", m.CandidateFiles("MnParabola"))
	assert.Equal(t, matrix.StatusNeedsReview, v.Status)
	assert.Equal(t, matrix.RationaleMultipleCandidates, v.Rationale)
	assert.Equal(t, 12, v.TargetLine, "evidence is the first match after file/line/name sort")
}

func TestMatchSymbolCtorWithoutMatchIsIntentionallySkipped(t *testing.T) {
	idx := testIndex(target.Symbol{Name: "new", File: "src/mn_strategy.rs", Line: 8})
	m := NewMatcher(idx, map[string][]string{"MnStrategy": {"src/missing.rs"}}, nil, nil)

	// Mapped file is absent from the scan, so no match is possible.
	v := m.MatchSymbol(legacy.Symbol{Name: "~MnStrategy"}, "MnStrategy", nil)
	assert.Equal(t, matrix.StatusIntentionallySkipped, v.Status)
	assert.Equal(t, matrix.RationaleIdiomatic, v.Rationale)
}

func TestMatchSymbolCtorEvidenceFromMappedFile(t *testing.T) {
	idx := testIndex(
		target.Symbol{Name: "new", File: "src/mn_scan.rs", Line: 8},
		target.Symbol{Name: "scan", File: "src/mn_scan.rs", Line: 20},
	)
	m := NewMatcher(idx, map[string][]string{"MnScanner": {"src/mn_scan.rs"}}, nil, nil)

	v := m.MatchSymbol(legacy.Symbol{Name: "operator<<"}, "MnScanner", m.CandidateFiles("MnScanner"))
	assert.Equal(t, matrix.StatusIntentionallySkipped, v.Status)
	assert.Equal(t, "new", v.TargetSymbol)
	assert.Equal(t, 8, v.TargetLine)
}

func TestMatchSymbolArchitecturalBasename(t *testing.T) {
	m := NewMatcher(testIndex(), map[string][]string{}, nil, []string{"MnMinimize"})

	v := m.MatchSymbol(legacy.Symbol{Name: "DoMinimize"}, "MnMinimize", nil)
	assert.Equal(t, matrix.StatusNeedsReview, v.Status)
	assert.Equal(t, matrix.RationaleArchitectural, v.Rationale)
}

func TestMatchSymbolMissingVersusUnmapped(t *testing.T) {
	idx := testIndex(target.Symbol{Name: "other", File: "src/mapped.rs", Line: 1})
	m := NewMatcher(idx, map[string][]string{"Mapped": {"src/mapped.rs"}}, nil, nil)

	v := m.MatchSymbol(legacy.Symbol{Name: "Gone"}, "Mapped", m.CandidateFiles("Mapped"))
	assert.Equal(t, matrix.StatusMissing, v.Status)

	v = m.MatchSymbol(legacy.Symbol{Name: "Gone"}, "Unmapped", m.CandidateFiles("Unmapped"))
	assert.Equal(t, matrix.StatusNeedsReview, v.Status)
	assert.Equal(t, matrix.RationaleNoMappedFile, v.Rationale)
}

func TestMatchSymbolGlobalFallbackOnlyWithoutMapping(t *testing.T) {
	idx := testIndex(target.Symbol{Name: "contour", File: "src/mn_contours.rs", Line: 44})
	m := NewMatcher(idx, nil, nil, nil)

	v := m.MatchSymbol(legacy.Symbol{Name: "Contour"}, "MnContours", nil)
	assert.Equal(t, matrix.StatusImplemented, v.Status)
	assert.Equal(t, "src/mn_contours.rs", v.TargetFile)
}

func TestCandidateFilesMergesAnnotations(t *testing.T) {
	idx := testIndex(
		target.Symbol{Name: "a", File: "src/from_map.rs", Line: 1},
		target.Symbol{Name: "b", File: "src/from_annotation.rs", Line: 1},
	)
	idx.Annotations["src/from_annotation.rs"] = []string{"MnParabola.h"}
	m := NewMatcher(idx, map[string][]string{"MnParabola": {"src/from_map.rs", "src/not_scanned.rs"}}, nil, nil)

	got := m.CandidateFiles("MnParabola")
	assert.Equal(t, []string{"src/from_annotation.rs", "src/from_map.rs"}, got,
		"unscanned mapped files are dropped, annotation files merged, output sorted")
}

func TestBuildRowsDedupePrefersSourceDefinitions(t *testing.T) {
	m := NewMatcher(testIndex(), nil, nil, nil)
	up := Upstream{Repo: "root-project/root", Subdir: "math/minuit2", Ref: "v6-32-06", Commit: "abc"}

	rows := m.BuildRows(up, "MnParabola", []SourceSymbols{
		{Path: "inc/MnParabola.h", Symbols: []legacy.Symbol{{Name: "Min", Line: 10, Arity: 0}}},
		{Path: "src/MnParabola.cxx", Symbols: []legacy.Symbol{{Name: "Min", Line: 99, Arity: 0}}},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "src/MnParabola.cxx", rows[0].UpstreamFile)
	assert.Equal(t, "99", rows[0].UpstreamLine)
}

func TestBuildRowsPlaceholderOnFetchError(t *testing.T) {
	m := NewMatcher(testIndex(), nil, nil, nil)

	rows := m.BuildRows(Upstream{}, "MnFumiliMinimize", []SourceSymbols{
		{Path: "inc/MnFumiliMinimize.h", FetchErr: errors.New("status 404")},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, matrix.PlaceholderSymbol, rows[0].UpstreamSymbol)
	assert.Equal(t, matrix.StatusNeedsReview, rows[0].Status)
	assert.Contains(t, rows[0].Rationale, "source unavailable: inc/MnFumiliMinimize.h")
}

func TestBuildRowsPlaceholderOnEmptyExtraction(t *testing.T) {
	m := NewMatcher(testIndex(), nil, nil, nil)

	rows := m.BuildRows(Upstream{}, "MnConfig", []SourceSymbols{
		{Path: "inc/MnConfig.h", Symbols: nil},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, matrix.RationaleExtractionFailed, rows[0].Rationale)
}

func TestBuildRowsSortedByNameThenArity(t *testing.T) {
	idx := testIndex(target.Symbol{Name: "nrow", File: "src/la.rs", Line: 3})
	m := NewMatcher(idx, map[string][]string{"LASymMatrix": {"src/la.rs"}}, nil, nil)

	rows := m.BuildRows(Upstream{}, "LASymMatrix", []SourceSymbols{
		{Path: "inc/LASymMatrix.h", Symbols: []legacy.Symbol{
			{Name: "Nrow", Line: 40, Arity: 0},
			{Name: "Data", Line: 20, Arity: 1},
			{Name: "Data", Line: 10, Arity: 0},
		}},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "Data", rows[0].UpstreamSymbol)
	assert.Equal(t, "10", rows[0].UpstreamLine)
	assert.Equal(t, "Data", rows[1].UpstreamSymbol)
	assert.Equal(t, "Nrow", rows[2].UpstreamSymbol)
	assert.Equal(t, matrix.StatusImplemented, rows[2].Status)
}
