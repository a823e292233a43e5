package matrix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParityCSVRoundTrip(t *testing.T) {
	rows := []ParityRow{
		{
			UpstreamRepo:   "root-project/root",
			UpstreamSubdir: "math/minuit2",
			UpstreamRef:    "v6-32-06",
			UpstreamCommit: "abc123",
			UpstreamFile:   "inc/MnStrategy.h",
			UpstreamSymbol: "Strategy",
			UpstreamLine:   "41",
			TargetFile:     "src/mn_strategy.rs",
			TargetSymbol:   "strategy",
			TargetLine:     "17",
			Status:         StatusImplemented,
			Rationale:      RationaleNameMatch,
		},
		{
			UpstreamFile:   "inc/MnFumiliMinimize.h",
			UpstreamSymbol: PlaceholderSymbol,
			Status:         StatusNeedsReview,
			Rationale:      RationaleExtractionFailed,
		},
	}

	path := filepath.Join(t.TempDir(), "reports", "parity", "functions.csv")
	require.NoError(t, WriteParityCSV(path, rows))

	got, err := ReadParityCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadParityCSVRejectsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "functions.csv")
	require.NoError(t, os.WriteFile(path, []byte("upstream_file,status\na.h,missing\n"), 0644))

	_, err := ReadParityCSV(path)
	assert.ErrorContains(t, err, "missing columns")
}

func TestReadWaiversMissingFileIsEmpty(t *testing.T) {
	waivers, err := ReadWaivers(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Empty(t, waivers)
}

func TestReadWaiversSkipsBlankIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waivers.csv")
	content := "legacy_id,waiver_type,reason\na.h::Foo@1,intentional,ported as trait\n,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	waivers, err := ReadWaivers(path)
	require.NoError(t, err)
	require.Len(t, waivers, 1)
	assert.Equal(t, "a.h::Foo@1", waivers[0].LegacyID)
}

func TestReadWaiverRulesCompilesFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waiver_rules.csv")
	content := "raw_status,rationale_contains,upstream_file_regex,upstream_symbol_regex,waiver_type,reason\n" +
		"missing,,MnPrint,,tooling,logging is reworked\n" +
		",,,^operator,intentional,operators become methods\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := ReadWaiverRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.True(t, rules[0].Match(ParityRow{UpstreamFile: "src/MnPrint.cxx", Status: StatusMissing}))
	assert.False(t, rules[0].Match(ParityRow{UpstreamFile: "src/MnPrint.cxx", Status: StatusImplemented}))
	assert.False(t, rules[0].FileSymbolOnly())

	assert.True(t, rules[1].Match(ParityRow{UpstreamSymbol: "operator()"}))
	assert.True(t, rules[1].FileSymbolOnly())
}

func TestReadWaiverRulesRejectsBadRegex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waiver_rules.csv")
	content := "raw_status,rationale_contains,upstream_file_regex,upstream_symbol_regex,waiver_type,reason\n" +
		",,[unclosed,,intentional,bad\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadWaiverRules(path)
	assert.ErrorContains(t, err, "invalid upstream_file_regex")
}

func TestMatrixCSVRoundTrip(t *testing.T) {
	rows, err := Resolve([]ParityRow{
		row("a.h", "Foo", "10", StatusImplemented, RationaleNameMatch),
		row("a.h", "~Foo", "33", StatusIntentionallySkipped, RationaleIdiomatic),
	}, nil, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "traceability_matrix.csv")
	require.NoError(t, WriteMatrixCSV(path, rows))

	got, err := ReadMatrixCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
