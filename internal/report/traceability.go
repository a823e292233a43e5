package report

import (
	"fmt"
	"strings"

	"paritycheck/internal/matrix"
)

// TraceabilitySummary renders the matrix summary: effective and raw status
// counts, the files carrying the most unresolved rows, and a gate hint.
func TraceabilitySummary(rows []matrix.Row, parityPath, waiversPath, rulesPath string) string {
	byEffective := map[string]int{}
	byRaw := map[string]int{}
	unresolvedByFile := map[string]int{}
	for _, row := range rows {
		byEffective[row.EffectiveStatus]++
		byRaw[row.RawStatus]++
		if row.EffectiveStatus == matrix.EffectiveUnresolved {
			unresolvedByFile[row.UpstreamFile]++
		}
	}

	var sb strings.Builder
	sb.WriteString("# Traceability Summary\n\n")
	sb.WriteString(fmt.Sprintf("Source parity file: `%s`\n", parityPath))
	sb.WriteString(fmt.Sprintf("Waivers file: `%s` (optional)\n", waiversPath))
	sb.WriteString(fmt.Sprintf("Waiver rules file: `%s` (optional)\n\n", rulesPath))

	sb.WriteString("## Effective Status Counts\n\n")
	sb.WriteString(fmt.Sprintf("- implemented: **%d**\n", byEffective[matrix.EffectiveImplemented]))
	sb.WriteString(fmt.Sprintf("- waived: **%d**\n", byEffective[matrix.EffectiveWaived]))
	sb.WriteString(fmt.Sprintf("- unresolved: **%d**\n\n", byEffective[matrix.EffectiveUnresolved]))

	sb.WriteString("## Raw Status Counts\n\n")
	for _, status := range []string{
		matrix.StatusImplemented,
		matrix.StatusMissing,
		matrix.StatusNeedsReview,
		matrix.StatusIntentionallySkipped,
	} {
		sb.WriteString(fmt.Sprintf("- %s: **%d**\n", status, byRaw[status]))
	}

	sb.WriteString("\n## Top Unresolved Files\n\n")
	ranked := topCounts(unresolvedByFile, 20)
	if len(ranked) == 0 {
		sb.WriteString("- none\n")
	}
	for _, fc := range ranked {
		sb.WriteString(fmt.Sprintf("- `%s`: %d\n", fc.File, fc.Count))
	}

	sb.WriteString("\n## Gate Hint\n\n")
	if byEffective[matrix.EffectiveUnresolved] == 0 {
		sb.WriteString("- Strict gate (`unresolved == 0`) is currently satisfied.\n")
	} else {
		sb.WriteString("- Strict gate is **not** satisfied; use non-regression gate in CI.\n")
	}
	return sb.String()
}
