package report

import (
	"fmt"
	"strings"

	"paritycheck/internal/match"
	"paritycheck/internal/matrix"
)

// WriteStatusCSV writes the subset of parity rows carrying one raw status,
// e.g. the missing.csv and needs_review.csv triage slices.
func WriteStatusCSV(path string, rows []matrix.ParityRow, status string) error {
	filtered := make([]matrix.ParityRow, 0, len(rows))
	for _, row := range rows {
		if row.Status == status {
			filtered = append(filtered, row)
		}
	}
	return matrix.WriteParityCSV(path, filtered)
}

// ParityGaps renders the parity gaps markdown: per-status totals plus the
// upstream files with the most missing and needs-review symbols.
func ParityGaps(up match.Upstream, rows []matrix.ParityRow) string {
	byStatus := map[string]int{}
	missingByFile := map[string]int{}
	reviewByFile := map[string]int{}
	for _, row := range rows {
		byStatus[row.Status]++
		switch row.Status {
		case matrix.StatusMissing:
			missingByFile[row.UpstreamFile]++
		case matrix.StatusNeedsReview:
			reviewByFile[row.UpstreamFile]++
		}
	}

	var sb strings.Builder
	sb.WriteString("# Function Parity Gaps\n\n")
	sb.WriteString(fmt.Sprintf("Upstream repo: `%s`\n", up.Repo))
	sb.WriteString(fmt.Sprintf("Upstream subdir: `%s`\n", up.Subdir))
	sb.WriteString(fmt.Sprintf("Upstream ref: `%s`\n", up.Ref))
	sb.WriteString(fmt.Sprintf("Upstream commit: `%s`\n\n", up.Commit))
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Total upstream symbols in scope: **%d**\n", len(rows)))
	sb.WriteString(fmt.Sprintf("- `implemented`: **%d**\n", byStatus[matrix.StatusImplemented]))
	sb.WriteString(fmt.Sprintf("- `missing`: **%d**\n", byStatus[matrix.StatusMissing]))
	sb.WriteString(fmt.Sprintf("- `needs-review`: **%d**\n", byStatus[matrix.StatusNeedsReview]))
	sb.WriteString(fmt.Sprintf("- `intentionally-skipped`: **%d**\n\n", byStatus[matrix.StatusIntentionallySkipped]))

	sb.WriteString("## Top Files by `missing` Symbols\n\n")
	writeFileCounts(&sb, topCounts(missingByFile, 20))
	sb.WriteString("\n## Top Files by `needs-review` Symbols\n\n")
	writeFileCounts(&sb, topCounts(reviewByFile, 20))

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- Symbol extraction is heuristic, not a full C++ parser.\n")
	sb.WriteString("- `intentionally-skipped` captures constructor/destructor/operator-style symbols that map to target-language idioms.\n")
	sb.WriteString("- `needs-review` includes architectural refactors where strict 1:1 symbol naming is not expected.\n")
	sb.WriteString("- Use the functions CSV as the source of truth for triage and manual confirmation.\n")
	return sb.String()
}

func writeFileCounts(sb *strings.Builder, ranked []fileCount) {
	if len(ranked) == 0 {
		sb.WriteString("- None\n")
		return
	}
	for _, fc := range ranked {
		sb.WriteString(fmt.Sprintf("- `%s`: %d\n", fc.File, fc.Count))
	}
}
