package report

import (
	"fmt"
	"strings"

	"paritycheck/internal/diffcmp"
	"paritycheck/internal/workload"
)

// DiffSummary renders the differential verification summary: the pinned
// reference, status counts, and one table row per workload.
func DiffSummary(ref workload.Reference, rows []diffcmp.Row) string {
	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Outcome.Status]++
	}

	var sb strings.Builder
	sb.WriteString("# Differential Verification Summary\n\n")
	sb.WriteString(fmt.Sprintf("Reference repo: `%s`\n", ref.Repo))
	sb.WriteString(fmt.Sprintf("Reference subtree: `%s`\n", ref.Subdir))
	sb.WriteString(fmt.Sprintf("Reference tag: `%s`\n", ref.Tag))
	sb.WriteString(fmt.Sprintf("Reference commit: `%s`\n\n", ref.Commit))

	sb.WriteString("## Status Counts\n\n")
	sb.WriteString(fmt.Sprintf("- pass: **%d**\n", counts[diffcmp.StatusPass]))
	sb.WriteString(fmt.Sprintf("- warn: **%d**\n", counts[diffcmp.StatusWarn]))
	sb.WriteString(fmt.Sprintf("- fail: **%d**\n\n", counts[diffcmp.StatusFail]))

	sb.WriteString("## Per-Workload Results\n\n")
	sb.WriteString("| Workload | Status | Issues | Warnings |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, row := range rows {
		issues := joinOrDash(row.Outcome.Issues)
		warnings := joinOrDash(row.Outcome.Warnings)
		sb.WriteString(fmt.Sprintf("| `%s` | `%s` | %s | %s |\n",
			row.Workload, row.Outcome.Status, issues, warnings))
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- `fail` means correctness metrics exceeded workload tolerances.\n")
	sb.WriteString("- `warn` means correctness metrics passed, but NFCN divergence exceeded the warning threshold.\n")
	return sb.String()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, "; ")
}
