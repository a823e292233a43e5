package report

import (
	"fmt"
	"strings"

	"paritycheck/internal/surface"
)

// maxGapTableRows bounds the P0/P1 table so the summary stays readable on
// surfaces with hundreds of gaps.
const maxGapTableRows = 40

// SurfaceMapping renders the executed-surface summary: totals, gate verdict,
// the files with the most gaps, and a bounded table of high-priority gaps.
func SurfaceMapping(res *surface.Result, workloads []string, mappingMD, gapsCSV, manifestJSON string) string {
	unmapped := res.TotalExecuted - res.MappedImplemented

	var sb strings.Builder
	sb.WriteString("# Executed Surface Mapping\n\n")
	sb.WriteString("Join of executed legacy functions with traceability matrix mappings.\n\n")
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Executed legacy functions: **%d**\n", res.TotalExecuted))
	sb.WriteString(fmt.Sprintf("- Mapped to implemented target symbols: **%d**\n", res.MappedImplemented))
	sb.WriteString(fmt.Sprintf("- Unmapped executed functions: **%d**\n", unmapped))
	sb.WriteString(fmt.Sprintf("- Unmapped priority split: P0=%d, P1=%d, P2=%d\n",
		res.PriorityCounts["P0"], res.PriorityCounts["P1"], res.PriorityCounts["P2"]))
	verdict := "FAIL"
	if res.GatePass() {
		verdict = "PASS"
	}
	sb.WriteString(fmt.Sprintf("- Gate (`P0 == 0 and P1 == 0`): **%s**\n", verdict))
	if len(workloads) > 0 {
		sb.WriteString(fmt.Sprintf("- Coverage workloads used: **%d**\n", len(workloads)))
	}
	sb.WriteString("\n## Artifacts\n\n")
	sb.WriteString(fmt.Sprintf("- `%s`\n", mappingMD))
	sb.WriteString(fmt.Sprintf("- `%s`\n", gapsCSV))
	sb.WriteString(fmt.Sprintf("- `%s`\n", manifestJSON))

	sb.WriteString("\n## Top Gap Files\n\n")
	ranked := topCounts(res.FileGapCounts, 15)
	if len(ranked) == 0 {
		sb.WriteString("- none\n")
	}
	for _, fc := range ranked {
		sb.WriteString(fmt.Sprintf("- `%s`: %d\n", fc.File, fc.Count))
	}

	sb.WriteString("\n## Top P0/P1 Gaps\n\n")
	sb.WriteString("| Priority | Upstream file | Symbol | Mapping status | Call count |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	shown := 0
	for _, gap := range res.Gaps {
		if gap.Priority != "P0" && gap.Priority != "P1" {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | `%s` | `%s` | `%s` | %s |\n",
			gap.Priority, gap.UpstreamFile, gap.UpstreamSymbol, gap.MappingStatus, gap.CallCount))
		shown++
		if shown >= maxGapTableRows {
			break
		}
	}
	if shown == 0 {
		sb.WriteString("| - | - | - | - | - |\n")
	}
	return sb.String()
}
