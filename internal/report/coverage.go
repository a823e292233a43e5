package report

import (
	"fmt"
	"strings"

	"paritycheck/internal/coverage"
)

// CoverageSummary renders the reference coverage summary for one
// instrumented run of the legacy binary.
func CoverageSummary(referenceTag, scopeSubdir string, workloads []string, rep *coverage.Report, executedCSV, unexecutedCSV, exportJSON string) string {
	var sb strings.Builder
	sb.WriteString("# Reference Coverage Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Reference tag: `%s`\n", referenceTag))
	sb.WriteString(fmt.Sprintf("- Workloads executed: `%d`\n", len(workloads)))
	sb.WriteString(fmt.Sprintf("- In-scope functions (%s): **%d**\n", scopeSubdir, rep.FunctionsInScope))
	sb.WriteString(fmt.Sprintf("- Executed functions: **%d**\n", rep.FunctionsExecuted))
	sb.WriteString(fmt.Sprintf("- Function coverage (executed/in-scope): **%.2f%%**\n", rep.FunctionCoveragePct()))
	sb.WriteString(fmt.Sprintf("- File line coverage (%s files in export): **%.2f%%**\n", scopeSubdir, rep.LineCoveragePct()))
	sb.WriteString("\n## Artifacts\n\n")
	sb.WriteString(fmt.Sprintf("- `%s`\n", executedCSV))
	sb.WriteString(fmt.Sprintf("- `%s`\n", unexecutedCSV))
	sb.WriteString(fmt.Sprintf("- `%s`\n", exportJSON))
	return sb.String()
}
