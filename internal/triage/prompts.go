package triage

import (
	"fmt"
	"strings"

	"paritycheck/internal/matrix"
	"paritycheck/internal/surface"
)

// PromptBuilder constructs standardized prompts for gap triage.
type PromptBuilder struct{}

func (pb *PromptBuilder) BuildGapPrompt(gaps []surface.Gap) string {
	var sb strings.Builder
	sb.WriteString("Role: Verification Engineer. Task: Triage executed-surface gaps from a legacy-to-port migration.\n")
	sb.WriteString("\nEach line is one legacy function that executed at runtime but has no clean mapping to the port:\n\n")
	for _, g := range gaps {
		fmt.Fprintf(&sb, "- [%s] %s in %s (status=%s, calls=%s)", g.Priority, g.UpstreamSymbol, g.UpstreamFile, g.MappingStatus, g.CallCount)
		if len(g.Notes) > 0 {
			fmt.Fprintf(&sb, " notes: %s", strings.Join(g.Notes, "; "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("Write a '# Gap Triage' markdown note.\n")
	sb.WriteString("1. Group the gaps by upstream file and likely root cause.\n")
	sb.WriteString("2. For each group, recommend one action: implement, waive (with waiver type), or investigate.\n")
	sb.WriteString("3. Order groups by priority (P0 first). Keep it under 400 words.\n")
	return sb.String()
}

func (pb *PromptBuilder) BuildUnresolvedPrompt(rows []matrix.Row) string {
	var sb strings.Builder
	sb.WriteString("Role: Verification Engineer. Task: Triage unresolved traceability rows from a legacy-to-port migration.\n")
	sb.WriteString("\nEach line is one legacy symbol with no implemented mapping and no waiver:\n\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "- %s in %s (raw=%s, rationale=%s", row.UpstreamSymbol, row.UpstreamFile, row.RawStatus, row.Rationale)
		if row.TargetFile != "" {
			fmt.Fprintf(&sb, ", candidate=%s", row.TargetFile)
		}
		sb.WriteString(")\n")
	}
	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("Write an '# Unresolved Triage' markdown note.\n")
	sb.WriteString("1. Bucket the rows into: likely rename, likely architectural move, likely missing.\n")
	sb.WriteString("2. Suggest a waiver type where a waiver is the right call.\n")
	sb.WriteString("3. Keep it under 400 words.\n")
	return sb.String()
}
