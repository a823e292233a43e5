// Package triage drafts review notes for verification gaps with an LLM.
// The output is advisory only; gates never depend on it.
package triage

import (
	"context"
	"fmt"
	"strings"

	"paritycheck/internal/matrix"
	"paritycheck/internal/surface"
)

// Summarizer generates a triage note from a prepared prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// maxPromptItems bounds how many gaps and unresolved rows feed one prompt.
const maxPromptItems = 50

// Triager assembles prompts from gap artifacts and delegates to a Summarizer.
type Triager struct {
	summarizer    Summarizer
	promptBuilder *PromptBuilder
}

func NewTriager(s Summarizer) *Triager {
	return &Triager{summarizer: s, promptBuilder: &PromptBuilder{}}
}

// TriageGaps drafts a note ranking executed-surface gaps for review.
func (t *Triager) TriageGaps(ctx context.Context, gaps []surface.Gap) (string, error) {
	if len(gaps) == 0 {
		return "No executed-surface gaps to triage.", nil
	}
	if len(gaps) > maxPromptItems {
		gaps = gaps[:maxPromptItems]
	}
	prompt := t.promptBuilder.BuildGapPrompt(gaps)
	note, err := t.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize gaps: %w", err)
	}
	return cleanMarkdownOutput(note), nil
}

// TriageUnresolved drafts a note grouping unresolved matrix rows by likely
// cause (rename, architectural move, genuinely missing).
func (t *Triager) TriageUnresolved(ctx context.Context, rows []matrix.Row) (string, error) {
	unresolved := make([]matrix.Row, 0, len(rows))
	for _, row := range rows {
		if row.EffectiveStatus == matrix.EffectiveUnresolved {
			unresolved = append(unresolved, row)
		}
	}
	if len(unresolved) == 0 {
		return "No unresolved matrix rows to triage.", nil
	}
	if len(unresolved) > maxPromptItems {
		unresolved = unresolved[:maxPromptItems]
	}
	prompt := t.promptBuilder.BuildUnresolvedPrompt(unresolved)
	note, err := t.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize unresolved rows: %w", err)
	}
	return cleanMarkdownOutput(note), nil
}

func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
