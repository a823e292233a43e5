package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"paritycheck/internal/report"
	"paritycheck/internal/surface"
	"paritycheck/internal/triage"

	"github.com/spf13/cobra"
)

var (
	triageGapsCSV string
	triageModel   string
	triageOut     string
)

func init() {
	triageCmd.Flags().StringVar(&triageGapsCSV, "gaps-csv", "reports/verification/executed_surface_gaps.csv", "Gap CSV to triage")
	triageCmd.Flags().StringVar(&triageModel, "model", "gemini-2.0-flash", "Gemini model for note drafting")
	triageCmd.Flags().StringVar(&triageOut, "out", "reports/verification/gap_triage.md", "Triage note output")
}

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Draft an LLM review note for the remaining gaps (advisory only)",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		// loadConfig pulls in .env, where the API key usually lives.
		loadConfig()

		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Fatalf("GEMINI_API_KEY not configured; triage needs an API key")
		}

		gaps, err := surface.ReadGapsCSV(triageGapsCSV)
		if err != nil {
			log.Fatalf("Failed to read gaps CSV: %v", err)
		}
		fmt.Printf("🧠 Drafting triage note for %d gaps...\n", len(gaps))

		summarizer, err := triage.NewGeminiSummarizer(ctx, apiKey, triageModel)
		if err != nil {
			log.Fatalf("Failed to create summarizer: %v", err)
		}

		note, err := triage.NewTriager(summarizer).TriageGaps(ctx, gaps)
		if err != nil {
			log.Fatalf("Triage failed: %v", err)
		}
		if err := report.WriteMarkdown(triageOut, note+"\n"); err != nil {
			log.Fatalf("Failed to write triage note: %v", err)
		}
		fmt.Printf("✅ Triage note written to %s\n", triageOut)
	},
}
