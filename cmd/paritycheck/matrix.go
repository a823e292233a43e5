package main

import (
	"context"
	"fmt"
	"log"

	"paritycheck/internal/matrix"
	"paritycheck/internal/pipeline"
	"paritycheck/internal/report"

	"github.com/spf13/cobra"
)

var (
	matrixParityCSV  string
	matrixWaiversCSV string
	matrixRulesCSV   string
	matrixOutCSV     string
	matrixOutMD      string
)

func init() {
	matrixCmd.Flags().StringVar(&matrixParityCSV, "parity-csv", "reports/parity/functions.csv", "Parity rows input")
	matrixCmd.Flags().StringVar(&matrixWaiversCSV, "waivers-csv", "verification/traceability/waivers.csv", "Explicit waivers (optional)")
	matrixCmd.Flags().StringVar(&matrixRulesCSV, "waiver-rules-csv", "verification/traceability/waiver_rules.csv", "Ordered waiver rules (optional)")
	matrixCmd.Flags().StringVar(&matrixOutCSV, "out-csv", "reports/verification/traceability_matrix.csv", "Matrix output")
	matrixCmd.Flags().StringVar(&matrixOutMD, "out-md", "reports/verification/traceability_summary.md", "Summary output")
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Resolve waivers over the parity rows and emit the traceability matrix",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		led := beginRun(ctx, "matrix")
		rep := pipeline.NewReport("matrix")

		rows, err := matrix.ReadParityCSV(matrixParityCSV)
		if err != nil {
			log.Fatalf("Failed to read parity CSV: %v", err)
		}
		waivers, err := matrix.ReadWaivers(matrixWaiversCSV)
		if err != nil {
			log.Fatalf("Failed to read waivers: %v", err)
		}
		rules, err := matrix.ReadWaiverRules(matrixRulesCSV)
		if err != nil {
			log.Fatalf("Failed to read waiver rules: %v", err)
		}
		fmt.Printf("📋 %d parity rows, %d waivers, %d rules\n", len(rows), len(waivers), len(rules))

		h := rep.BeginStage("resolve")
		resolved, err := matrix.Resolve(rows, waivers, rules)
		counters := map[string]float64{"rows": float64(len(resolved))}
		unresolved := 0
		for _, row := range resolved {
			if row.EffectiveStatus == matrix.EffectiveUnresolved {
				unresolved++
			}
		}
		counters["unresolved"] = float64(unresolved)
		rep.EndStage(h, counters, []string{matrixOutCSV, matrixOutMD}, err)
		if err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to resolve matrix: %v", err)
		}

		if err := matrix.WriteMatrixCSV(matrixOutCSV, resolved); err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to write matrix CSV: %v", err)
		}
		summary := report.TraceabilitySummary(resolved, matrixParityCSV, matrixWaiversCSV, matrixRulesCSV)
		if err := report.WriteMarkdown(matrixOutMD, summary); err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to write summary: %v", err)
		}

		led.artifact(ctx, "matrix_csv", matrixOutCSV)
		led.artifact(ctx, "summary_md", matrixOutMD)
		led.finish(ctx, nil, map[string]any{"rows": len(resolved), "unresolved": unresolved})
		if err := rep.Save("reports/verification/matrix_pipeline_report.json"); err != nil {
			fmt.Printf("⚠️  Failed to save pipeline report: %v\n", err)
		}
		fmt.Printf("✅ Wrote %s (%d rows, %d unresolved)\n", matrixOutCSV, len(resolved), unresolved)
	},
}
