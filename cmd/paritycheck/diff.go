package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"paritycheck/internal/diffcmp"
	"paritycheck/internal/pipeline"
	"paritycheck/internal/report"
	"paritycheck/internal/workload"

	"github.com/spf13/cobra"
)

var (
	diffWorkloads string
	diffRefBin    string
	diffPortedCmd string
	diffOutCSV    string
	diffOutMD     string
	diffRawDir    string
)

func init() {
	diffCmd.Flags().StringVar(&diffWorkloads, "workloads", "verification/workloads/workloads.json", "Workload manifest")
	diffCmd.Flags().StringVar(&diffRefBin, "ref-bin", "", "Reference runner binary (required)")
	diffCmd.Flags().StringVar(&diffPortedCmd, "ported-cmd", "", "Ported runner command, e.g. 'cargo run --release --bin runner --' (required)")
	diffCmd.Flags().StringVar(&diffOutCSV, "out-csv", "reports/verification/diff_results.csv", "Result CSV output")
	diffCmd.Flags().StringVar(&diffOutMD, "out-md", "reports/verification/diff_summary.md", "Summary output")
	diffCmd.Flags().StringVar(&diffRawDir, "raw-dir", "reports/verification/raw", "Directory for raw per-workload JSON")
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Run every workload through both runners and compare under tolerances",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		led := beginRun(ctx, "diff")
		rep := pipeline.NewReport("diff")

		if diffRefBin == "" || diffPortedCmd == "" {
			log.Fatalf("--ref-bin and --ported-cmd are required")
		}

		manifest, err := workload.LoadManifest(diffWorkloads)
		if err != nil {
			log.Fatalf("Failed to load workload manifest: %v", err)
		}

		refRunner := &workload.ExecRunner{Bin: diffRefBin}
		portedParts := strings.Fields(diffPortedCmd)
		portedRunner := &workload.ExecRunner{Bin: portedParts[0], Args: portedParts[1:]}

		fmt.Printf("🚀 Comparing %d workloads...\n", len(manifest.Workloads))
		h := rep.BeginStage("compare")
		rows, err := runDiff(ctx, manifest, refRunner, portedRunner)
		counters := map[string]float64{"workloads": float64(len(rows))}
		for _, row := range rows {
			counters[row.Outcome.Status]++
		}
		rep.EndStage(h, counters, []string{diffOutCSV, diffOutMD}, err)
		if err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Differential run failed: %v", err)
		}

		err = writeAll(
			func() error { return diffcmp.WriteResultsCSV(diffOutCSV, rows) },
			func() error {
				return report.WriteMarkdown(diffOutMD, report.DiffSummary(manifest.Reference, rows))
			},
		)
		if err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to write diff artifacts: %v", err)
		}

		pass, warn, fail := 0, 0, 0
		for _, row := range rows {
			switch row.Outcome.Status {
			case diffcmp.StatusPass:
				pass++
			case diffcmp.StatusWarn:
				warn++
			case diffcmp.StatusFail:
				fail++
			}
		}

		led.artifact(ctx, "results_csv", diffOutCSV)
		led.artifact(ctx, "summary_md", diffOutMD)
		led.finish(ctx, nil, map[string]any{"pass": pass, "warn": warn, "fail": fail})
		if err := rep.Save("reports/verification/diff_pipeline_report.json"); err != nil {
			fmt.Printf("⚠️  Failed to save pipeline report: %v\n", err)
		}
		fmt.Printf("✅ Status counts: pass=%d warn=%d fail=%d\n", pass, warn, fail)
		if fail > 0 {
			log.Fatalf("%d workloads exceeded tolerances", fail)
		}
	},
}

// runDiff executes each workload on both runners, persisting raw results as
// it goes so a failed comparison still leaves evidence behind.
func runDiff(ctx context.Context, manifest *workload.Manifest, ref, ported workload.Runner) ([]diffcmp.Row, error) {
	var rows []diffcmp.Row
	for _, wl := range manifest.Workloads {
		refRaw, err := ref.Run(ctx, wl.ID)
		if err != nil {
			return nil, fmt.Errorf("reference runner failed on %s: %w", wl.ID, err)
		}
		portedRaw, err := ported.Run(ctx, wl.ID)
		if err != nil {
			return nil, fmt.Errorf("ported runner failed on %s: %w", wl.ID, err)
		}

		if _, err := workload.SaveRaw(filepath.Join(diffRawDir, "ref"), wl.ID, refRaw); err != nil {
			return nil, err
		}
		if _, err := workload.SaveRaw(filepath.Join(diffRawDir, "ported"), wl.ID, portedRaw); err != nil {
			return nil, err
		}

		refResult, err := workload.ParseResult(refRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reference result for %s: %w", wl.ID, err)
		}
		portedResult, err := workload.ParseResult(portedRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ported result for %s: %w", wl.ID, err)
		}

		outcome := diffcmp.Compare(refResult, portedResult, wl.Tolerances)
		rows = append(rows, diffcmp.Row{Workload: wl.ID, Outcome: outcome})
		fmt.Printf("  %s: %s\n", wl.ID, outcome.Status)
	}
	return rows, nil
}
