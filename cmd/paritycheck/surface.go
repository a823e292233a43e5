package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"paritycheck/internal/coverage"
	"paritycheck/internal/matrix"
	"paritycheck/internal/pipeline"
	"paritycheck/internal/report"
	"paritycheck/internal/surface"

	"github.com/spf13/cobra"
)

var (
	surfaceExecutedCSV   string
	surfaceMatrixCSV     string
	surfaceRulesCSV      string
	surfaceCoverManifest string
	surfaceOutMD         string
	surfaceOutGaps       string
	surfaceOutManifest   string
	surfaceStrictGate    bool
)

func init() {
	surfaceCmd.Flags().StringVar(&surfaceExecutedCSV, "executed-csv", "reports/verification/reference_coverage/executed_functions.csv", "Executed functions input")
	surfaceCmd.Flags().StringVar(&surfaceMatrixCSV, "matrix-csv", "reports/verification/traceability_matrix.csv", "Traceability matrix input")
	surfaceCmd.Flags().StringVar(&surfaceRulesCSV, "waiver-rules-csv", "verification/traceability/waiver_rules.csv", "Ordered waiver rules (optional)")
	surfaceCmd.Flags().StringVar(&surfaceCoverManifest, "coverage-manifest", "reports/verification/reference_coverage/manifest.json", "Coverage manifest for workload ids (optional)")
	surfaceCmd.Flags().StringVar(&surfaceOutMD, "out-md", "reports/verification/executed_surface_mapping.md", "Mapping markdown output")
	surfaceCmd.Flags().StringVar(&surfaceOutGaps, "out-gaps-csv", "reports/verification/executed_surface_gaps.csv", "Gap CSV output")
	surfaceCmd.Flags().StringVar(&surfaceOutManifest, "out-manifest", "reports/verification/executed_surface_manifest.json", "Manifest JSON output")
	surfaceCmd.Flags().BoolVar(&surfaceStrictGate, "strict-gate", false, "Exit nonzero when any P0/P1 gap remains")
}

var surfaceCmd = &cobra.Command{
	Use:   "surface",
	Short: "Join executed legacy functions with the matrix and rank the gaps",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		led := beginRun(ctx, "surface")
		rep := pipeline.NewReport("surface")

		rows, err := matrix.ReadMatrixCSV(surfaceMatrixCSV)
		if err != nil {
			log.Fatalf("Failed to read matrix CSV: %v", err)
		}
		rules, err := matrix.ReadWaiverRules(surfaceRulesCSV)
		if err != nil {
			log.Fatalf("Failed to read waiver rules: %v", err)
		}
		records, err := surface.ReadExecutedCSV(surfaceExecutedCSV)
		if err != nil {
			log.Fatalf("Failed to read executed CSV: %v", err)
		}

		var workloads []string
		if _, statErr := os.Stat(surfaceCoverManifest); statErr == nil {
			covManifest, err := coverage.ReadManifest(surfaceCoverManifest)
			if err != nil {
				log.Fatalf("Failed to read coverage manifest: %v", err)
			}
			workloads = covManifest.Workloads
		}

		fmt.Printf("📋 %d executed functions against %d matrix rows\n", len(records), len(rows))

		mapper := &surface.Mapper{
			Matrix:       rows,
			Rules:        rules,
			Demangler:    &surface.CxxFilt{},
			SubdirMarker: cfg.Upstream.Subdir,
			WorkloadIDs:  workloads,
		}

		h := rep.BeginStage("map")
		res := mapper.Map(records)
		rep.EndStage(h, map[string]float64{
			"executed": float64(res.TotalExecuted),
			"gaps":     float64(len(res.Gaps)),
			"p0":       float64(res.PriorityCounts["P0"]),
			"p1":       float64(res.PriorityCounts["P1"]),
		}, []string{surfaceOutGaps, surfaceOutManifest, surfaceOutMD}, nil)

		err = writeAll(
			func() error { return surface.WriteGapsCSV(surfaceOutGaps, res.Gaps) },
			func() error {
				manifest := surface.BuildManifest(res, workloads, surfaceOutMD, surfaceOutGaps)
				return surface.WriteManifest(surfaceOutManifest, manifest)
			},
			func() error {
				md := report.SurfaceMapping(res, workloads, surfaceOutMD, surfaceOutGaps, surfaceOutManifest)
				return report.WriteMarkdown(surfaceOutMD, md)
			},
		)
		if err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to write surface artifacts: %v", err)
		}

		led.artifact(ctx, "gaps_csv", surfaceOutGaps)
		led.artifact(ctx, "manifest_json", surfaceOutManifest)
		led.finish(ctx, nil, map[string]any{
			"executed": res.TotalExecuted,
			"p0":       res.PriorityCounts["P0"],
			"p1":       res.PriorityCounts["P1"],
			"p2":       res.PriorityCounts["P2"],
		})
		if err := rep.Save("reports/verification/surface_pipeline_report.json"); err != nil {
			fmt.Printf("⚠️  Failed to save pipeline report: %v\n", err)
		}

		fmt.Printf("✅ %d executed, %d implemented, P0=%d P1=%d P2=%d\n",
			res.TotalExecuted, res.MappedImplemented,
			res.PriorityCounts["P0"], res.PriorityCounts["P1"], res.PriorityCounts["P2"])
		if surfaceStrictGate && !res.GatePass() {
			log.Fatalf("Executed-surface gate failed: P0=%d P1=%d",
				res.PriorityCounts["P0"], res.PriorityCounts["P1"])
		}
	},
}
