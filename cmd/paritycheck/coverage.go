package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"paritycheck/internal/coverage"
	"paritycheck/internal/pipeline"
	"paritycheck/internal/report"
	"paritycheck/internal/workload"

	"github.com/spf13/cobra"
)

var (
	coverageExportJSON   string
	coverageWorkloads    string
	coverageRefBin       string
	coverageLLVMProfdata string
	coverageLLVMCov      string
	coverageOutDir       string
)

func init() {
	coverageCmd.Flags().StringVar(&coverageExportJSON, "export-json", "", "Existing llvm-cov export JSON (skips running workloads)")
	coverageCmd.Flags().StringVar(&coverageWorkloads, "workloads", "verification/workloads/workloads.json", "Workload manifest")
	coverageCmd.Flags().StringVar(&coverageRefBin, "ref-bin", "", "Instrumented reference runner binary")
	coverageCmd.Flags().StringVar(&coverageLLVMProfdata, "llvm-profdata", "llvm-profdata", "llvm-profdata binary")
	coverageCmd.Flags().StringVar(&coverageLLVMCov, "llvm-cov", "llvm-cov", "llvm-cov binary")
	coverageCmd.Flags().StringVar(&coverageOutDir, "out-dir", "reports/verification/reference_coverage", "Output directory")
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Produce executed/unexecuted function CSVs from reference coverage",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		led := beginRun(ctx, "coverage")
		rep := pipeline.NewReport("coverage")

		manifest, err := workload.LoadManifest(coverageWorkloads)
		if err != nil {
			log.Fatalf("Failed to load workload manifest: %v", err)
		}
		ids := manifest.IDs()

		var export []byte
		if coverageExportJSON != "" {
			export, err = os.ReadFile(coverageExportJSON)
			if err != nil {
				log.Fatalf("Failed to read export JSON: %v", err)
			}
			fmt.Printf("📥 Using captured export %s\n", coverageExportJSON)
		} else {
			if coverageRefBin == "" {
				log.Fatalf("Either --export-json or --ref-bin is required")
			}
			fmt.Printf("🚀 Running %d workloads through %s...\n", len(ids), coverageRefBin)
			profiler := &coverage.Profiler{
				Runner:       &workload.ExecRunner{Bin: coverageRefBin},
				LLVMProfdata: coverageLLVMProfdata,
				LLVMCov:      coverageLLVMCov,
			}
			h := rep.BeginStage("collect")
			export, err = profiler.Collect(ctx, ids, filepath.Join(coverageOutDir, "raw"))
			rep.EndStage(h, map[string]float64{"workloads": float64(len(ids))}, nil, err)
			if err != nil {
				led.finish(ctx, err, nil)
				log.Fatalf("Failed to collect coverage: %v", err)
			}
		}

		h := rep.BeginStage("parse-export")
		covReport, err := coverage.ParseExport(export, cfg.Upstream.Subdir)
		if err != nil {
			rep.EndStage(h, nil, nil, err)
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to parse coverage export: %v", err)
		}
		rep.EndStage(h, map[string]float64{
			"in_scope": float64(covReport.FunctionsInScope),
			"executed": float64(covReport.FunctionsExecuted),
		}, nil, nil)

		executedCSV := filepath.Join(coverageOutDir, "executed_functions.csv")
		unexecutedCSV := filepath.Join(coverageOutDir, "unexecuted_functions.csv")
		summaryMD := filepath.Join(coverageOutDir, "summary.md")
		manifestJSON := filepath.Join(coverageOutDir, "manifest.json")
		exportJSON := filepath.Join(coverageOutDir, "raw", "llvm_cov_export.json")

		err = writeAll(
			func() error { return coverage.WriteFunctionsCSV(executedCSV, covReport.Executed()) },
			func() error { return coverage.WriteFunctionsCSV(unexecutedCSV, covReport.Unexecuted()) },
			func() error {
				md := report.CoverageSummary(cfg.Upstream.Tag, cfg.Upstream.Subdir, ids, covReport,
					executedCSV, unexecutedCSV, exportJSON)
				return report.WriteMarkdown(summaryMD, md)
			},
			func() error {
				return coverage.WriteManifest(manifestJSON, coverage.Manifest{
					ReferenceTag: cfg.Upstream.Tag,
					RunnerBinary: coverageRefBin,
					Workloads:    ids,
					Counts: coverage.ManifestCounts{
						FunctionsInScope:    covReport.FunctionsInScope,
						FunctionsExecuted:   covReport.FunctionsExecuted,
						FunctionCoveragePct: covReport.FunctionCoveragePct(),
						LineCoveragePct:     covReport.LineCoveragePct(),
					},
					Artifacts: map[string]string{
						"executed_functions_csv":   executedCSV,
						"unexecuted_functions_csv": unexecutedCSV,
						"summary_md":               summaryMD,
					},
				})
			},
		)
		if err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to write coverage artifacts: %v", err)
		}

		led.artifact(ctx, "executed_csv", executedCSV)
		led.artifact(ctx, "manifest_json", manifestJSON)
		led.finish(ctx, nil, map[string]any{
			"in_scope": covReport.FunctionsInScope,
			"executed": covReport.FunctionsExecuted,
		})
		if err := rep.Save(filepath.Join(coverageOutDir, "pipeline_report.json")); err != nil {
			fmt.Printf("⚠️  Failed to save pipeline report: %v\n", err)
		}
		fmt.Printf("✅ %d/%d in-scope functions executed (%.2f%%)\n",
			covReport.FunctionsExecuted, covReport.FunctionsInScope, covReport.FunctionCoveragePct())
	},
}
