package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"paritycheck/internal/diffcmp"
	"paritycheck/internal/gate"
	"paritycheck/internal/matrix"
	"paritycheck/internal/surface"

	"github.com/spf13/cobra"
)

var (
	gateMode     string
	gateInput    string
	gateBaseline string
)

func init() {
	gateCmd.PersistentFlags().StringVar(&gateMode, "mode", gate.ModeStrict, "Gate mode: strict or non-regression")
	gateCmd.PersistentFlags().StringVar(&gateInput, "input", "", "Current artifact (defaults per artifact kind)")
	gateCmd.PersistentFlags().StringVar(&gateBaseline, "baseline", "", "Baseline artifact (required for non-regression)")

	gateCmd.AddCommand(gateTraceabilityCmd)
	gateCmd.AddCommand(gateSurfaceCmd)
	gateCmd.AddCommand(gateDiffCmd)
}

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Evaluate pass/fail gates over the verification artifacts",
}

func checkGateMode() {
	if gateMode != gate.ModeStrict && gateMode != gate.ModeNonRegression {
		log.Fatalf("Unknown gate mode %q (want %s or %s)", gateMode, gate.ModeStrict, gate.ModeNonRegression)
	}
	if gateMode == gate.ModeNonRegression && gateBaseline == "" {
		log.Fatalf("--baseline is required in %s mode", gate.ModeNonRegression)
	}
}

// finishGate prints the verdict, records it, and sets the exit code.
func finishGate(artifact string, res *gate.Result) {
	ctx := context.Background()
	led := beginRun(ctx, "gate")
	led.gate(ctx, artifact, gateMode, res.Pass, res.Summary())
	led.finish(ctx, nil, map[string]any{"artifact": artifact, "mode": gateMode, "pass": res.Pass})

	fmt.Println(res.Summary())
	if !res.Pass {
		os.Exit(1)
	}
}

var gateTraceabilityCmd = &cobra.Command{
	Use:   "traceability",
	Short: "Gate on the traceability matrix",
	Run: func(cmd *cobra.Command, args []string) {
		checkGateMode()
		input := gateInput
		if input == "" {
			input = "reports/verification/traceability_matrix.csv"
		}
		current, err := matrix.ReadMatrixCSV(input)
		if err != nil {
			log.Fatalf("Failed to read matrix CSV: %v", err)
		}

		var res *gate.Result
		if gateMode == gate.ModeStrict {
			res, err = gate.StrictTraceability(current)
		} else {
			var baseline []matrix.Row
			baseline, err = matrix.ReadMatrixCSV(gateBaseline)
			if err != nil {
				log.Fatalf("Failed to read baseline matrix: %v", err)
			}
			res, err = gate.NonRegressionTraceability(current, baseline)
		}
		if err != nil {
			log.Fatalf("Gate evaluation failed: %v", err)
		}
		finishGate("traceability", res)
	},
}

var gateSurfaceCmd = &cobra.Command{
	Use:   "surface",
	Short: "Gate on the executed-surface gaps",
	Run: func(cmd *cobra.Command, args []string) {
		checkGateMode()
		input := gateInput
		if input == "" {
			input = "reports/verification/executed_surface_gaps.csv"
		}
		current, err := surface.ReadGapsCSV(input)
		if err != nil {
			log.Fatalf("Failed to read gaps CSV: %v", err)
		}

		var res *gate.Result
		if gateMode == gate.ModeStrict {
			res = gate.StrictSurface(current)
		} else {
			baseline, err := surface.ReadGapsCSV(gateBaseline)
			if err != nil {
				log.Fatalf("Failed to read baseline gaps: %v", err)
			}
			res = gate.NonRegressionSurface(current, baseline)
		}
		finishGate("surface", res)
	},
}

var gateDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Gate on the differential results",
	Run: func(cmd *cobra.Command, args []string) {
		checkGateMode()
		input := gateInput
		if input == "" {
			input = "reports/verification/diff_results.csv"
		}
		current, err := diffcmp.ReadStatuses(input)
		if err != nil {
			log.Fatalf("Failed to read diff results: %v", err)
		}

		var res *gate.Result
		if gateMode == gate.ModeStrict {
			res, err = gate.StrictDiff(current)
		} else {
			var baseline []diffcmp.Row
			baseline, err = diffcmp.ReadStatuses(gateBaseline)
			if err != nil {
				log.Fatalf("Failed to read baseline diff results: %v", err)
			}
			res, err = gate.NonRegressionDiff(current, baseline)
		}
		if err != nil {
			log.Fatalf("Gate evaluation failed: %v", err)
		}
		finishGate("diff", res)
	},
}
