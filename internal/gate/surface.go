package gate

import (
	"fmt"

	"paritycheck/internal/surface"
)

func gapCounts(gaps []surface.Gap) map[string]int {
	out := map[string]int{}
	for _, g := range gaps {
		out[g.Priority]++
	}
	return out
}

func highPriorityIDs(gaps []surface.Gap) map[string]bool {
	out := map[string]bool{}
	for _, g := range gaps {
		if g.Priority == "P0" || g.Priority == "P1" {
			out[g.ID()] = true
		}
	}
	return out
}

func gapSummaryLine(label string, counts map[string]int) string {
	return fmt.Sprintf("%s summary: P0=%d P1=%d P2=%d", label, counts["P0"], counts["P1"], counts["P2"])
}

// StrictSurface fails when any P0 or P1 gap remains.
func StrictSurface(gaps []surface.Gap) *Result {
	counts := gapCounts(gaps)
	res := &Result{Pass: true}
	res.Lines = append(res.Lines, gapSummaryLine("Executed-surface", counts))
	if counts["P0"]+counts["P1"] > 0 {
		res.failf("FAIL: strict executed-surface gate requires P0 == 0 and P1 == 0")
		return res
	}
	res.addf("PASS: strict executed-surface gate")
	return res
}

// NonRegressionSurface compares current gaps against a baseline snapshot.
// A gap disappearing from the baseline is an improvement; new P0/P1 gaps or
// any P0/P1 count increase fail, even when the offending id set is
// unchanged.
func NonRegressionSurface(current, baseline []surface.Gap) *Result {
	curCounts := gapCounts(current)
	baseCounts := gapCounts(baseline)

	res := &Result{Pass: true}
	res.Lines = append(res.Lines,
		gapSummaryLine("Current", curCounts),
		gapSummaryLine("Baseline", baseCounts),
	)

	newHigh := diffIDs(highPriorityIDs(current), highPriorityIDs(baseline))
	if len(newHigh) > 0 {
		res.failf("FAIL: %d new P0/P1 executed-surface gaps introduced", len(newHigh))
		res.addf("Sample: %s", sample(newHigh))
	}
	if curCounts["P0"] > baseCounts["P0"] {
		res.failf("FAIL: P0 gap count increased (%d -> %d)", baseCounts["P0"], curCounts["P0"])
	}
	if curCounts["P1"] > baseCounts["P1"] {
		res.failf("FAIL: P1 gap count increased (%d -> %d)", baseCounts["P1"], curCounts["P1"])
	}

	if res.Pass {
		improved := (baseCounts["P0"] + baseCounts["P1"]) - (curCounts["P0"] + curCounts["P1"])
		res.addf("PASS: non-regression executed-surface gate (P0/P1 improvement: %d)", improved)
	}
	return res
}
