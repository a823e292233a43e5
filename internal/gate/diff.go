package gate

import (
	"fmt"

	"paritycheck/internal/diffcmp"
)

type diffView struct {
	statuses map[string]string
	counts   map[string]int
}

func indexDiff(rows []diffcmp.Row) (*diffView, error) {
	v := &diffView{statuses: map[string]string{}, counts: map[string]int{}}
	for _, row := range rows {
		if _, dup := v.statuses[row.Workload]; dup {
			return nil, fmt.Errorf("duplicate workload in diff results: %s", row.Workload)
		}
		v.statuses[row.Workload] = row.Outcome.Status
		v.counts[row.Outcome.Status]++
	}
	return v, nil
}

func (v *diffView) summaryLine(label string) string {
	return fmt.Sprintf("%s summary: pass=%d warn=%d fail=%d",
		label, v.counts[diffcmp.StatusPass], v.counts[diffcmp.StatusWarn], v.counts[diffcmp.StatusFail])
}

func (v *diffView) failedIDs() map[string]bool {
	out := map[string]bool{}
	for id, status := range v.statuses {
		if status == diffcmp.StatusFail {
			out[id] = true
		}
	}
	return out
}

// StrictDiff fails when any workload failed its tolerance comparison.
func StrictDiff(rows []diffcmp.Row) (*Result, error) {
	v, err := indexDiff(rows)
	if err != nil {
		return nil, err
	}
	res := &Result{Pass: true}
	res.Lines = append(res.Lines, v.summaryLine("Differential"))
	if v.counts[diffcmp.StatusFail] > 0 {
		res.failf("FAIL: strict differential gate requires fail == 0")
		res.addf("Sample: %s", sample(v.failedIDs()))
		return res, nil
	}
	res.addf("PASS: strict differential gate")
	return res, nil
}

// NonRegressionDiff compares current per-workload statuses against a
// baseline keyed by workload id. Baseline workloads missing from current
// fail (coverage shrink), as do newly failing workloads and any fail count
// increase.
func NonRegressionDiff(current, baseline []diffcmp.Row) (*Result, error) {
	cur, err := indexDiff(current)
	if err != nil {
		return nil, err
	}
	base, err := indexDiff(baseline)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	res := &Result{Pass: true}

	missing := map[string]bool{}
	for id := range base.statuses {
		if _, ok := cur.statuses[id]; !ok {
			missing[id] = true
		}
	}
	if len(missing) > 0 {
		res.failf("FAIL: %d baseline workloads missing in current diff results", len(missing))
		res.addf("Sample: %s", sample(missing))
		return res, nil
	}

	res.Lines = append(res.Lines, cur.summaryLine("Current"), base.summaryLine("Baseline"))

	newFailing := diffIDs(cur.failedIDs(), base.failedIDs())
	if len(newFailing) > 0 {
		res.failf("FAIL: %d workloads newly failing tolerances", len(newFailing))
		res.addf("Sample: %s", sample(newFailing))
	}
	if cur.counts[diffcmp.StatusFail] > base.counts[diffcmp.StatusFail] {
		res.failf("FAIL: fail count increased (%d -> %d)",
			base.counts[diffcmp.StatusFail], cur.counts[diffcmp.StatusFail])
	}

	if res.Pass {
		improved := base.counts[diffcmp.StatusFail] - cur.counts[diffcmp.StatusFail]
		res.addf("PASS: non-regression differential gate (fail improvement: %d)", improved)
	}
	return res, nil
}
