package gate

import (
	"fmt"

	"paritycheck/internal/matrix"
)

type matrixView struct {
	statuses map[string]string
	counts   map[string]int
}

func indexMatrix(rows []matrix.Row) (*matrixView, error) {
	v := &matrixView{statuses: map[string]string{}, counts: map[string]int{}}
	for _, row := range rows {
		if _, dup := v.statuses[row.ID]; dup {
			return nil, fmt.Errorf("duplicate legacy_id in matrix: %s", row.ID)
		}
		v.statuses[row.ID] = row.EffectiveStatus
		v.counts[row.EffectiveStatus]++
	}
	return v, nil
}

func (v *matrixView) idsWith(statuses ...string) map[string]bool {
	want := map[string]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	out := map[string]bool{}
	for id, status := range v.statuses {
		if want[status] {
			out[id] = true
		}
	}
	return out
}

func (v *matrixView) summaryLine(label string) string {
	return fmt.Sprintf("%s summary: implemented=%d waived=%d unresolved=%d",
		label, v.counts[matrix.EffectiveImplemented], v.counts[matrix.EffectiveWaived], v.counts[matrix.EffectiveUnresolved])
}

// StrictTraceability fails when any row is unresolved.
func StrictTraceability(rows []matrix.Row) (*Result, error) {
	v, err := indexMatrix(rows)
	if err != nil {
		return nil, err
	}
	res := &Result{Pass: true}
	res.Lines = append(res.Lines, v.summaryLine("Traceability"))
	if v.counts[matrix.EffectiveUnresolved] > 0 {
		res.failf("FAIL: strict traceability gate requires unresolved == 0")
		return res, nil
	}
	res.addf("PASS: strict traceability gate")
	return res, nil
}

// NonRegressionTraceability compares the current matrix against a baseline.
// It fails on baseline ids missing from current, on new or regressed
// unresolved ids, and on any unresolved count increase.
func NonRegressionTraceability(current, baseline []matrix.Row) (*Result, error) {
	cur, err := indexMatrix(current)
	if err != nil {
		return nil, err
	}
	base, err := indexMatrix(baseline)
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
		res.failf("FAIL: %d baseline legacy IDs missing in current matrix", len(missing))
		res.addf("Sample: %s", sample(missing))
		return res, nil
	}

	res.Lines = append(res.Lines, cur.summaryLine("Current"), base.summaryLine("Baseline"))

	curUnresolved := cur.idsWith(matrix.EffectiveUnresolved)
	baseUnresolved := base.idsWith(matrix.EffectiveUnresolved)

	newUnresolved := diffIDs(curUnresolved, baseUnresolved)
	if len(newUnresolved) > 0 {
		res.failf("FAIL: %d new unresolved legacy IDs introduced", len(newUnresolved))
		res.addf("Sample: %s", sample(newUnresolved))
	}

	regressed := map[string]bool{}
	for id := range base.idsWith(matrix.EffectiveImplemented, matrix.EffectiveWaived) {
		if cur.statuses[id] == matrix.EffectiveUnresolved {
			regressed[id] = true
		}
	}
	if len(regressed) > 0 {
		res.failf("FAIL: %d IDs regressed from implemented/waived to unresolved", len(regressed))
		res.addf("Sample: %s", sample(regressed))
	}

	if cur.counts[matrix.EffectiveUnresolved] > base.counts[matrix.EffectiveUnresolved] {
		res.failf("FAIL: unresolved count increased (%d -> %d)",
			base.counts[matrix.EffectiveUnresolved], cur.counts[matrix.EffectiveUnresolved])
	}

	if res.Pass {
		improved := base.counts[matrix.EffectiveUnresolved] - cur.counts[matrix.EffectiveUnresolved]
		res.addf("PASS: non-regression traceability gate (unresolved improvement: %d)", improved)
	}
	return res, nil
}
