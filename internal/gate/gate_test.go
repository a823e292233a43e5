package gate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paritycheck/internal/diffcmp"
	"paritycheck/internal/matrix"
	"paritycheck/internal/surface"
)

func mrow(id, effective string) matrix.Row {
	return matrix.Row{ID: id, EffectiveStatus: effective}
}

func TestStrictTraceability(t *testing.T) {
	res, err := StrictTraceability([]matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Bar@2", matrix.EffectiveWaived),
	})
	require.NoError(t, err)
	assert.True(t, res.Pass)
	assert.Contains(t, res.Summary(), "implemented=1 waived=1 unresolved=0")

	res, err = StrictTraceability([]matrix.Row{mrow("a.h::Foo@1", matrix.EffectiveUnresolved)})
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "strict traceability gate requires unresolved == 0")
}

func TestStrictTraceabilityRejectsDuplicateIDs(t *testing.T) {
	_, err := StrictTraceability([]matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
	})
	assert.ErrorContains(t, err, "duplicate legacy_id")
}

func TestNonRegressionTraceabilityBaselineCoverageShrink(t *testing.T) {
	current := []matrix.Row{mrow("a.h::Foo@1", matrix.EffectiveImplemented)}
	baseline := []matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Gone@2", matrix.EffectiveWaived),
	}
	res, err := NonRegressionTraceability(current, baseline)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "baseline legacy IDs missing")
	assert.Contains(t, res.Summary(), "a.h::Gone@2")
}

func TestNonRegressionTraceabilityNewUnresolvedFails(t *testing.T) {
	current := []matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Bar@2", matrix.EffectiveUnresolved),
	}
	baseline := []matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Bar@2", matrix.EffectiveWaived),
	}
	res, err := NonRegressionTraceability(current, baseline)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "new unresolved legacy IDs")
	assert.Contains(t, res.Summary(), "regressed from implemented/waived")
}

func TestNonRegressionTraceabilityImprovementPasses(t *testing.T) {
	current := []matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Bar@2", matrix.EffectiveImplemented),
	}
	baseline := []matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveImplemented),
		mrow("a.h::Bar@2", matrix.EffectiveUnresolved),
	}
	res, err := NonRegressionTraceability(current, baseline)
	require.NoError(t, err)
	assert.True(t, res.Pass)
	assert.Contains(t, res.Summary(), "unresolved improvement: 1")
}

func TestNonRegressionTraceabilityEqualSetsPassDespiteOtherChanges(t *testing.T) {
	// Extra implemented rows in current must not affect the verdict.
	current := []matrix.Row{
		mrow("a.h::Foo@1", matrix.EffectiveUnresolved),
		mrow("a.h::New@9", matrix.EffectiveImplemented),
	}
	baseline := []matrix.Row{mrow("a.h::Foo@1", matrix.EffectiveUnresolved)}
	res, err := NonRegressionTraceability(current, baseline)
	require.NoError(t, err)
	assert.True(t, res.Pass)
}

func gap(file, symbol, mangled, priority string) surface.Gap {
	return surface.Gap{UpstreamFile: file, UpstreamSymbol: symbol, Mangled: mangled, Priority: priority}
}

func TestStrictSurface(t *testing.T) {
	res := StrictSurface([]surface.Gap{gap("a.cxx", "f", "_Zf", "P2")})
	assert.True(t, res.Pass)

	res = StrictSurface([]surface.Gap{gap("a.cxx", "f", "_Zf", "P1")})
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "P0 == 0 and P1 == 0")
}

func TestNonRegressionSurfaceCountIncreaseFailsWithUnchangedSet(t *testing.T) {
	// Same offending identity counted twice defends against double counting.
	current := []surface.Gap{
		gap("a.cxx", "f", "_Zf", "P1"),
		gap("a.cxx", "f", "_Zf", "P1"),
	}
	baseline := []surface.Gap{gap("a.cxx", "f", "_Zf", "P1")}
	res := NonRegressionSurface(current, baseline)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "P1 gap count increased (1 -> 2)")
}

func TestNonRegressionSurfaceDisappearedGapIsImprovement(t *testing.T) {
	baseline := []surface.Gap{
		gap("a.cxx", "f", "_Zf", "P1"),
		gap("b.cxx", "g", "_Zg", "P2"),
	}
	current := []surface.Gap{gap("b.cxx", "g", "_Zg", "P2")}
	res := NonRegressionSurface(current, baseline)
	assert.True(t, res.Pass)
	assert.Contains(t, res.Summary(), "P0/P1 improvement: 1")
}

func TestNonRegressionSurfaceNewHighPriorityFails(t *testing.T) {
	current := []surface.Gap{gap("a.cxx", "f", "_Zf", "P0")}
	res := NonRegressionSurface(current, nil)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "new P0/P1 executed-surface gaps")
	assert.Contains(t, res.Summary(), "a.cxx::f::_Zf")
}

func TestSampleIsBounded(t *testing.T) {
	ids := map[string]bool{}
	for i := 0; i < 20; i++ {
		ids[fmt.Sprintf("id-%02d", i)] = true
	}
	s := sample(ids)
	assert.Equal(t, "id-00, id-01, id-02, id-03, id-04", s)
}

func drow(id, status string) diffcmp.Row {
	return diffcmp.Row{Workload: id, Outcome: diffcmp.Outcome{Status: status}}
}

func TestStrictDiff(t *testing.T) {
	res, err := StrictDiff([]diffcmp.Row{drow("w1", diffcmp.StatusPass), drow("w2", diffcmp.StatusWarn)})
	require.NoError(t, err)
	assert.True(t, res.Pass, "warnings do not fail the strict gate")

	res, err = StrictDiff([]diffcmp.Row{drow("w1", diffcmp.StatusFail)})
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "w1")
}

func TestNonRegressionDiff(t *testing.T) {
	current := []diffcmp.Row{drow("w1", diffcmp.StatusPass)}
	baseline := []diffcmp.Row{drow("w1", diffcmp.StatusFail), drow("w2", diffcmp.StatusPass)}

	res, err := NonRegressionDiff(current, baseline)
	require.NoError(t, err)
	assert.False(t, res.Pass, "baseline workload w2 disappeared")

	current = append(current, drow("w2", diffcmp.StatusPass))
	res, err = NonRegressionDiff(current, baseline)
	require.NoError(t, err)
	assert.True(t, res.Pass)
	assert.Contains(t, res.Summary(), "fail improvement: 1")

	current[1] = drow("w2", diffcmp.StatusFail)
	res, err = NonRegressionDiff(current, baseline)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Summary(), "newly failing")
}
