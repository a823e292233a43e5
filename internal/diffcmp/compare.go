package diffcmp

import (
	"fmt"
	"math"

	"paritycheck/internal/workload"
)

// Outcome statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// Outcome is the comparison verdict for one workload.
type Outcome struct {
	Status      string
	Issues      []string
	Warnings    []string
	FvalAbs     float64
	EdmAbs      float64
	MaxParamAbs float64
	MaxErrorAbs float64
	MaxCovAbs   float64
	MinosAbs    float64
	NfcnRel     float64
}

// Compare checks a ported result against the reference under the workload's
// tolerance spec. Optional metrics (errors, covariance, MINOS) are compared
// only when their tolerance key is present; nfcn divergence only ever warns.
func Compare(ref, ported *workload.Result, tol map[string]float64) Outcome {
	var out Outcome

	if ref.Valid != ported.Valid {
		out.issue("valid mismatch ref=%t ported=%t", ref.Valid, ported.Valid)
	}

	out.FvalAbs = math.Abs(ref.Fval - ported.Fval)
	if out.FvalAbs > tol["fval_abs"] {
		out.issue("fval abs diff %.3e > %g", out.FvalAbs, tol["fval_abs"])
	}

	out.EdmAbs = math.Abs(ref.Edm - ported.Edm)
	if out.EdmAbs > tol["edm_abs"] {
		out.issue("edm abs diff %.3e > %g", out.EdmAbs, tol["edm_abs"])
	}

	out.MaxParamAbs = maxAbsDiff(ref.Params, ported.Params)
	if math.IsInf(out.MaxParamAbs, 1) {
		out.issue("parameter vector size mismatch")
	} else if out.MaxParamAbs > tol["param_abs"] {
		out.issue("param max abs diff %.3e > %g", out.MaxParamAbs, tol["param_abs"])
	}

	if errTol, ok := tol["error_abs"]; ok {
		out.MaxErrorAbs = maxAbsDiff(ref.Errors, ported.Errors)
		if math.IsInf(out.MaxErrorAbs, 1) {
			out.issue("error vector size mismatch")
		} else if out.MaxErrorAbs > errTol {
			out.issue("error max abs diff %.3e > %g", out.MaxErrorAbs, errTol)
		}
	}

	if covTol, ok := tol["cov_abs"]; ok {
		switch {
		case ref.HasCovariance != ported.HasCovariance:
			out.issue("covariance presence mismatch ref=%t ported=%t", ref.HasCovariance, ported.HasCovariance)
		case ref.HasCovariance:
			out.MaxCovAbs = maxAbsDiffMatrix(ref.Covariance, ported.Covariance)
			if math.IsInf(out.MaxCovAbs, 1) || out.MaxCovAbs > covTol {
				out.issue("covariance max abs diff %.3e > %g", out.MaxCovAbs, covTol)
			}
		}
	}

	if minosTol, ok := tol["minos_abs"]; ok {
		switch {
		case ref.HasMinos != ported.HasMinos:
			out.issue("minos presence mismatch ref=%t ported=%t", ref.HasMinos, ported.HasMinos)
		case ref.HasMinos:
			refM, portedM := minosOrZero(ref.Minos), minosOrZero(ported.Minos)
			if refM.Valid != portedM.Valid {
				out.issue("minos validity mismatch")
			}
			lowerAbs := math.Abs(refM.Lower - portedM.Lower)
			upperAbs := math.Abs(refM.Upper - portedM.Upper)
			out.MinosAbs = math.Max(lowerAbs, upperAbs)
			if out.MinosAbs > minosTol {
				out.issue("minos max abs diff %.3e > %g", out.MinosAbs, minosTol)
			}
		}
	}

	out.NfcnRel = relativeDiff(ref.Nfcn, ported.Nfcn)
	nfcnWarn, ok := tol["nfcn_rel_warn"]
	if !ok {
		nfcnWarn = 1.0
	}
	if out.NfcnRel > nfcnWarn {
		out.Warnings = append(out.Warnings, fmt.Sprintf("nfcn relative diff %.3f > %g", out.NfcnRel, nfcnWarn))
	}

	switch {
	case len(out.Issues) > 0:
		out.Status = StatusFail
	case len(out.Warnings) > 0:
		out.Status = StatusWarn
	default:
		out.Status = StatusPass
	}

	// Non-finite vector diffs are recorded as -1 so the CSV stays numeric.
	out.MaxParamAbs = finiteOrSentinel(out.MaxParamAbs)
	out.MaxErrorAbs = finiteOrSentinel(out.MaxErrorAbs)
	out.MaxCovAbs = finiteOrSentinel(out.MaxCovAbs)
	return out
}

func (o *Outcome) issue(format string, args ...interface{}) {
	o.Issues = append(o.Issues, fmt.Sprintf(format, args...))
}

func maxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	out := 0.0
	for i := range a {
		out = math.Max(out, math.Abs(a[i]-b[i]))
	}
	return out
}

func maxAbsDiffMatrix(a, b [][]float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	out := 0.0
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return math.Inf(1)
		}
		for j := range a[i] {
			out = math.Max(out, math.Abs(a[i][j]-b[i][j]))
		}
	}
	return out
}

// relativeDiff guards the denominator so two zero counts compare equal.
func relativeDiff(a, b float64) float64 {
	denom := math.Max(math.Max(math.Abs(a), math.Abs(b)), 1e-16)
	return math.Abs(a-b) / denom
}

func minosOrZero(m *workload.Minos) workload.Minos {
	if m == nil {
		return workload.Minos{}
	}
	return *m
}

func finiteOrSentinel(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return -1.0
	}
	return v
}
