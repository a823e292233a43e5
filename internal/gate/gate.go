// Package gate evaluates verification artifacts in two modes: strict, which
// requires the worst category to be empty, and non-regression, which
// compares against an immutable baseline snapshot. Evaluation never writes
// to its inputs.
package gate

import (
	"fmt"
	"sort"
	"strings"
)

// Modes accepted on the command line.
const (
	ModeStrict        = "strict"
	ModeNonRegression = "non-regression"
)

// sampleSize bounds how many offending identities a failure message lists.
const sampleSize = 5

// Result is a gate verdict plus its printable summary.
type Result struct {
	Pass  bool
	Lines []string
}

func (r *Result) addf(format string, args ...interface{}) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

func (r *Result) failf(format string, args ...interface{}) {
	r.Pass = false
	r.addf(format, args...)
}

// Summary joins the printable lines.
func (r *Result) Summary() string {
	return strings.Join(r.Lines, "\n")
}

func sample(ids map[string]bool) string {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	if len(sorted) > sampleSize {
		sorted = sorted[:sampleSize]
	}
	return strings.Join(sorted, ", ")
}

func diffIDs(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for id := range a {
		if !b[id] {
			out[id] = true
		}
	}
	return out
}
