package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = `#ifndef MN_MnParabola
#define MN_MnParabola

/* A parabola of the form
   y = a*x*x + b*x + c
*/

namespace ROOT {

namespace Minuit2 {

class MnParabola {

public:
   MnParabola(double a, double b, double c);

   double Y(double x) const { return (fA * x * x + fB * x + fC); }

   // inline accessor
   double A() const { return fA; }

   double B() const { return fB; }

   virtual double
   operator()(double x) const = 0;

private:
   double fA;
   double fB;
   double fC;
};

} // namespace Minuit2

} // namespace ROOT

#endif
`

const sampleSource = `#include "MnParabola.h"

double MnParabola::Min() const {
   if (something(fA)) {
      return 0.0;
   }
   return -fB / (2. * fA);
}

MnParabola::~MnParabola() {}

double helperDeclarationOnly(double x);
`

func symbolsByName(symbols []Symbol) map[string]Symbol {
	out := make(map[string]Symbol, len(symbols))
	for _, s := range symbols {
		out[s.Name] = s
	}
	return out
}

func TestExtractSymbols_Header(t *testing.T) {
	symbols := ExtractSymbols(sampleHeader, "inc/MnParabola.h", "MnParabola", false)
	byName := symbolsByName(symbols)

	t.Run("constructor declaration", func(t *testing.T) {
		s, ok := byName["MnParabola"]
		require.True(t, ok, "constructor should be extracted")
		assert.Equal(t, 3, s.Arity)
	})

	t.Run("inline methods", func(t *testing.T) {
		s, ok := byName["Y"]
		require.True(t, ok)
		assert.Equal(t, 1, s.Arity)

		_, ok = byName["A"]
		assert.True(t, ok)
		_, ok = byName["B"]
		assert.True(t, ok)
	})

	t.Run("multi-line operator declaration", func(t *testing.T) {
		s, ok := byName["operator()"]
		require.True(t, ok, "operator split across lines should be merged")
		assert.Equal(t, 1, s.Arity)
	})

	t.Run("no keyword or field noise", func(t *testing.T) {
		for _, banned := range []string{"if", "return", "fA"} {
			_, ok := byName[banned]
			assert.False(t, ok, "should not extract %q", banned)
		}
	})
}

func TestExtractSymbols_SourceKeepsDefinitionsOnly(t *testing.T) {
	symbols := ExtractSymbols(sampleSource, "src/MnParabola.cxx", "MnParabola", true)
	byName := symbolsByName(symbols)

	_, ok := byName["Min"]
	assert.True(t, ok, "body-bearing definition should be kept")

	_, ok = byName["~MnParabola"]
	assert.True(t, ok, "qualified destructor definition should be kept")

	_, ok = byName["helperDeclarationOnly"]
	assert.False(t, ok, "plain declarations are skipped in implementation files")

	_, ok = byName["something"]
	assert.False(t, ok, "call sites inside bodies are not signatures")
}

func TestExtractSymbols_ForeignDestructorRejected(t *testing.T) {
	src := "MnOther::~MnOther() {}\n"
	symbols := ExtractSymbols(src, "src/MnParabola.cxx", "MnParabola", true)
	assert.Empty(t, symbols)
}

func TestExtractSymbols_DedupePrefersEarliestLine(t *testing.T) {
	src := `class Thing {
public:
   double Value(double x) const;
   double Value(double x) const;
};
`
	symbols := ExtractSymbols(src, "inc/Thing.h", "Thing", false)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Value", symbols[0].Name)
	assert.Equal(t, 3, symbols[0].Line)
}

func TestEstimateArity(t *testing.T) {
	cases := []struct {
		params string
		want   int
	}{
		{"", 0},
		{"void", 0},
		{"double x", 1},
		{"double a, double b", 2},
		{"const std::vector<double, Alloc>& v", 1},
		{"std::pair<int, int> p, double w", 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, EstimateArity(c.params), "params=%q", c.params)
	}
}

func TestScannerStateIsolation(t *testing.T) {
	// two scanners fed the same lines behave identically and do not share
	// state through package globals
	lines := []string{
		"class Box {",
		"public:",
		"   int Size() const;",
		"};",
	}

	a, b := NewScanner(), NewScanner()
	var fromA, fromB []Candidate
	for _, l := range lines {
		fromA = append(fromA, a.Feed(l)...)
		fromB = append(fromB, b.Feed(l)...)
	}
	require.Equal(t, fromA, fromB)
	require.Len(t, fromA, 1)
	assert.Equal(t, 3, fromA[0].Line)
	assert.Equal(t, "int Size() const;", fromA[0].Text)
}

func TestScannerIgnoresFunctionsBelowTopLevel(t *testing.T) {
	src := `namespace Deep {
double Hidden(double x) { return x; }
}
`
	sc := NewScanner()
	var candidates []Candidate
	for _, l := range splitLines(src) {
		candidates = append(candidates, sc.Feed(l)...)
	}
	assert.Empty(t, candidates, "namespace scope is neither top level nor a class body")
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
