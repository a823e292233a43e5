package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRust = `//! Port of MnParabola.h / MnParabola.cxx.

pub struct MnParabola {
    a: f64,
}

impl MnParabola {
    pub fn new(a: f64, b: f64, c: f64) -> Self {
        MnParabola { a }
    }

    pub fn min(&self) -> f64 {
        self.a
    }
}

pub fn line_search(start: f64, step: f64) -> f64 {
    start + step
}

#[cfg(test)]
mod tests {
    #[test]
    fn invisible_helper() {}
}
`

func TestScanSourceRust(t *testing.T) {
	s, err := NewScanner("rust")
	require.NoError(t, err)

	syms, err := s.ScanSource([]byte(sampleRust), "src/mn_parabola.rs")
	require.NoError(t, err)

	byName := map[string]Symbol{}
	for _, sym := range syms {
		byName[sym.Name] = sym
	}

	require.Contains(t, byName, "new")
	assert.Equal(t, "MnParabola", byName["new"].Owner)
	assert.Equal(t, 3, byName["new"].Arity)

	require.Contains(t, byName, "min")
	assert.Equal(t, 0, byName["min"].Arity, "&self is not a parameter")

	require.Contains(t, byName, "line_search")
	assert.Equal(t, "", byName["line_search"].Owner)
	assert.Equal(t, 2, byName["line_search"].Arity)

	assert.NotContains(t, byName, "invisible_helper", "test modules are cut before parsing")
}

const sampleGo = `package parabola

type Parabola struct{ a float64 }

func NewParabola(a, b, c float64) *Parabola {
	return &Parabola{a: a}
}

func (p *Parabola) Min() float64 {
	return p.a
}
`

func TestScanSourceGo(t *testing.T) {
	s, err := NewScanner("go")
	require.NoError(t, err)

	syms, err := s.ScanSource([]byte(sampleGo), "parabola/parabola.go")
	require.NoError(t, err)
	require.Len(t, syms, 2)

	byName := map[string]Symbol{}
	for _, sym := range syms {
		byName[sym.Name] = sym
	}

	assert.Equal(t, 3, byName["NewParabola"].Arity, "grouped parameters all count")
	assert.Equal(t, "Parabola", byName["Min"].Owner)
}

func TestNewScannerRejectsUnknownLanguage(t *testing.T) {
	_, err := NewScanner("fortran")
	assert.ErrorContains(t, err, "unsupported target language")
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "mnparabola", NormalizeName("MnParabola"))
	assert.Equal(t, "linesearch", NormalizeName("line_search"))
	assert.Equal(t, "operator", NormalizeName("operator()"))
}

func TestScanPortAnnotations(t *testing.T) {
	refs := ScanPortAnnotations([]byte(sampleRust))
	assert.Equal(t, []string{"MnParabola.h", "MnParabola.cxx"}, refs)
}

func TestScanPortAnnotationsWindowAndDedup(t *testing.T) {
	var src []byte
	src = append(src, []byte("// Replaces: MnStrategy.h MnStrategy.h\n")...)
	for i := 0; i < annotationWindow; i++ {
		src = append(src, []byte("\n")...)
	}
	src = append(src, []byte("// Replaces: TooLate.h\n")...)

	refs := ScanPortAnnotations(src)
	assert.Equal(t, []string{"MnStrategy.h"}, refs)
}
