package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paritycheck/internal/config"
	"paritycheck/internal/match"
	"paritycheck/internal/matrix"
	"paritycheck/internal/target"
)

const parabolaSource = `#include "MnParabola.h"

double MnParabola::Min() const {
   return -fB / (2. * fA);
}

double MnParabola::Y(double x) const {
   return fA * x * x + fB * x + fC;
}
`

// fileFetcher mimics the production fetcher contract: it returns a local
// path to the cached file, never the file's contents.
type fileFetcher struct {
	dir   string
	files map[string]string
	errs  map[string]error
}

func (f *fileFetcher) FetchFile(repoSlug, subdir, commit, relPath string) (string, error) {
	if err, ok := f.errs[relPath]; ok {
		return "", err
	}
	content, ok := f.files[relPath]
	if !ok {
		return "", errors.New("not found: " + relPath)
	}
	path := filepath.Join(f.dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func testUpstream() match.Upstream {
	return match.Upstream{
		Repo:   "https://github.com/root-project/root.git",
		Subdir: "math/minuit2",
		Ref:    "v6-30-04",
		Commit: "abc123",
	}
}

func rowsBySymbol(rows []matrix.ParityRow) map[string]matrix.ParityRow {
	out := make(map[string]matrix.ParityRow, len(rows))
	for _, row := range rows {
		out[row.UpstreamSymbol] = row
	}
	return out
}

func TestBuildParityRowsExtractsFetchedSources(t *testing.T) {
	idx := &target.Index{
		ByFile: map[string][]target.Symbol{
			"src/mn_parabola.rs": {{Name: "min", File: "src/mn_parabola.rs", Line: 30}},
		},
		ByNorm:      map[string][]target.Symbol{},
		Annotations: map[string][]string{},
	}
	matcher := match.NewMatcher(idx, map[string][]string{"MnParabola": {"src/mn_parabola.rs"}}, nil, nil)
	fetcher := &fileFetcher{
		dir:   t.TempDir(),
		files: map[string]string{"src/MnParabola.cxx": parabolaSource},
	}

	rows := buildParityRows(matcher, fetcher, testUpstream(), "root-project/root", []config.PortEntry{
		{Path: "src/MnParabola.cxx", Basename: "MnParabola"},
	})

	require.NotEmpty(t, rows)
	bySym := rowsBySymbol(rows)
	require.Contains(t, bySym, "Min", "symbols come from the fetched file's contents")
	assert.NotContains(t, bySym, matrix.PlaceholderSymbol)

	min := bySym["Min"]
	assert.Equal(t, matrix.StatusImplemented, min.Status)
	assert.Equal(t, "src/mn_parabola.rs", min.TargetFile)
	assert.Equal(t, "abc123", min.UpstreamCommit)
}

func TestBuildParityRowsFetchErrorBecomesUnavailableRow(t *testing.T) {
	matcher := match.NewMatcher(&target.Index{
		ByFile:      map[string][]target.Symbol{},
		ByNorm:      map[string][]target.Symbol{},
		Annotations: map[string][]string{},
	}, nil, nil, nil)
	fetcher := &fileFetcher{
		dir:  t.TempDir(),
		errs: map[string]error{"src/MnHesse.cxx": errors.New("status 404")},
	}

	rows := buildParityRows(matcher, fetcher, testUpstream(), "root-project/root", []config.PortEntry{
		{Path: "src/MnHesse.cxx", Basename: "MnHesse"},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, matrix.PlaceholderSymbol, rows[0].UpstreamSymbol)
	assert.Contains(t, rows[0].Rationale, "source unavailable")
	assert.Contains(t, rows[0].Rationale, "status 404")
}

func TestBuildParityRowsUnreadableCachePathBecomesUnavailableRow(t *testing.T) {
	matcher := match.NewMatcher(&target.Index{
		ByFile:      map[string][]target.Symbol{},
		ByNorm:      map[string][]target.Symbol{},
		Annotations: map[string][]string{},
	}, nil, nil, nil)
	// Fetcher succeeds but hands back a path that no longer exists.
	fetcher := staleFetcher{dir: t.TempDir()}

	rows := buildParityRows(matcher, fetcher, testUpstream(), "root-project/root", []config.PortEntry{
		{Path: "src/MnCross.cxx", Basename: "MnCross"},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, matrix.PlaceholderSymbol, rows[0].UpstreamSymbol)
	assert.Contains(t, rows[0].Rationale, "source unavailable")
}

type staleFetcher struct {
	dir string
}

func (f staleFetcher) FetchFile(repoSlug, subdir, commit, relPath string) (string, error) {
	return filepath.Join(f.dir, "evicted", filepath.FromSlash(relPath)), nil
}

func TestBuildParityRowsGroupsPortsByBasename(t *testing.T) {
	idx := &target.Index{
		ByFile: map[string][]target.Symbol{
			"src/mn_parabola.rs": {
				{Name: "min", File: "src/mn_parabola.rs", Line: 30},
				{Name: "y", File: "src/mn_parabola.rs", Line: 10},
			},
		},
		ByNorm:      map[string][]target.Symbol{},
		Annotations: map[string][]string{},
	}
	matcher := match.NewMatcher(idx, map[string][]string{"MnParabola": {"src/mn_parabola.rs"}}, nil, nil)
	fetcher := &fileFetcher{
		dir: t.TempDir(),
		files: map[string]string{
			"inc/MnParabola.h":   "class MnParabola {\npublic:\n   double Y(double x) const;\n};\n",
			"src/MnParabola.cxx": parabolaSource,
		},
	}

	rows := buildParityRows(matcher, fetcher, testUpstream(), "root-project/root", []config.PortEntry{
		{Path: "inc/MnParabola.h", Basename: "MnParabola"},
		{Path: "src/MnParabola.cxx", Basename: "MnParabola"},
	})

	bySym := rowsBySymbol(rows)
	require.Contains(t, bySym, "Min")
	require.Contains(t, bySym, "Y")
	// Definitions from src/ win over header declarations of the same symbol.
	assert.Equal(t, "src/MnParabola.cxx", bySym["Y"].UpstreamFile)
}
