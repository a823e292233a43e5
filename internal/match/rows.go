package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"paritycheck/internal/legacy"
	"paritycheck/internal/matrix"
)

// Upstream pins the legacy source being audited.
type Upstream struct {
	Repo   string
	Subdir string
	Ref    string
	Commit string
}

// SourceSymbols is one fetched legacy file with its extracted symbols, or
// the fetch error that prevented extraction.
type SourceSymbols struct {
	Path     string
	Symbols  []legacy.Symbol
	FetchErr error
}

// BuildRows produces the parity rows for one legacy basename. Symbols are
// deduplicated by (name, arity) across the basename's files, preferring
// definitions under src/ over headers and earlier lines within the same
// kind. A basename with no extractable symbols yields a single placeholder
// review row so it still surfaces in the matrix.
func (m *Matcher) BuildRows(up Upstream, basename string, sources []SourceSymbols) []matrix.ParityRow {
	candidates := m.CandidateFiles(basename)

	type pick struct {
		sym  legacy.Symbol
		path string
	}
	picked := map[string]pick{}
	var fetchErrors []string
	var allPaths []string

	sorted := append([]SourceSymbols(nil), sources...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, src := range sorted {
		allPaths = append(allPaths, src.Path)
		if src.FetchErr != nil {
			fetchErrors = append(fetchErrors, fmt.Sprintf("%s: %v", src.Path, src.FetchErr))
			continue
		}
		for _, sym := range src.Symbols {
			key := sym.Name + "/" + strconv.Itoa(sym.Arity)
			old, ok := picked[key]
			if !ok {
				picked[key] = pick{sym: sym, path: src.Path}
				continue
			}
			oldIsSrc := strings.HasPrefix(old.path, "src/")
			newIsSrc := strings.HasPrefix(src.Path, "src/")
			if (newIsSrc && !oldIsSrc) || (newIsSrc == oldIsSrc && sym.Line < old.sym.Line) {
				picked[key] = pick{sym: sym, path: src.Path}
			}
		}
	}

	if len(picked) == 0 {
		rationale := matrix.RationaleExtractionFailed
		if len(fetchErrors) > 0 {
			rationale = "source unavailable: " + fetchErrors[0]
		}
		return []matrix.ParityRow{{
			UpstreamRepo:   up.Repo,
			UpstreamSubdir: up.Subdir,
			UpstreamRef:    up.Ref,
			UpstreamCommit: up.Commit,
			UpstreamFile:   strings.Join(allPaths, ";"),
			UpstreamSymbol: matrix.PlaceholderSymbol,
			TargetFile:     strings.Join(candidates, ";"),
			Status:         matrix.StatusNeedsReview,
			Rationale:      rationale,
		}}
	}

	keys := make([]string, 0, len(picked))
	for k := range picked {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := picked[keys[i]], picked[keys[j]]
		an, bn := strings.ToLower(a.sym.Name), strings.ToLower(b.sym.Name)
		if an != bn {
			return an < bn
		}
		if a.sym.Arity != b.sym.Arity {
			return a.sym.Arity < b.sym.Arity
		}
		return a.sym.Name < b.sym.Name
	})

	rows := make([]matrix.ParityRow, 0, len(keys))
	for _, k := range keys {
		p := picked[k]
		v := m.MatchSymbol(p.sym, basename, candidates)
		targetLine := ""
		if v.TargetLine > 0 {
			targetLine = strconv.Itoa(v.TargetLine)
		}
		rows = append(rows, matrix.ParityRow{
			UpstreamRepo:   up.Repo,
			UpstreamSubdir: up.Subdir,
			UpstreamRef:    up.Ref,
			UpstreamCommit: up.Commit,
			UpstreamFile:   p.path,
			UpstreamSymbol: p.sym.Name,
			UpstreamLine:   strconv.Itoa(p.sym.Line),
			TargetFile:     v.TargetFile,
			TargetSymbol:   v.TargetSymbol,
			TargetLine:     targetLine,
			Status:         v.Status,
			Rationale:      v.Rationale,
		})
	}
	return rows
}
