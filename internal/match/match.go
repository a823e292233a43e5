package match

import (
	"sort"
	"strconv"
	"strings"

	"paritycheck/internal/legacy"
	"paritycheck/internal/matrix"
	"paritycheck/internal/target"
)

// Matcher resolves legacy symbols against the indexed ported tree.
type Matcher struct {
	Index *target.Index
	// Mappings assigns legacy basenames to ported files (hand-curated).
	Mappings map[string][]string
	// Aliases holds per-basename symbol overrides for naming drift.
	Aliases map[string]map[string][]string
	// Architectural basenames never get a 1:1 symbol mapping.
	Architectural map[string]bool
}

func NewMatcher(idx *target.Index, mappings map[string][]string, aliases map[string]map[string][]string, architectural []string) *Matcher {
	arch := map[string]bool{}
	for _, b := range architectural {
		arch[b] = true
	}
	return &Matcher{Index: idx, Mappings: mappings, Aliases: aliases, Architectural: arch}
}

// CandidateFiles merges the manual mapping with annotation-declared files
// for a legacy basename, keeping only files the target scan actually saw.
// The result is sorted for deterministic search order.
func (m *Matcher) CandidateFiles(basename string) []string {
	set := map[string]bool{}
	for _, f := range m.Mappings[basename] {
		set[f] = true
	}
	for file, refs := range m.Index.Annotations {
		for _, ref := range refs {
			if legacyBasename(ref) == basename {
				set[file] = true
			}
		}
	}
	var out []string
	for f := range set {
		if _, ok := m.Index.ByFile[f]; ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// AliasNames expands a legacy symbol name into the target names it may have
// been ported under, preserving order and uniqueness.
func (m *Matcher) AliasNames(name, basename string) []string {
	n := strings.TrimSpace(name)
	alts := []string{n}

	if strings.HasPrefix(n, "Get") && len(n) > 3 {
		alts = append(alts, n[3:])
	}
	if strings.HasPrefix(n, "Is") && len(n) > 2 {
		alts = append(alts, n[2:])
	}
	if strings.HasPrefix(n, "Has") && len(n) > 3 {
		alts = append(alts, n[3:])
	}
	if n == basename {
		alts = append(alts, "new", "default")
	}
	if strings.HasPrefix(n, "~") && n[1:] == basename {
		alts = append(alts, "drop")
	}
	if strings.HasPrefix(n, "operator") {
		alts = append(alts, "call", "value")
	}
	if table := m.Aliases[basename]; table != nil {
		alts = append(alts, table[n]...)
	}

	seen := map[string]bool{}
	var out []string
	for _, a := range alts {
		if a != "" && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// Verdict is the matching outcome for one legacy symbol.
type Verdict struct {
	TargetFile   string
	TargetSymbol string
	TargetLine   int
	Status       string
	Rationale    string
}

// MatchSymbol classifies one legacy symbol. Candidate files restrict the
// search when present; the global index is consulted only when the basename
// has no file mapping at all.
func (m *Matcher) MatchSymbol(sym legacy.Symbol, basename string, candidates []string) Verdict {
	aliasNorms := map[string]bool{}
	var orderedNorms []string
	for _, a := range m.AliasNames(sym.Name, basename) {
		norm := target.NormalizeName(a)
		if norm != "" && !aliasNorms[norm] {
			aliasNorms[norm] = true
			orderedNorms = append(orderedNorms, norm)
		}
	}

	var matches []target.Symbol
	if len(candidates) > 0 {
		for _, file := range candidates {
			for _, ts := range m.Index.ByFile[file] {
				if aliasNorms[target.NormalizeName(ts.Name)] {
					matches = append(matches, ts)
				}
			}
		}
	} else {
		seen := map[string]bool{}
		for _, norm := range orderedNorms {
			for _, ts := range m.Index.ByNorm[norm] {
				key := ts.File + "::" + ts.Name + "@" + strconv.Itoa(ts.Line)
				if !seen[key] {
					seen[key] = true
					matches = append(matches, ts)
				}
			}
		}
	}

	isCtor := sym.Name == basename
	isDtor := sym.Name == "~"+basename
	isOperator := strings.HasPrefix(sym.Name, "operator")

	switch {
	case len(matches) == 1:
		ts := matches[0]
		return Verdict{
			TargetFile:   ts.File,
			TargetSymbol: ts.Name,
			TargetLine:   ts.Line,
			Status:       matrix.StatusImplemented,
			Rationale:    matrix.RationaleNameMatch,
		}
	case len(matches) > 1:
		sort.Slice(matches, func(i, j int) bool {
			a, b := matches[i], matches[j]
			if a.File != b.File {
				return a.File < b.File
			}
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Name < b.Name
		})
		ts := matches[0]
		return Verdict{
			TargetFile:   ts.File,
			TargetSymbol: ts.Name,
			TargetLine:   ts.Line,
			Status:       matrix.StatusNeedsReview,
			Rationale:    matrix.RationaleMultipleCandidates,
		}
	case isCtor || isDtor || isOperator:
		v := Verdict{
			Status:    matrix.StatusIntentionallySkipped,
			Rationale: matrix.RationaleIdiomatic,
		}
		// Best-effort constructor evidence from the mapped files.
		for _, file := range candidates {
			for _, ts := range m.Index.ByFile[file] {
				if ts.Name == "new" || ts.Name == "default" {
					v.TargetFile = ts.File
					v.TargetSymbol = ts.Name
					v.TargetLine = ts.Line
					return v
				}
			}
		}
		return v
	case m.Architectural[basename]:
		return Verdict{Status: matrix.StatusNeedsReview, Rationale: matrix.RationaleArchitectural}
	case len(candidates) > 0:
		return Verdict{Status: matrix.StatusMissing, Rationale: matrix.RationaleNoSymbolMatch}
	default:
		return Verdict{Status: matrix.StatusNeedsReview, Rationale: matrix.RationaleNoMappedFile}
	}
}

func legacyBasename(file string) string {
	base := file
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}
