package legacy

import (
	"regexp"
	"sort"
	"strings"
)

// Symbol is one callable symbol extracted from legacy source text.
type Symbol struct {
	Name  string
	File  string
	Line  int
	Arity int
}

// cppKeywords are control-flow keywords that the permissive patterns would
// otherwise accept as call sites.
var cppKeywords = map[string]bool{
	"if":     true,
	"for":    true,
	"while":  true,
	"switch": true,
	"catch":  true,
	"return": true,
	"sizeof": true,
	"do":     true,
}

var (
	// Standard function/method declaration/definition with an explicit return
	// type. Anchored to line start to avoid matching regular function calls.
	funcPat = regexp.MustCompile(
		`^\s*` +
			`(?:(?:inline|virtual|static|constexpr|friend|explicit|extern)\s+)*` +
			`[A-Za-z_][A-Za-z0-9_:<>\s*&~]*\s+` +
			`(~?[A-Za-z_][A-Za-z0-9_:~]*|operator\s*(?:\(\)|\[\]|[^\s(]+(?:\s+[^\s(]+)*))\s*` +
			`\(([^)]*)\)\s*` +
			`(?:(?:const|override|final|noexcept)\s*)*` +
			`(?:=\s*(?:0|default|delete)\s*)?` +
			`(?:;|\{|:|}\s*;?)\s*$`)

	// Constructor / destructor declarations (no explicit return type).
	ctorPat = regexp.MustCompile(
		`^\s*([A-Za-z_][A-Za-z0-9_:~]*)\s*` +
			`\(([^)]*)\)\s*` +
			`(?:(?:const|override|final|noexcept)\s*)*` +
			`(?:=\s*(?:0|default|delete)\s*)?` +
			`(?:;|\{|:|}\s*;?)\s*$`)

	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//.*`)
	bodyStartRe    = regexp.MustCompile(`\{.*$`)
	nameStartRe    = regexp.MustCompile(`^[A-Za-z_]|^operator`)
)

// StripComments removes block and line comments.
func StripComments(source string) string {
	source = blockCommentRe.ReplaceAllString(source, "")
	return lineCommentRe.ReplaceAllString(source, "")
}

// ExtractSymbols parses one legacy source file for callable symbols belonging
// to the entity basename. In implementation files (isSource) only definitions
// are kept: signatures carrying a body or a constructor initializer list.
func ExtractSymbols(source, file, basename string, isSource bool) []Symbol {
	stripped := StripComments(source)

	scanner := NewScanner()
	var candidates []Candidate
	for _, line := range strings.Split(stripped, "\n") {
		candidates = append(candidates, scanner.Feed(line)...)
	}
	if last := scanner.Flush(); last != nil {
		candidates = append(candidates, *last)
	}

	type lineName struct {
		line int
		name string
	}
	seen := make(map[lineName]bool)
	var symbols []Symbol

	for _, cand := range candidates {
		sigTrim := strings.TrimSpace(cand.Text)
		// classification only needs the text up to the body opener
		sigMatch := bodyStartRe.ReplaceAllString(sigTrim, "{")

		if isSource && !strings.Contains(sigMatch, "{") && !strings.Contains(sigMatch, ":") {
			// keep definitions (and ctor init-list starts), skip declarations
			continue
		}

		isCtorPat := false
		m := funcPat.FindStringSubmatch(sigMatch)
		if m == nil {
			m = ctorPat.FindStringSubmatch(sigMatch)
			isCtorPat = true
		}
		if m == nil {
			continue
		}

		rawName := strings.TrimSpace(m[1])
		parts := strings.Split(rawName, "::")
		shortName := strings.TrimSpace(parts[len(parts)-1])

		if cppKeywords[shortName] {
			continue
		}
		if strings.HasPrefix(shortName, "~") && shortName[1:] != basename {
			// keep destructors only when they belong to the entity
			continue
		}
		if !nameStartRe.MatchString(shortName) {
			continue
		}
		if isCtorPat && shortName != basename && shortName != "~"+basename {
			continue
		}

		key := lineName{line: cand.Line, name: shortName}
		if seen[key] {
			continue
		}
		seen[key] = true
		symbols = append(symbols, Symbol{
			Name:  shortName,
			File:  file,
			Line:  cand.Line,
			Arity: EstimateArity(m[2]),
		})
	}

	return dedupeByNameArity(symbols)
}

// EstimateArity counts top-level commas in the parameter text. Commas inside
// template argument lists or nested parentheses do not count. Not
// parse-accurate, but stable and sufficient for matching.
func EstimateArity(params string) int {
	p := strings.TrimSpace(params)
	if p == "" || p == "void" {
		return 0
	}
	depth := 0
	count := 1
	for _, r := range p {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}

// dedupeByNameArity collapses repeats of (name, arity) keeping the earliest
// line, then orders by line and name.
func dedupeByNameArity(symbols []Symbol) []Symbol {
	type key struct {
		name  string
		arity int
	}
	byKey := make(map[key]Symbol)
	for _, s := range symbols {
		k := key{name: s.Name, arity: s.Arity}
		old, ok := byKey[k]
		if !ok || s.Line < old.Line {
			byKey[k] = s
		}
	}

	out := make([]Symbol, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IsSourceFile reports whether the path is an implementation file, where only
// definitions should be extracted.
func IsSourceFile(path string) bool {
	return strings.HasSuffix(path, ".cxx") || strings.HasSuffix(path, ".cpp") || strings.HasSuffix(path, ".cc")
}
