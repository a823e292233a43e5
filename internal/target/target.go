package target

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Symbol is one function or method found in the ported tree.
type Symbol struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
	File  string `json:"file"`
	Line  int    `json:"line"`
	Arity int    `json:"arity"`
}

// Index holds every symbol of the ported tree plus lookup tables used by
// the matcher.
type Index struct {
	Symbols []Symbol
	// ByFile maps a target source path (relative to the scan root) to the
	// symbols defined in it.
	ByFile map[string][]Symbol
	// ByNorm maps a normalized symbol name to all symbols carrying it.
	ByNorm map[string][]Symbol
	// Annotations maps a target source path to the legacy basenames its
	// header comments claim to replace.
	Annotations map[string][]string
}

// LanguageScanner parses one source language into symbols.
type LanguageScanner interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	Extensions() []string
	// Prepare trims the raw source before parsing (test modules etc.).
	Prepare(source []byte) []byte
	ExtractSymbol(node *sitter.Node, source []byte, file string) *Symbol
}

// Scanner walks a ported source tree and builds an Index.
type Scanner struct {
	lang LanguageScanner
}

func NewScanner(language string) (*Scanner, error) {
	switch language {
	case "rust":
		return &Scanner{lang: &RustScanner{}}, nil
	case "go":
		return &Scanner{lang: &GoScanner{}}, nil
	default:
		return nil, fmt.Errorf("unsupported target language: %s", language)
	}
}

// ScanTree walks root and indexes every matching source file.
func (s *Scanner) ScanTree(root string) (*Index, error) {
	idx := &Index{
		ByFile:      map[string][]Symbol{},
		ByNorm:      map[string][]Symbol{},
		Annotations: map[string][]string{},
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !s.matchesLanguage(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		syms, err := s.ScanSource(source, rel)
		if err != nil {
			return err
		}
		idx.add(rel, syms)
		if refs := ScanPortAnnotations(source); len(refs) > 0 {
			idx.Annotations[rel] = refs
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// ScanSource parses one source buffer and returns its symbols.
func (s *Scanner) ScanSource(source []byte, file string) ([]Symbol, error) {
	source = s.lang.Prepare(source)

	parser := sitter.NewParser()
	parser.SetLanguage(s.lang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", file, err)
	}

	query, err := sitter.NewQuery([]byte(s.lang.GetQuery()), s.lang.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}

	var symbols []Symbol
	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			sym := s.lang.ExtractSymbol(c.Node, source, file)
			if sym != nil {
				symbols = append(symbols, *sym)
			}
		}
	}
	return symbols, nil
}

func (s *Scanner) matchesLanguage(path string) bool {
	for _, ext := range s.lang.Extensions() {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (idx *Index) add(file string, syms []Symbol) {
	idx.Symbols = append(idx.Symbols, syms...)
	idx.ByFile[file] = append(idx.ByFile[file], syms...)
	for _, sym := range syms {
		key := NormalizeName(sym.Name)
		idx.ByNorm[key] = append(idx.ByNorm[key], sym)
	}
}

// NormalizeName lowercases a symbol name and strips everything that is not
// a letter or digit, so naming-convention drift between languages does not
// break lookups.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
