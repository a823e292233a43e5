package target

import (
	"bytes"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// RustScanner implements LanguageScanner for Rust.
type RustScanner struct{}

func (r *RustScanner) GetLanguage() *sitter.Language {
	return rust.GetLanguage()
}

func (r *RustScanner) GetQuery() string {
	return `(function_item) @fn`
}

func (r *RustScanner) Extensions() []string {
	return []string{".rs"}
}

// Prepare cuts the buffer at the first inline test module so test helpers
// never count as ported surface.
func (r *RustScanner) Prepare(source []byte) []byte {
	if i := bytes.Index(source, []byte("#[cfg(test)]")); i >= 0 {
		return source[:i]
	}
	return source
}

func (r *RustScanner) ExtractSymbol(node *sitter.Node, source []byte, file string) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sym := &Symbol{
		Name:  nameNode.Content(source),
		Owner: rustImplOwner(node, source),
		File:  file,
		Line:  int(node.StartPoint().Row) + 1,
		Arity: rustArity(node, source),
	}
	return sym
}

// rustImplOwner walks up to the enclosing impl block and returns its self
// type, or "" for free functions.
func rustImplOwner(node *sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type() != "impl_item" {
			continue
		}
		typeNode := p.ChildByFieldName("type")
		if typeNode == nil {
			return ""
		}
		return typeNode.Content(source)
	}
	return ""
}

// rustArity counts declared parameters, excluding the receiver.
func rustArity(node *sitter.Node, source []byte) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child.Type() == "parameter" {
			count++
		}
	}
	return count
}
