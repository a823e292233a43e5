package target

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoScanner implements LanguageScanner for Go targets.
type GoScanner struct{}

func (g *GoScanner) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoScanner) GetQuery() string {
	return `
		(function_declaration) @fn
		(method_declaration) @fn
	`
}

func (g *GoScanner) Extensions() []string {
	return []string{".go"}
}

// Prepare is a no-op for Go; _test.go files are filtered before parsing.
func (g *GoScanner) Prepare(source []byte) []byte {
	return source
}

func (g *GoScanner) ExtractSymbol(node *sitter.Node, source []byte, file string) *Symbol {
	if strings.HasSuffix(file, "_test.go") {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &Symbol{
		Name:  nameNode.Content(source),
		Owner: goReceiverType(node, source),
		File:  file,
		Line:  int(node.StartPoint().Row) + 1,
		Arity: goArity(node),
	}
}

func goReceiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := recv.Content(source)
	text = strings.Trim(text, "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "*")
}

func goArity(node *sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child.Type() != "parameter_declaration" && child.Type() != "variadic_parameter_declaration" {
			continue
		}
		names := 0
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if child.NamedChild(j).Type() == "identifier" {
				names++
			}
		}
		if names == 0 {
			names = 1
		}
		count += names
	}
	return count
}
