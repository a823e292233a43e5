package surface

import (
	"regexp"
	"strings"
)

// SymbolInfo is the structured view of one demangled signature.
type SymbolInfo struct {
	Symbol        string
	ClassName     string
	IsConstructor bool
	IsDestructor  bool
	IsOperator    bool
}

var (
	operatorTokenRe = regexp.MustCompile(`^operator[^\s(]*`)
	templateArgsRe  = regexp.MustCompile(`<[^<>]*>`)
)

// ExtractSymbolInfo parses a demangled C++ signature. The parameter list is
// located by scanning backward from the final ')' to its matching '(' so
// trailing qualifiers and nested calls in default arguments do not confuse
// the split.
func ExtractSymbolInfo(demangled string) SymbolInfo {
	qualified := strings.TrimSpace(stripParameterList(demangled))
	segments := splitQualified(qualified)

	tail := strings.TrimSpace(segments[len(segments)-1])
	className := ""
	if len(segments) >= 2 {
		className = strings.TrimSpace(segments[len(segments)-2])
	}
	className = strings.ReplaceAll(stripTemplates(className), " ", "")

	var symbol string
	switch {
	case strings.HasPrefix(tail, "operator()"):
		symbol = "operator()"
	case strings.HasPrefix(tail, "operator"):
		if m := operatorTokenRe.FindString(tail); m != "" {
			symbol = m
		} else {
			symbol = "operator"
		}
	default:
		symbol = tail
	}
	symbol = strings.ReplaceAll(stripTemplates(symbol), " ", "")

	isOperator := strings.HasPrefix(symbol, "operator")
	isCtor := className != "" && symbol == className
	isDtor := className != "" && symbol == "~"+className
	return SymbolInfo{
		Symbol:        symbol,
		ClassName:     className,
		IsConstructor: isCtor,
		IsDestructor:  isDtor,
		IsOperator:    isOperator,
	}
}

// stripParameterList removes the outermost balanced parameter list. When the
// signature has no parentheses, or they do not balance, the input is
// returned unchanged.
func stripParameterList(sig string) string {
	close := strings.LastIndexByte(sig, ')')
	if close < 0 {
		return sig
	}
	depth := 0
	for i := close; i >= 0; i-- {
		switch sig[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return sig[:i]
			}
		}
	}
	return sig
}

// splitQualified splits on "::" at bracket depth zero, so template
// arguments containing qualified names stay intact.
func splitQualified(qualified string) []string {
	var segments []string
	depth := 0
	start := 0
	for i := 0; i < len(qualified); i++ {
		switch qualified[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && i+1 < len(qualified) && qualified[i+1] == ':' && i > start {
				segments = append(segments, qualified[start:i])
				start = i + 2
				i++
			}
		}
	}
	segments = append(segments, qualified[start:])
	return segments
}

// stripTemplates removes template argument lists, innermost first.
func stripTemplates(text string) string {
	for {
		next := templateArgsRe.ReplaceAllString(text, "")
		if next == text {
			return text
		}
		text = next
	}
}
