package legacy

import (
	"regexp"
	"strings"
)

// Candidate is one assembled signature candidate: the 1-based line where the
// signature starts and its full text joined onto a single line.
type Candidate struct {
	Line int
	Text string
}

var (
	classOpenRe    = regexp.MustCompile(`^\s*(class|struct)\b`)
	leadInRe       = regexp.MustCompile(`^\s*(?:inline|virtual|static|constexpr|friend|explicit|extern|template|[A-Za-z_~])`)
	operatorLeadRe = regexp.MustCompile(`^\s*operator`)
	terminatedRe   = regexp.MustCompile(`(;|\{|:|}\s*;?)\s*$`)
	qualifierRe    = regexp.MustCompile(`^\s*(?:const|override|final|noexcept|->|\{|:|;|=)`)
	prevTailRe     = regexp.MustCompile(`[;{}]$`)
)

// Scanner is a line-oriented state machine that walks C++ source text and
// emits signature candidates. It tracks brace depth and the stack of class
// body depths so candidates only start at file scope or inside a class body.
// All state lives on the scanner; Feed never touches globals.
type Scanner struct {
	depth        int
	classDepths  []int
	pendingClass bool

	line     int
	prevLine string

	// in-flight candidate assembly
	assembling bool
	start      int
	sig        string
}

// NewScanner returns a scanner positioned before the first line.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Feed advances the scanner by one line. A line can close the in-flight
// candidate and immediately complete a fresh one, so the result is a slice;
// it is empty for most lines.
func (s *Scanner) Feed(raw string) []Candidate {
	s.line++

	var out []Candidate
	consumed := false
	if s.assembling {
		cand, used := s.continueAssembly(raw)
		if cand != nil {
			out = append(out, *cand)
		}
		consumed = used
	}
	if !consumed {
		if cand := s.feedFresh(raw); cand != nil {
			out = append(out, *cand)
		}
	}

	s.advanceDepth(raw)
	s.prevLine = raw
	return out
}

// Flush closes the scanner, emitting any candidate still being assembled.
func (s *Scanner) Flush() *Candidate {
	if !s.assembling {
		return nil
	}
	return s.finish()
}

func (s *Scanner) feedFresh(raw string) *Candidate {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	if classOpenRe.MatchString(raw) && !strings.HasSuffix(strings.TrimRight(raw, " \t"), ";") {
		// class definition starts now or on a following line
		if strings.Contains(raw, "{") {
			s.classDepths = append(s.classDepths, s.depth+strings.Count(raw, "{"))
		} else {
			s.pendingClass = true
		}
	}
	if s.pendingClass && strings.Contains(raw, "{") {
		s.classDepths = append(s.classDepths, s.depth+strings.Count(raw, "{"))
		s.pendingClass = false
	}

	allowedScope := s.depth == 0 || len(s.classDepths) > 0
	if !allowedScope || !strings.Contains(line, "(") || !leadInRe.MatchString(raw) {
		return nil
	}

	s.sig = line
	s.start = s.line
	// Multi-line declaration with the return type on the line above, e.g.
	//   virtual MinimumSeed
	//   operator()(...) const = 0;
	if operatorLeadRe.MatchString(raw) {
		prev := strings.TrimSpace(s.prevLine)
		if prev != "" && !strings.Contains(prev, "(") && !prevTailRe.MatchString(prev) {
			s.sig = prev + " " + line
			s.start = s.line - 1
		}
	}

	if strings.Contains(s.sig, ")") && terminatedRe.MatchString(s.sig) {
		return s.finish()
	}
	s.assembling = true
	return nil
}

// continueAssembly folds the line into the in-flight signature. The boolean
// reports whether the line was consumed; when false the caller reprocesses
// it as a fresh line.
func (s *Scanner) continueAssembly(raw string) (*Candidate, bool) {
	if !strings.Contains(s.sig, ")") {
		s.sig += " " + strings.TrimSpace(raw)
		if strings.Contains(s.sig, ")") && terminatedRe.MatchString(s.sig) {
			return s.finish(), true
		}
		return nil, true
	}

	if terminatedRe.MatchString(s.sig) {
		return s.finish(), false
	}

	// past the closing paren only trailing qualifiers may extend the signature
	if qualifierRe.MatchString(raw) {
		s.sig += " " + strings.TrimSpace(raw)
		if terminatedRe.MatchString(s.sig) {
			return s.finish(), true
		}
		return nil, true
	}

	return s.finish(), false
}

func (s *Scanner) finish() *Candidate {
	s.assembling = false
	return &Candidate{Line: s.start, Text: s.sig}
}

func (s *Scanner) advanceDepth(raw string) {
	s.depth += strings.Count(raw, "{") - strings.Count(raw, "}")
	for len(s.classDepths) > 0 && s.depth < s.classDepths[len(s.classDepths)-1] {
		s.classDepths = s.classDepths[:len(s.classDepths)-1]
	}
}
