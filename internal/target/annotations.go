package target

import (
	"bufio"
	"bytes"
	"regexp"
)

// Port annotations are comment lines near the top of a ported file that name
// the legacy sources it covers, e.g.
//
//	//! Port of MnParabola.h / MnParabola.cxx.
//	// Replaces: MnLineSearch.cxx
//
// Only the first annotationWindow lines are scanned so stray mentions deeper
// in the file are ignored.
const annotationWindow = 40

var (
	annotationLineRe = regexp.MustCompile(`(?i)^\s*(?://[/!]?|\*|/\*+)\s*(?:port of|replaces|mirrors)[:\s]+(.+)$`)
	legacyFileRe     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\.(?:h|hpp|cxx|cpp|cc)`)
)

// ScanPortAnnotations returns the legacy file basenames declared in the head
// comments of a ported source buffer, in declaration order without
// duplicates.
func ScanPortAnnotations(source []byte) []string {
	var refs []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(source))
	for line := 0; sc.Scan() && line < annotationWindow; line++ {
		m := annotationLineRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		for _, f := range legacyFileRe.FindAllString(m[1], -1) {
			if !seen[f] {
				seen[f] = true
				refs = append(refs, f)
			}
		}
	}
	return refs
}
