package matrix

import (
	"fmt"
	"regexp"
	"strings"
)

// WaiverRule is a pattern-based waiver. Rules are ordered; the first rule
// whose filters all match supplies the waiver. An empty filter matches
// everything.
type WaiverRule struct {
	RawStatus           string
	RationaleContains   string
	UpstreamFileRegex   string
	UpstreamSymbolRegex string
	Type                string
	Reason              string

	fileRe   *regexp.Regexp
	symbolRe *regexp.Regexp
}

// Compile parses the rule's regex filters. It must be called before Match.
func (r *WaiverRule) Compile() error {
	var err error
	if r.UpstreamFileRegex != "" {
		if r.fileRe, err = regexp.Compile(r.UpstreamFileRegex); err != nil {
			return fmt.Errorf("invalid upstream_file_regex %q: %w", r.UpstreamFileRegex, err)
		}
	}
	if r.UpstreamSymbolRegex != "" {
		if r.symbolRe, err = regexp.Compile(r.UpstreamSymbolRegex); err != nil {
			return fmt.Errorf("invalid upstream_symbol_regex %q: %w", r.UpstreamSymbolRegex, err)
		}
	}
	return nil
}

// Match reports whether every set filter accepts the row.
func (r *WaiverRule) Match(row ParityRow) bool {
	if r.RawStatus != "" && r.RawStatus != row.Status {
		return false
	}
	if r.RationaleContains != "" && !strings.Contains(row.Rationale, r.RationaleContains) {
		return false
	}
	if r.fileRe != nil && !r.fileRe.MatchString(row.UpstreamFile) {
		return false
	}
	if r.symbolRe != nil && !r.symbolRe.MatchString(row.UpstreamSymbol) {
		return false
	}
	return true
}

// FileSymbolOnly reports whether the rule carries no status or rationale
// filter. The executed-surface mapper only consults such rules, because an
// executed symbol without a matrix row has no raw status to filter on.
func (r *WaiverRule) FileSymbolOnly() bool {
	return r.RawStatus == "" && r.RationaleContains == ""
}

// FirstMatching returns the first rule accepting the row, or nil.
func FirstMatching(rules []WaiverRule, row ParityRow) *WaiverRule {
	for i := range rules {
		if rules[i].Match(row) {
			return &rules[i]
		}
	}
	return nil
}
