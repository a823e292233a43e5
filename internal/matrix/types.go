package matrix

import "fmt"

// Raw statuses assigned by the symbol matcher.
const (
	StatusImplemented          = "implemented"
	StatusMissing              = "missing"
	StatusNeedsReview          = "needs-review"
	StatusIntentionallySkipped = "intentionally-skipped"
)

// Effective statuses after waiver resolution.
const (
	EffectiveImplemented = "implemented"
	EffectiveWaived      = "waived"
	EffectiveUnresolved  = "unresolved"
)

// Rationale strings the resolver and downstream tooling key on.
const (
	RationaleNameMatch          = "symbol name match"
	RationaleMultipleCandidates = "multiple candidates"
	RationaleIdiomatic          = "constructor/destructor/operator handled idiomatically in the target language"
	RationaleArchitectural      = "architectural refactor; no 1:1 symbol match"
	RationaleNoSymbolMatch      = "no symbol match in mapped target files"
	RationaleNoMappedFile       = "no mapped target file for upstream basename"
	RationaleExtractionFailed   = "unable to extract symbols with heuristic parser"
)

// PlaceholderSymbol marks a basename whose sources yielded no symbols.
const PlaceholderSymbol = "<no_symbol_extracted>"

// Waiver sources.
const (
	SourceExplicit        = "explicit"
	SourceRule            = "rule"
	SourceAutoIntentional = "auto-intentional"
	SourceNone            = "none"
)

// resolvableWaiverTypes close an unresolved row when applied.
var resolvableWaiverTypes = map[string]bool{
	"intentional":      true,
	"out-of-scope":     true,
	"tooling":          true,
	"architectural":    true,
	"upstream-removed": true,
	"api-shape-drift":  true,
}

// LowPriorityWaiverTypes are the waiver types that downgrade an executed
// gap to P2. Note "tooling" resolves a matrix row but stays high priority
// on the executed surface.
var LowPriorityWaiverTypes = map[string]bool{
	"intentional":      true,
	"architectural":    true,
	"out-of-scope":     true,
	"upstream-removed": true,
	"api-shape-drift":  true,
}

// ParityRow is one legacy symbol with its matching verdict.
type ParityRow struct {
	UpstreamRepo   string
	UpstreamSubdir string
	UpstreamRef    string
	UpstreamCommit string
	UpstreamFile   string
	UpstreamSymbol string
	UpstreamLine   string
	TargetFile     string
	TargetSymbol   string
	TargetLine     string
	Status         string
	Rationale      string
}

// LegacyID builds the join key used by every downstream stage.
func LegacyID(upstreamFile, upstreamSymbol, upstreamLine string) string {
	line := upstreamLine
	if line == "" {
		line = "na"
	}
	return fmt.Sprintf("%s::%s@%s", upstreamFile, upstreamSymbol, line)
}

// LegacyID returns the row's join key.
func (r ParityRow) LegacyID() string {
	return LegacyID(r.UpstreamFile, r.UpstreamSymbol, r.UpstreamLine)
}

// Waiver is an explicit, human-authored exemption for one legacy_id.
type Waiver struct {
	LegacyID string
	Type     string
	Reason   string
}

// Row is a ParityRow after waiver resolution.
type Row struct {
	ParityRow
	ID                   string
	RawStatus            string
	EffectiveStatus      string
	Waived               bool
	WaiverType           string
	WaiverReason         string
	WaiverSource         string
	AmbiguousImplemented bool
}
