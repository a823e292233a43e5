package matrix

import "fmt"

// resolvedWaiver is the waiver a row ends up with, whatever its origin.
type resolvedWaiver struct {
	waiverType string
	reason     string
	source     string
}

// Resolve turns parity rows into traceability rows by applying waivers.
// Explicit waivers take precedence over rules; an intentionally-skipped row
// without any waiver gets an automatic intentional one. It fails on a
// duplicate legacy_id or on an explicit waiver that references no row.
func Resolve(rows []ParityRow, waivers []Waiver, rules []WaiverRule) ([]Row, error) {
	byID := map[string]Waiver{}
	for _, w := range waivers {
		if _, dup := byID[w.LegacyID]; dup {
			return nil, fmt.Errorf("duplicate waiver for legacy_id: %s", w.LegacyID)
		}
		byID[w.LegacyID] = w
	}

	seen := map[string]bool{}
	out := make([]Row, 0, len(rows))
	for _, pr := range rows {
		id := pr.LegacyID()
		if seen[id] {
			return nil, fmt.Errorf("duplicate legacy id in parity rows: %s", id)
		}
		seen[id] = true

		waiver := resolveWaiver(pr, id, byID, rules)
		ambiguous := ambiguousImplemented(pr)
		effective := effectiveStatus(pr.Status, waiver, ambiguous)

		out = append(out, Row{
			ParityRow:            pr,
			ID:                   id,
			RawStatus:            pr.Status,
			EffectiveStatus:      effective,
			Waived:               effective == EffectiveWaived,
			WaiverType:           waiver.waiverType,
			WaiverReason:         waiver.reason,
			WaiverSource:         waiver.source,
			AmbiguousImplemented: ambiguous,
		})
	}

	for id := range byID {
		if !seen[id] {
			return nil, fmt.Errorf("waiver references unknown legacy_id: %s", id)
		}
	}
	return out, nil
}

func resolveWaiver(pr ParityRow, id string, explicit map[string]Waiver, rules []WaiverRule) resolvedWaiver {
	if w, ok := explicit[id]; ok {
		return resolvedWaiver{
			waiverType: orUnspecified(w.Type),
			reason:     orUnspecified(w.Reason),
			source:     SourceExplicit,
		}
	}
	if rule := FirstMatching(rules, pr); rule != nil {
		return resolvedWaiver{waiverType: rule.Type, reason: rule.Reason, source: SourceRule}
	}
	if pr.Status == StatusIntentionallySkipped {
		return resolvedWaiver{
			waiverType: "intentional",
			reason:     RationaleIdiomatic,
			source:     SourceAutoIntentional,
		}
	}
	return resolvedWaiver{source: SourceNone}
}

// ambiguousImplemented reports whether a multiple-candidates review row has
// enough evidence to count as implemented.
func ambiguousImplemented(pr ParityRow) bool {
	return pr.Status == StatusNeedsReview &&
		pr.Rationale == RationaleMultipleCandidates &&
		pr.TargetFile != "" &&
		pr.TargetSymbol != "" &&
		pr.UpstreamSymbol != PlaceholderSymbol
}

// effectiveStatus is a pure function of the raw status and resolved waiver.
func effectiveStatus(raw string, waiver resolvedWaiver, ambiguous bool) string {
	if ambiguous {
		return EffectiveImplemented
	}
	if raw == StatusImplemented {
		return EffectiveImplemented
	}
	if waiver.waiverType != "" && resolvableWaiverTypes[waiver.waiverType] {
		return EffectiveWaived
	}
	if raw == StatusIntentionallySkipped {
		return EffectiveWaived
	}
	return EffectiveUnresolved
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
