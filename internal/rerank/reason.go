package rerank

import "strings"

// templateMarkers are field labels from the internal candidate-text format.
// A "reason" carrying these leaked the debug payload instead of explaining
// the match.
var templateMarkers = []string{"Role:", "Major:", "NeededRole:"}

// AcceptableReason reports whether an externally supplied rationale is worth
// surfacing. It is rejected when empty, when it just repeats the suggestion's
// own description, or when it looks like an internal candidate-text template
// (pipe-delimited fields with role/major markers). Callers substitute the
// existing or deterministic fallback rationale for rejected ones.
func AcceptableReason(reason, description string) bool {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false
	}

	desc := strings.TrimSpace(description)
	if desc != "" {
		if strings.EqualFold(reason, desc) {
			return false
		}
		// The reason sitting verbatim inside the description means the model
		// echoed the input back rather than explaining anything.
		if strings.Contains(strings.ToLower(desc), strings.ToLower(reason)) {
			return false
		}
	}

	if strings.Contains(reason, "|") {
		for _, marker := range templateMarkers {
			if strings.Contains(reason, marker) {
				return false
			}
		}
	}

	return true
}

// ReasonOrFallback returns the external reason when it passes the quality
// gate, otherwise the existing rationale.
func ReasonOrFallback(external, existing, description string) string {
	if AcceptableReason(external, description) {
		return strings.TrimSpace(external)
	}
	return existing
}
