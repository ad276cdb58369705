/*
resolver.go - Fuzzy column resolution over raw table headers

PURPOSE:
  Upstream exports are not consistent about header names: the identity
  column arrives as "CT Name", "Employee Name" or "Employee" depending on
  which tool produced the file. Resolution tries a priority-ordered
  candidate list with case-insensitive, whitespace-trimmed comparison and
  reports not-found as a normal result so callers can layer their own
  fallback heuristics (e.g. any header containing "Allocated").

SEE ALSO:
  - normalize.go: Candidate lists and the ingestion pipeline using them
*/
package ingest

import "strings"

// =============================================================================
// CANDIDATE LISTS - Known header spellings, in priority order
// =============================================================================

var (
	identityCandidates    = []string{"CT Name", "Employee Name", "Employee"}
	programCandidates     = []string{"Program Name", "Program", "Client"}
	roleCandidates        = []string{"Account Role", "Role"}
	hoursCandidates       = []string{"Allocated Monthly Hours", "Allocated Hours", "Hours"}
	revenueCandidates     = []string{"Program MRR", "MRR", "Revenue"}
	endDateCandidates     = []string{"Assignment End Date", "End Date"}
	changeDateCandidates  = []string{"Future Hours Date", "Change Date", "Effective Date"}
	futureHoursCandidates = []string{"Future Allocated Hours", "Future Hours"}
)

// hoursFallbackFragment is tried when no hours candidate matches exactly.
const hoursFallbackFragment = "Allocated"

// =============================================================================
// RESOLVER
// =============================================================================

// Resolve returns the first header matching any candidate, comparing
// case-insensitively after trimming surrounding whitespace on both sides.
// Candidates are tried in priority order. The second return is false when
// no header matches; that is a normal outcome, not an error.
func Resolve(headers []string, candidates []string) (string, bool) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	for _, c := range candidates {
		want := normalizeHeader(c)
		for i, h := range normalized {
			if h == want {
				return headers[i], true
			}
		}
	}
	return "", false
}

// ResolveContaining returns the first header containing the fragment
// (case-sensitive, matching the upstream convention for "Allocated").
func ResolveContaining(headers []string, fragment string) (string, bool) {
	for _, h := range headers {
		if strings.Contains(h, fragment) {
			return h, true
		}
	}
	return "", false
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
