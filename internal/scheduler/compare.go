package scheduler

import (
	"slices"
	"strings"
)

// CompareCandidates is the presentation ordering for callers that merge the
// frequent and available lists: unavailable-flagged candidates sort after
// available ones, same-day-loaded candidates after unloaded ones, remaining
// ties break by descending historical score then ascending name.
func CompareCandidates(a, b Candidate) int {
	if a.HasUnavailability != b.HasUnavailability {
		if a.HasUnavailability {
			return 1
		}
		return -1
	}
	if a.HasSameDayShift != b.HasSameDayShift {
		if a.HasSameDayShift {
			return 1
		}
		return -1
	}
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	return strings.Compare(a.Name, b.Name)
}

func SortCandidates(candidates []Candidate) {
	slices.SortStableFunc(candidates, CompareCandidates)
}

// Merged returns both lists as one, deduplicated by user (frequent entries
// win) and ordered by CompareCandidates.
func (r *Recommendation) Merged() []Candidate {
	seen := make(map[int64]struct{}, len(r.Frequent)+len(r.Available))
	merged := make([]Candidate, 0, len(r.Frequent)+len(r.Available))

	for _, candidate := range r.Frequent {
		if _, dup := seen[candidate.UserID]; dup {
			continue
		}
		seen[candidate.UserID] = struct{}{}
		merged = append(merged, candidate)
	}
	for _, candidate := range r.Available {
		if _, dup := seen[candidate.UserID]; dup {
			continue
		}
		seen[candidate.UserID] = struct{}{}
		merged = append(merged, candidate)
	}

	SortCandidates(merged)
	return merged
}
