package services

import "crosslist_backend/internal/platforms"

// DedupeCandidates drops candidates whose external id is already known,
// preserving the original order. The known set is not mutated; the sync
// engine owns its working set.
func DedupeCandidates(candidates []platforms.CandidateListing, known map[string]struct{}) []platforms.CandidateListing {
	if len(candidates) == 0 || len(known) == 0 {
		return candidates
	}

	fresh := make([]platforms.CandidateListing, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := known[c.ExternalID]; dup {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}
