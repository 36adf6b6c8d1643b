package services

import (
	"testing"

	"crosslist_backend/internal/platforms"

	"github.com/stretchr/testify/assert"
)

func candidates(ids ...string) []platforms.CandidateListing {
	out := make([]platforms.CandidateListing, 0, len(ids))
	for _, id := range ids {
		out = append(out, platforms.CandidateListing{ExternalID: id, Title: "item " + id})
	}
	return out
}

func TestDedupeCandidates(t *testing.T) {
	known := map[string]struct{}{"a": {}, "c": {}}

	fresh := DedupeCandidates(candidates("a", "b", "c", "d"), known)

	assert.Len(t, fresh, 2)
	assert.Equal(t, "b", fresh[0].ExternalID)
	assert.Equal(t, "d", fresh[1].ExternalID)
}

func TestDedupeCandidatesAllKnown(t *testing.T) {
	known := map[string]struct{}{"a": {}, "b": {}}

	fresh := DedupeCandidates(candidates("a", "b"), known)

	assert.Empty(t, fresh)
}

func TestDedupeCandidatesNoKnown(t *testing.T) {
	input := candidates("a", "b")

	fresh := DedupeCandidates(input, nil)

	assert.Equal(t, input, fresh)
}

func TestDedupeCandidatesPreservesOrder(t *testing.T) {
	known := map[string]struct{}{"x": {}}

	fresh := DedupeCandidates(candidates("z", "x", "y", "w"), known)

	assert.Equal(t, []string{"z", "y", "w"}, []string{fresh[0].ExternalID, fresh[1].ExternalID, fresh[2].ExternalID})
}
