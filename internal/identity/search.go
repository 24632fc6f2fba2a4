package identity

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/warden/internal/domain"
)

// searchIndex implements sahilm/fuzzy.Source over identity display names
type searchIndex struct {
	identities []*domain.Identity
	keys       []string // pre-computed lowercase "name id"
}

func newSearchIndex(identities []*domain.Identity) *searchIndex {
	idx := &searchIndex{identities: identities, keys: make([]string, len(identities))}
	for i, ident := range identities {
		idx.keys[i] = strings.ToLower(ident.DisplayName() + " " + ident.ID)
	}
	return idx
}

func (idx *searchIndex) String(i int) string { return idx.keys[i] }

func (idx *searchIndex) Len() int { return len(idx.identities) }

// Rank returns identities matching query, best match first
func Rank(query string, identities []*domain.Identity) []*domain.Identity {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, newSearchIndex(identities))
	out := make([]*domain.Identity, 0, len(matches))
	for _, m := range matches {
		out = append(out, identities[m.Index])
	}
	return out
}

// Filter keeps identities whose display name or ID contains query as a
// case-insensitive subsequence, ordered by edit distance. An empty query keeps everything.
func Filter(query string, identities []*domain.Identity) []*domain.Identity {
	query = strings.TrimSpace(query)
	if query == "" {
		return identities
	}

	type ranked struct {
		ident    *domain.Identity
		distance int
	}
	var hits []ranked
	for _, ident := range identities {
		best := -1
		for _, target := range []string{ident.DisplayName(), ident.ID} {
			if d := lfuzzy.RankMatchFold(query, target); d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		if best >= 0 {
			hits = append(hits, ranked{ident, best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})

	out := make([]*domain.Identity, len(hits))
	for i, h := range hits {
		out[i] = h.ident
	}
	return out
}
