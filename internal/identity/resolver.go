package identity

import (
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// Resolver answers name lookups against a finished crosswalk. Keys are the
// normalized form of each player's display name; two distinct players
// normalizing to the same key is rare but real (fathers and sons without
// suffixes in the feed), and the newer draft year wins the slot.
type Resolver struct {
	byName map[string]resolverEntry
}

type resolverEntry struct {
	id        int64
	draftYear int
}

// NewResolver indexes the crosswalk for name resolution.
func NewResolver(rows []domain.PlayerIdentity) *Resolver {
	byName := make(map[string]resolverEntry, len(rows))
	for _, row := range rows {
		key := ledger.NormalizeName(row.DisplayName)
		if key == "" {
			continue
		}
		entry := resolverEntry{id: row.PlayerID, draftYear: row.DraftYearOrZero()}
		if existing, ok := byName[key]; ok && existing.draftYear >= entry.draftYear {
			continue
		}
		byName[key] = entry
	}
	return &Resolver{byName: byName}
}

// Resolve maps a normalized player name to its crosswalk player_id.
func (r *Resolver) Resolve(name string) (int64, bool) {
	entry, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return entry.id, true
}

// Size reports how many distinct name keys the resolver carries.
func (r *Resolver) Size() int {
	return len(r.byName)
}
