// Package identity builds and serves the canonical player-identity
// crosswalk: one surrogate player_id per person, mapped to every known
// external provider ID, deduplicated against authoritative evidence.
package identity

import (
	"log/slog"
	"sort"
	"strings"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// RawRecord is one row of the provider identity feed before any cleanup.
type RawRecord struct {
	Name      string
	Position  string
	Team      string
	Birthdate string
	DraftYear *int
	MFL       *string
	Sleeper   *string
	GSIS      *string
	ESPN      *string
	Yahoo     *string
	PFR       *string
}

// Authority maps a sleeper_id to the birthdate the external platform
// reports for it. It is the evidence used to decide which of two rows
// sharing a sleeper_id is the real holder.
type Authority map[string]string

// Builder regenerates the crosswalk from one provider feed batch. The
// dedup passes run in a fixed order (sleeper, then gsis, then mfl) because
// each pass changes which rows remain in conflict for the next one.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a crosswalk builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "identity.builder"))}
}

// Build runs the full crosswalk pipeline: filter placeholder rows, resolve
// sleeper_id conflicts against the authority, resolve gsis and mfl
// conflicts by draft-year recency, then assign surrogate IDs and derive
// the "Last, First" matching variant.
//
// A nil or empty authority aborts the run: skipping sleeper verification
// would publish a crosswalk whose conflicts were resolved by nothing at
// all, which is worse than publishing none. No pass ever removes a row;
// conflicts clear single provider fields and tag the row's
// correction_status for audit.
func (b *Builder) Build(records []RawRecord, authority Authority) ([]domain.PlayerIdentity, error) {
	if len(authority) == 0 {
		return nil, apperrors.NewAuthorityError("authority birthdate reference is required for sleeper deduplication")
	}

	rows := identityRows(records)
	dropped := len(records) - len(rows)

	rows = dedupSleeper(rows, authority)
	rows = dedupProvider(rows, gsisField)
	rows = dedupProvider(rows, mflField)
	rows = finalize(rows)

	b.logger.Info("crosswalk built",
		slog.Int("players", len(rows)),
		slog.Int("placeholders_dropped", dropped),
		slog.Int("corrections", countCorrections(rows)))
	return rows, nil
}

// identityRows converts feed records into crosswalk rows, dropping rows
// that carry no external ID at all. Those are team placeholders in the
// feed, not people.
func identityRows(records []RawRecord) []domain.PlayerIdentity {
	rows := make([]domain.PlayerIdentity, 0, len(records))
	for _, r := range records {
		row := domain.PlayerIdentity{
			Providers: domain.ProviderIDs{
				MFL:     r.MFL,
				Sleeper: r.Sleeper,
				GSIS:    r.GSIS,
				ESPN:    r.ESPN,
				Yahoo:   r.Yahoo,
				PFR:     r.PFR,
			},
			DisplayName: strings.TrimSpace(r.Name),
			Position:    r.Position,
			Team:        r.Team,
			Birthdate:   strings.TrimSpace(r.Birthdate),
			DraftYear:   r.DraftYear,
		}
		if row.Providers.Empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// dedupSleeper resolves sleeper_id values shared by more than one row.
// The row whose birthdate matches the authority keeps the ID; every other
// member of the conflict group has only its sleeper_id cleared. When the
// authority matches several rows, draft-year recency picks the keeper.
// When the authority has no entry for the ID at all, nobody can be
// verified and the whole group is cleared.
func dedupSleeper(in []domain.PlayerIdentity, authority Authority) []domain.PlayerIdentity {
	out := make([]domain.PlayerIdentity, len(in))
	copy(out, in)

	for _, group := range conflictGroups(out, func(r domain.PlayerIdentity) *string { return r.Providers.Sleeper }) {
		sleeperID := *out[group[0]].Providers.Sleeper
		knownBirthdate, known := authority[sleeperID]

		if !known {
			for _, i := range group {
				out[i].Providers.Sleeper = nil
				out[i].Status = domain.CorrectionClearedSleeperNoMatch
			}
			continue
		}

		var matches []int
		for _, i := range group {
			if out[i].Birthdate == knownBirthdate {
				matches = append(matches, i)
			}
		}
		keeper := -1
		if len(matches) > 0 {
			keeper = newestOf(out, matches)
		}

		for _, i := range group {
			if i == keeper {
				out[i].Status = domain.CorrectionKeptSleeperVerified
				continue
			}
			out[i].Providers.Sleeper = nil
			out[i].Status = domain.CorrectionClearedSleeperDup
		}
	}
	return out
}

// providerField parametrizes the recency-based dedup pass over one
// provider column.
type providerField struct {
	get     func(r domain.PlayerIdentity) *string
	clear   func(r *domain.PlayerIdentity)
	kept    domain.CorrectionStatus
	cleared domain.CorrectionStatus
}

var gsisField = providerField{
	get:     func(r domain.PlayerIdentity) *string { return r.Providers.GSIS },
	clear:   func(r *domain.PlayerIdentity) { r.Providers.GSIS = nil },
	kept:    domain.CorrectionKeptGSISNewer,
	cleared: domain.CorrectionClearedGSISDuplicate,
}

var mflField = providerField{
	get:     func(r domain.PlayerIdentity) *string { return r.Providers.MFL },
	clear:   func(r *domain.PlayerIdentity) { r.Providers.MFL = nil },
	kept:    domain.CorrectionKeptMFLNewer,
	cleared: domain.CorrectionClearedMFLDuplicate,
}

// dedupProvider resolves one provider column's conflicts by draft-year
// recency: the newest player keeps the ID, ties keep the earliest input
// row, everyone else has only that field cleared.
func dedupProvider(in []domain.PlayerIdentity, field providerField) []domain.PlayerIdentity {
	out := make([]domain.PlayerIdentity, len(in))
	copy(out, in)

	for _, group := range conflictGroups(out, field.get) {
		keeper := newestOf(out, group)
		for _, i := range group {
			if i == keeper {
				out[i].Status = field.kept
				continue
			}
			field.clear(&out[i])
			out[i].Status = field.cleared
		}
	}
	return out
}

// conflictGroups collects the row indexes of every provider value shared
// by more than one row, in first-seen order.
func conflictGroups(rows []domain.PlayerIdentity, get func(domain.PlayerIdentity) *string) [][]int {
	byValue := make(map[string][]int)
	var order []string
	for i, r := range rows {
		v := get(r)
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		if _, seen := byValue[*v]; !seen {
			order = append(order, *v)
		}
		byValue[*v] = append(byValue[*v], i)
	}

	var groups [][]int
	for _, v := range order {
		if g := byValue[v]; len(g) > 1 {
			groups = append(groups, g)
		}
	}
	return groups
}

// newestOf returns the group member with the highest draft year. The sort
// is stable over input order, so equal draft years keep the earlier row.
func newestOf(rows []domain.PlayerIdentity, group []int) int {
	ranked := make([]int, len(group))
	copy(ranked, group)
	sort.SliceStable(ranked, func(a, b int) bool {
		return rows[ranked[a]].DraftYearOrZero() > rows[ranked[b]].DraftYearOrZero()
	})
	return ranked[0]
}

// finalize assigns the sequential surrogate player_id and derives the
// "Last, First" name variant used by downstream fuzzy matching.
func finalize(in []domain.PlayerIdentity) []domain.PlayerIdentity {
	out := make([]domain.PlayerIdentity, len(in))
	copy(out, in)
	for i := range out {
		out[i].PlayerID = int64(i + 1)
		out[i].NameLastFirst = lastFirst(out[i].DisplayName)
	}
	return out
}

// lastFirst flips "First Rest Of Name" into "Rest Of Name, First".
// Single-token names are returned unchanged.
func lastFirst(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	return strings.Join(fields[1:], " ") + ", " + fields[0]
}

func countCorrections(rows []domain.PlayerIdentity) int {
	n := 0
	for _, r := range rows {
		if r.Status != domain.CorrectionNone {
			n++
		}
	}
	return n
}
