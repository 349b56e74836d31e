package identity

import (
	"strconv"
	"strings"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// feed column keys, matched case-insensitively against the header row.
// The provider feed follows the ff_playerids layout; the authority
// reference needs only the sleeper_id and birth_date pair.
const (
	feedColName      = "name"
	feedColPosition  = "position"
	feedColTeam      = "team"
	feedColBirthdate = "birthdate"
	feedColDraftYear = "draft_year"
	feedColMFL       = "mfl_id"
	feedColSleeper   = "sleeper_id"
	feedColGSIS      = "gsis_id"
	feedColESPN      = "espn_id"
	feedColYahoo     = "yahoo_id"
	feedColPFR       = "pfr_id"

	authorityColSleeper   = "sleeper_id"
	authorityColBirthdate = "birth_date"

	identityColPlayerID   = "player_id"
	identityColDisplay    = "display_name"
	identityColLastFirst  = "name_last_first"
	identityColCorrection = "correction_status"
)

// ReadFeed converts the provider identity grid (header row first) into raw
// records. Cells holding "-" or nothing become nil; a grid without a name
// column is malformed input and yields no records.
func ReadFeed(rows [][]string) []RawRecord {
	if len(rows) < 2 {
		return nil
	}
	columns := mapColumns(rows[0])
	if _, ok := columns[feedColName]; !ok {
		return nil
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, columns, feedColName)
		if name == "" {
			continue
		}
		records = append(records, RawRecord{
			Name:      name,
			Position:  cell(row, columns, feedColPosition),
			Team:      cell(row, columns, feedColTeam),
			Birthdate: cell(row, columns, feedColBirthdate),
			DraftYear: intCell(row, columns, feedColDraftYear),
			MFL:       idCell(row, columns, feedColMFL),
			Sleeper:   idCell(row, columns, feedColSleeper),
			GSIS:      idCell(row, columns, feedColGSIS),
			ESPN:      idCell(row, columns, feedColESPN),
			Yahoo:     idCell(row, columns, feedColYahoo),
			PFR:       idCell(row, columns, feedColPFR),
		})
	}
	return records
}

// ReadAuthority converts the authority reference grid into the sleeper_id
// to birthdate map. Accepts "birthdate" as a header alias for "birth_date".
func ReadAuthority(rows [][]string) Authority {
	if len(rows) < 2 {
		return nil
	}
	columns := mapColumns(rows[0])
	birthKey := authorityColBirthdate
	if _, ok := columns[birthKey]; !ok {
		birthKey = feedColBirthdate
	}

	authority := make(Authority, len(rows)-1)
	for _, row := range rows[1:] {
		id := cell(row, columns, authorityColSleeper)
		birth := cell(row, columns, birthKey)
		if id == "" || birth == "" {
			continue
		}
		authority[id] = birth
	}
	return authority
}

// ReadIdentities loads a previously exported crosswalk table back into
// memory, letting normalization runs reuse an existing identity snapshot
// instead of rebuilding one. Rows without a parsable player_id or a
// display name are dropped.
func ReadIdentities(rows [][]string) []domain.PlayerIdentity {
	if len(rows) < 2 {
		return nil
	}
	columns := mapColumns(rows[0])
	if _, ok := columns[identityColPlayerID]; !ok {
		return nil
	}
	if _, ok := columns[identityColDisplay]; !ok {
		return nil
	}

	identities := make([]domain.PlayerIdentity, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id, err := strconv.ParseInt(cell(row, columns, identityColPlayerID), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		name := cell(row, columns, identityColDisplay)
		if name == "" {
			continue
		}
		identities = append(identities, domain.PlayerIdentity{
			PlayerID:      id,
			DisplayName:   name,
			NameLastFirst: cell(row, columns, identityColLastFirst),
			Position:      cell(row, columns, feedColPosition),
			Team:          cell(row, columns, feedColTeam),
			Birthdate:     cell(row, columns, feedColBirthdate),
			DraftYear:     intCell(row, columns, feedColDraftYear),
			Providers: domain.ProviderIDs{
				MFL:     idCell(row, columns, feedColMFL),
				Sleeper: idCell(row, columns, feedColSleeper),
				GSIS:    idCell(row, columns, feedColGSIS),
				ESPN:    idCell(row, columns, feedColESPN),
				Yahoo:   idCell(row, columns, feedColYahoo),
				PFR:     idCell(row, columns, feedColPFR),
			},
			Status: domain.CorrectionStatus(cell(row, columns, identityColCorrection)),
		})
	}
	return identities
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, c := range header {
		label := strings.ToLower(strings.TrimSpace(c))
		if label == "" {
			continue
		}
		if _, exists := columns[label]; !exists {
			columns[label] = i
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// idCell treats "-" and blank as absent. Provider IDs stay strings even
// when numeric: they are opaque keys, not quantities.
func idCell(row []string, columns map[string]int, key string) *string {
	v := cell(row, columns, key)
	if v == "" || v == "-" {
		return nil
	}
	return &v
}

func intCell(row []string, columns map[string]int, key string) *int {
	v := cell(row, columns, key)
	if v == "" || v == "-" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
