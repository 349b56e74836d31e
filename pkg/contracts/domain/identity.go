package domain

// CorrectionStatus records what the crosswalk deduplication passes did to a
// row. Statuses are audit trail, not lifecycle: a corrected row stays in the
// table with only the conflicting provider field cleared.
type CorrectionStatus string

const (
	CorrectionNone                  CorrectionStatus = ""
	CorrectionKeptSleeperVerified   CorrectionStatus = "kept_sleeper_verified"
	CorrectionClearedSleeperDup     CorrectionStatus = "cleared_sleeper_duplicate"
	CorrectionKeptGSISNewer         CorrectionStatus = "kept_gsis_newer"
	CorrectionClearedGSISDuplicate  CorrectionStatus = "cleared_gsis_duplicate"
	CorrectionKeptMFLNewer          CorrectionStatus = "kept_mfl_newer"
	CorrectionClearedMFLDuplicate   CorrectionStatus = "cleared_mfl_duplicate"
	CorrectionClearedSleeperNoMatch CorrectionStatus = "cleared_sleeper_no_authority"
)

// ProviderIDs carries every known external platform identifier for one
// player. Fields are nil when the provider has no record, or after a
// deduplication pass cleared a conflicting value.
type ProviderIDs struct {
	MFL     *string `json:"mfl_id" csv:"mfl_id"`
	Sleeper *string `json:"sleeper_id" csv:"sleeper_id"`
	GSIS    *string `json:"gsis_id" csv:"gsis_id"`
	ESPN    *string `json:"espn_id" csv:"espn_id"`
	Yahoo   *string `json:"yahoo_id" csv:"yahoo_id"`
	PFR     *string `json:"pfr_id" csv:"pfr_id"`
}

// Empty reports whether the row carries no external identifier at all.
// Such rows are team placeholders in the provider feed and are filtered
// out before deduplication.
func (p ProviderIDs) Empty() bool {
	return p.MFL == nil && p.Sleeper == nil && p.GSIS == nil &&
		p.ESPN == nil && p.Yahoo == nil && p.PFR == nil
}

// PlayerIdentity is one row of the canonical player-identity crosswalk.
// PlayerID is a sequential surrogate assigned after deduplication and is
// the foreign key every normalized table resolves against. NameLastFirst
// is the "Last, First" variant derived for downstream fuzzy matching.
type PlayerIdentity struct {
	PlayerID      int64            `json:"player_id" csv:"player_id" validate:"required,min=1"`
	Providers     ProviderIDs      `json:"providers"`
	DisplayName   string           `json:"display_name" csv:"display_name" validate:"required"`
	NameLastFirst string           `json:"name_last_first" csv:"name_last_first"`
	Position      string           `json:"position,omitempty" csv:"position"`
	Team          string           `json:"team,omitempty" csv:"team"`
	Birthdate     string           `json:"birthdate,omitempty" csv:"birthdate"`
	DraftYear     *int             `json:"draft_year" csv:"draft_year"`
	Status        CorrectionStatus `json:"correction_status" csv:"correction_status"`
}

// DraftYearOrZero is the ranking key used by provider-ID deduplication:
// newer players win conflicts, unknown draft years rank last.
func (p PlayerIdentity) DraftYearOrZero() int {
	if p.DraftYear == nil {
		return 0
	}
	return *p.DraftYear
}
