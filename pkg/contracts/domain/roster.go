package domain

// ContractYears is the number of forward-looking salary columns carried by
// every roster, cut and pick block in the league sheet.
const ContractYears = 5

// ContractFields is the decomposed form of the sheet's compact contract
// notation ("total/years" plus a hyphen-joined per-year split). All fields
// are nil when the source carried the no-value sentinel or could not be
// parsed; Split is derived by even division when the sheet leaves it blank.
type ContractFields struct {
	Total *int  `json:"total"`
	Years *int  `json:"years"`
	Split []int `json:"split,omitempty"`
}

// IsZero reports whether no contract information was present.
func (c ContractFields) IsZero() bool {
	return c.Total == nil && c.Years == nil && c.Split == nil
}

// RosterRow is one active contract slot on a GM's roster block.
type RosterRow struct {
	GM               string         `json:"gm" csv:"gm" validate:"required"`
	Position         string         `json:"position" csv:"position"`
	Player           string         `json:"player" csv:"player" validate:"required"`
	YearlyAmounts    []*int         `json:"yearly_amounts" csv:"yearly_amounts"`
	Total            *int           `json:"total" csv:"total"`
	RFAFlag          bool           `json:"rfa_flag" csv:"rfa_flag"`
	FranchiseTagFlag bool           `json:"franchise_tag_flag" csv:"franchise_tag_flag"`
	Contract         ContractFields `json:"contract"`
}

// CutContractRow is a dead-cap obligation left behind by a released player.
type CutContractRow struct {
	GM            string `json:"gm" csv:"gm" validate:"required"`
	Player        string `json:"player" csv:"player" validate:"required"`
	Position      string `json:"position" csv:"position"`
	YearlyAmounts []*int `json:"yearly_amounts" csv:"yearly_amounts"`
	Total         *int   `json:"total" csv:"total"`
}

// DraftPickRow records future draft-pick ownership: one row per original
// pick owner inside a GM tab's pick block. GM is the tab's franchise (who
// holds the picks now), PickOwner the franchise the pick slots originated
// from. PickRefs holds the raw per-year cell text (e.g. "1st, 3rd", a
// traded-away marker, or empty).
type DraftPickRow struct {
	GM              string   `json:"gm" csv:"gm" validate:"required"`
	PickOwner       string   `json:"pick_owner" csv:"pick_owner" validate:"required"`
	PickRefs        []string `json:"pick_refs" csv:"pick_refs"`
	TradeConditions string   `json:"trade_conditions,omitempty" csv:"trade_conditions"`
}

// ParsedGM is the complete parse result for a single GM tab: the three block
// row sets, each stamped with the owning GM's display name. Instances are
// merged into league-wide tables and then discarded.
type ParsedGM struct {
	GMName string           `json:"gm_name"`
	Roster []RosterRow      `json:"roster"`
	Cuts   []CutContractRow `json:"cuts"`
	Picks  []DraftPickRow   `json:"picks"`
}

// RowCount returns the total number of rows across the three blocks.
func (p ParsedGM) RowCount() int {
	return len(p.Roster) + len(p.Cuts) + len(p.Picks)
}
