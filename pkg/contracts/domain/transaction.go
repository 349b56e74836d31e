package domain

// AssetType classifies what a transaction row is about.
type AssetType string

const (
	AssetPlayer   AssetType = "player"
	AssetPick     AssetType = "pick"
	AssetDefense  AssetType = "defense"
	AssetCapSpace AssetType = "cap_space"
	AssetUnknown  AssetType = "unknown"
)

// PeriodType is the normalized league period a transaction belongs to,
// derived from the ledger's free-form time-frame column.
type PeriodType string

const (
	PeriodRegular     PeriodType = "regular"
	PeriodPreseason   PeriodType = "preseason"
	PeriodDeadline    PeriodType = "deadline"
	PeriodOffseason   PeriodType = "offseason"
	PeriodFAAD        PeriodType = "faad"
	PeriodRookieDraft PeriodType = "rookie_draft"
	PeriodUnknown     PeriodType = "unknown"
)

// TransactionType is the refined transaction kind produced by the
// classification table. TransactionUnknown is the total-function fallback
// for ledger rows no rule matches; such rows are kept for manual triage,
// never dropped.
type TransactionType string

const (
	TransactionRookieDraftSelection TransactionType = "rookie_draft_selection"
	TransactionFAADRFAMatched       TransactionType = "faad_rfa_matched"
	TransactionFAADUFASigning       TransactionType = "faad_ufa_signing"
	TransactionContractExtension    TransactionType = "contract_extension"
	TransactionAmnestyCut           TransactionType = "amnesty_cut"
	TransactionFranchiseTag         TransactionType = "franchise_tag"
	TransactionOffseasonUFASigning  TransactionType = "offseason_ufa_signing"
	TransactionFASASigning          TransactionType = "fasa_signing"
	TransactionTrade                TransactionType = "trade"
	TransactionCut                  TransactionType = "cut"
	TransactionWaiverClaim          TransactionType = "waiver_claim"
	TransactionUnknown              TransactionType = "unknown"
)

// TransactionRecord is one fully classified row of the league transaction
// ledger. ResolvedID points into the player-identity crosswalk and is nil
// for assets that have no identity (picks, cap space, defenses) or for
// player rows awaiting QA; PickID is non-nil only for pick assets.
type TransactionRecord struct {
	TransactionID   string          `json:"transaction_id" csv:"transaction_id" validate:"required"`
	Season          string          `json:"season" csv:"season"`
	TimeFrame       string          `json:"time_frame" csv:"time_frame"`
	PeriodType      PeriodType      `json:"period_type" csv:"period_type"`
	TransactionType TransactionType `json:"transaction_type_refined" csv:"transaction_type_refined"`
	AssetType       AssetType       `json:"asset_type" csv:"asset_type"`
	GM              string          `json:"gm" csv:"gm"`
	SubjectName     string          `json:"subject_name" csv:"subject_name"`
	Position        string          `json:"position,omitempty" csv:"position"`
	ResolvedID      *int64          `json:"resolved_id" csv:"resolved_id"`
	PickID          *string         `json:"pick_id" csv:"pick_id"`
	RFAMatched      bool            `json:"rfa_matched" csv:"rfa_matched"`
	Contract        ContractFields  `json:"contract"`
}

// UnmappedAsset is the QA projection of a transaction whose subject could
// not be resolved: a player name missing from the crosswalk, or a pick
// label the pick parser rejected. Reporting only; never fed back into the
// transaction table.
type UnmappedAsset struct {
	SubjectName   string    `json:"subject_name" csv:"subject_name"`
	TransactionID string    `json:"transaction_id" csv:"transaction_id"`
	AssetType     AssetType `json:"asset_type" csv:"asset_type"`
}
