package ledger

import (
	"strings"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// classifierRule is one row of the transaction-type decision table.
// A nil Periods slice matches any period, an empty Action matches any
// action, and a nil RFA matches either flag state.
type classifierRule struct {
	Periods []domain.PeriodType
	Action  string
	RFA     *bool
	Result  domain.TransactionType
}

func (r classifierRule) matches(period domain.PeriodType, action string, rfaMatched bool) bool {
	if r.Periods != nil {
		found := false
		for _, p := range r.Periods {
			if p == period {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.Action != "" && r.Action != action {
		return false
	}
	if r.RFA != nil && *r.RFA != rfaMatched {
		return false
	}
	return true
}

var rfaYes = true

// classificationRules is the ordered decision table mapping
// (period_type, action, rfa flag) to a refined transaction type. First
// match wins; DeriveTransactionType supplies the unknown fallback, so the
// table stays total by construction. New ledger conventions are added as
// rows here, never as branches around the table.
var classificationRules = []classifierRule{
	{Periods: periods(domain.PeriodRookieDraft), Action: "draft", Result: domain.TransactionRookieDraftSelection},
	{Periods: periods(domain.PeriodFAAD), Action: "signing", RFA: &rfaYes, Result: domain.TransactionFAADRFAMatched},
	{Periods: periods(domain.PeriodFAAD), Action: "signing", Result: domain.TransactionFAADUFASigning},
	{Periods: periods(domain.PeriodFAAD), Action: "fa", Result: domain.TransactionFAADUFASigning},
	{Periods: periods(domain.PeriodOffseason), Action: "extension", Result: domain.TransactionContractExtension},
	{Periods: periods(domain.PeriodOffseason), Action: "amnesty", Result: domain.TransactionAmnestyCut},
	{Action: "franchise", Result: domain.TransactionFranchiseTag},
	{Periods: periods(domain.PeriodOffseason), Action: "fa", Result: domain.TransactionOffseasonUFASigning},
	{Periods: periods(domain.PeriodRegular, domain.PeriodDeadline, domain.PeriodPreseason, domain.PeriodOffseason), Action: "signing", Result: domain.TransactionFASASigning},
	{Periods: periods(domain.PeriodRegular), Action: "trade", Result: domain.TransactionTrade},
	{Periods: periods(domain.PeriodRegular), Action: "cut", Result: domain.TransactionCut},
	{Periods: periods(domain.PeriodRegular), Action: "waivers", Result: domain.TransactionWaiverClaim},
}

func periods(ps ...domain.PeriodType) []domain.PeriodType { return ps }

// DeriveTransactionType classifies one ledger action against the decision
// table. Unmatched combinations resolve to TransactionUnknown rather than
// erroring, preserving the row for manual triage.
func DeriveTransactionType(period domain.PeriodType, action string, rfaMatched bool) domain.TransactionType {
	act := strings.ToLower(strings.TrimSpace(action))
	for _, rule := range classificationRules {
		if rule.matches(period, act, rfaMatched) {
			return rule.Result
		}
	}
	return domain.TransactionUnknown
}

// ParseRFAFlag reads the ledger's RFA-matched column. Only a literal "yes"
// counts as matched; "-", blank and everything else mean unmatched. This
// flag is the sole discriminator between an RFA match and a plain FAAD
// signing.
func ParseRFAFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

// periodPatterns maps substrings of the ledger's free-form time-frame
// column to normalized periods. Ordered: week markers must win before the
// offseason check so playoff entries like "Playoffs Wk 16" classify as
// regular-season activity.
var periodPatterns = []struct {
	match  func(string) bool
	result domain.PeriodType
}{
	{contains("faad"), domain.PeriodFAAD},
	{contains("rookie"), domain.PeriodRookieDraft},
	{contains("deadline"), domain.PeriodDeadline},
	{prefix("pre"), domain.PeriodPreseason},
	{contains("playoff"), domain.PeriodRegular},
	{contains("wk"), domain.PeriodRegular},
	{contains("week"), domain.PeriodRegular},
	{contains("off"), domain.PeriodOffseason},
}

// DerivePeriodType normalizes a ledger time-frame string ("Wk 3",
// "FAAD 2025", "Offseason", "Trade Deadline") into a PeriodType.
// Unrecognized frames resolve to PeriodUnknown.
func DerivePeriodType(timeFrame string) domain.PeriodType {
	tf := strings.ToLower(strings.TrimSpace(timeFrame))
	if tf == "" {
		return domain.PeriodUnknown
	}
	for _, p := range periodPatterns {
		if p.match(tf) {
			return p.result
		}
	}
	return domain.PeriodUnknown
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func prefix(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}
