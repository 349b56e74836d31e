package ledger

import (
	"strconv"
	"strings"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// ParseContractFields decomposes the sheet's compact contract notation into
// a structured payment schedule. The contract cell holds "total/years"
// (currency markers tolerated) and the split cell holds a hyphen-joined
// per-year breakdown, or the no-value sentinel to request an even split.
//
// When the split is left blank, each of the years slots receives the
// integer quotient total/years. The remainder is intentionally not
// redistributed: "10/3" yields [3 3 3], which sums to 9. Downstream
// data-quality checks own that discrepancy, not the parser.
//
// A missing or malformed contract cell, or a years value of zero or less,
// yields the all-nil ContractFields.
func ParseContractFields(contract, split string) domain.ContractFields {
	if isNoValue(contract) {
		return domain.ContractFields{}
	}

	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(contract)
	parts := strings.SplitN(clean, "/", 2)
	if len(parts) != 2 {
		return domain.ContractFields{}
	}
	total, err := strconv.Atoi(parts[0])
	if err != nil {
		return domain.ContractFields{}
	}
	years, err := strconv.Atoi(parts[1])
	if err != nil || years <= 0 {
		return domain.ContractFields{}
	}

	fields := domain.ContractFields{Total: &total, Years: &years}

	if isNoValue(split) {
		even := make([]int, years)
		for i := range even {
			even[i] = total / years
		}
		fields.Split = even
		return fields
	}

	explicit, ok := parseExplicitSplit(split)
	if ok {
		fields.Split = explicit
	}
	return fields
}

// parseExplicitSplit reads a "3-4-5" style breakdown. Any unparseable
// element invalidates the whole split; total and years survive on the
// caller's side so the row is not lost.
func parseExplicitSplit(split string) ([]int, bool) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(split)
	parts := strings.Split(clean, "-")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
