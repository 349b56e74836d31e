// Package sheets loads league sheet tabs from Google Sheets, Excel
// workbooks, or CSV directory dumps and presents them uniformly as raw
// string grids. Parsing the grids is left to the ledger package.
package sheets

import "strings"

// TabGrid is one sheet tab as raw cell text. Rows may be ragged; cell
// access beyond a row's length reads as empty.
type TabGrid struct {
	Name string
	Rows [][]string
}

// TabKind classifies a tab by its role in the workbook.
type TabKind string

const (
	KindGM       TabKind = "gm"
	KindLedger   TabKind = "ledger"
	KindExcluded TabKind = "excluded"
)

// Classifier decides what role each tab plays. The ledger tab and the
// excluded presentation tabs are named; every other tab is treated as a
// GM roster tab.
type Classifier struct {
	LedgerTab   string
	ExcludeTabs []string
}

// Classify returns the role of the named tab. Matching is
// case-insensitive.
func (c Classifier) Classify(name string) TabKind {
	if strings.EqualFold(name, c.LedgerTab) {
		return KindLedger
	}
	for _, excluded := range c.ExcludeTabs {
		if strings.EqualFold(name, excluded) {
			return KindExcluded
		}
	}
	return KindGM
}

// Split partitions the grids into GM tabs and the ledger tab. Excluded
// tabs are dropped. When the workbook carries several tabs matching the
// ledger name, the first wins.
func (c Classifier) Split(grids []TabGrid) (gmTabs []TabGrid, ledger *TabGrid) {
	for i := range grids {
		switch c.Classify(grids[i].Name) {
		case KindLedger:
			if ledger == nil {
				ledger = &grids[i]
			}
		case KindGM:
			gmTabs = append(gmTabs, grids[i])
		}
	}
	return gmTabs, ledger
}
