package ledger

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// ColumnRef locates one column of a block. Resolution prefers the header
// label: if Label occurs exactly once in the header row, that index wins.
// A missing or ambiguous label (the template repeats "Pos." in two blocks)
// falls back to the fixed Offset. A layout change in the sheet is therefore
// a schema edit, not a code edit.
type ColumnRef struct {
	Label  string `yaml:"label,omitempty"`
	Offset int    `yaml:"offset"`
}

func (c ColumnRef) resolve(header []string) int {
	if c.Label == "" {
		return c.Offset
	}
	idx, count := -1, 0
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), c.Label) {
			idx = i
			count++
		}
	}
	if count == 1 {
		return idx
	}
	return c.Offset
}

// RosterColumns describes the active-contract block.
type RosterColumns struct {
	Position     ColumnRef   `yaml:"position"`
	Player       ColumnRef   `yaml:"player"`
	Years        []ColumnRef `yaml:"years"`
	Total        ColumnRef   `yaml:"total"`
	RFA          ColumnRef   `yaml:"rfa"`
	FranchiseTag ColumnRef   `yaml:"franchise_tag"`
	Contract     ColumnRef   `yaml:"contract"`
	Split        ColumnRef   `yaml:"split"`
}

// CutColumns describes the dead-cap block.
type CutColumns struct {
	Player   ColumnRef   `yaml:"player"`
	Position ColumnRef   `yaml:"position"`
	Years    []ColumnRef `yaml:"years"`
	Total    ColumnRef   `yaml:"total"`
}

// PickColumns describes the draft-pick ownership block.
type PickColumns struct {
	Owner      ColumnRef   `yaml:"owner"`
	Years      []ColumnRef `yaml:"years"`
	Conditions ColumnRef   `yaml:"conditions"`
}

// SheetSchema is the declarative description of one GM tab's layout: the
// header sentinel that anchors all three blocks, the GM-name sentinel in
// the rows above it, and the column windows of each block.
type SheetSchema struct {
	HeaderSentinel string        `yaml:"header_sentinel"`
	GMSentinel     string        `yaml:"gm_sentinel"`
	Roster         RosterColumns `yaml:"roster"`
	Cuts           CutColumns    `yaml:"cuts"`
	Picks          PickColumns   `yaml:"picks"`
}

// DefaultSheetSchema returns the layout of the league's current template:
// roster in columns 0-11, cuts in 13-20, picks in 22-28, with one spacer
// column between blocks.
func DefaultSheetSchema() SheetSchema {
	return SheetSchema{
		HeaderSentinel: "Pos.",
		GMSentinel:     "GM:",
		Roster: RosterColumns{
			Position:     ColumnRef{Label: "Pos.", Offset: 0},
			Player:       ColumnRef{Label: "Player", Offset: 1},
			Years:        yearColumns(2),
			Total:        ColumnRef{Label: "Total", Offset: 7},
			RFA:          ColumnRef{Label: "RFA?", Offset: 8},
			FranchiseTag: ColumnRef{Label: "FT?", Offset: 9},
			Contract:     ColumnRef{Label: "Contract", Offset: 10},
			Split:        ColumnRef{Label: "Split", Offset: 11},
		},
		Cuts: CutColumns{
			Player:   ColumnRef{Label: "Cut Player", Offset: 13},
			Position: ColumnRef{Label: "Pos.", Offset: 14},
			Years:    yearColumns(15),
			Total:    ColumnRef{Label: "Total", Offset: 20},
		},
		Picks: PickColumns{
			Owner:      ColumnRef{Label: "Pick Owner", Offset: 22},
			Years:      yearColumns(23),
			Conditions: ColumnRef{Label: "Trade Conditions", Offset: 28},
		},
	}
}

// yearColumns builds the five consecutive season columns starting at base.
// Year headers change every season, so they are matched by offset only.
func yearColumns(base int) []ColumnRef {
	cols := make([]ColumnRef, domain.ContractYears)
	for i := range cols {
		cols[i] = ColumnRef{Offset: base + i}
	}
	return cols
}

// LoadSheetSchema reads a schema override from a YAML file. Zero-valued
// sentinels fall back to the defaults so an override file may describe
// only the blocks that moved.
func LoadSheetSchema(path string) (SheetSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SheetSchema{}, fmt.Errorf("reading sheet schema: %w", err)
	}
	schema := DefaultSheetSchema()
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return SheetSchema{}, fmt.Errorf("parsing sheet schema: %w", err)
	}
	if schema.HeaderSentinel == "" {
		schema.HeaderSentinel = "Pos."
	}
	if schema.GMSentinel == "" {
		schema.GMSentinel = "GM:"
	}
	return schema, nil
}

// ParseGMTab splits one GM's raw row-major grid into the three block row
// sets. It locates the header row whose first cell equals the schema's
// sentinel, resolves each block's columns against that header, and reads
// every row below it until the grid ends. A row joins a block only when its
// key cell (player for roster and cuts, owner for picks) is non-empty.
//
// A grid without the sentinel header yields three empty sets and never an
// error: one malformed tab must not take down the batch. Blank-key rows are
// template padding and are skipped without trace.
func ParseGMTab(tabName string, rows [][]string, schema SheetSchema) domain.ParsedGM {
	headerIdx := findHeaderRow(rows, schema.HeaderSentinel)
	if headerIdx < 0 {
		return domain.ParsedGM{GMName: fallbackGMName(tabName)}
	}

	header := rows[headerIdx]
	gm := extractGMName(rows[:headerIdx], schema.GMSentinel)
	if gm == "" {
		gm = fallbackGMName(tabName)
	}

	parsed := domain.ParsedGM{GMName: gm}
	for _, row := range rows[headerIdx+1:] {
		if r, ok := parseRosterRow(gm, row, header, schema.Roster); ok {
			parsed.Roster = append(parsed.Roster, r)
		}
		if c, ok := parseCutRow(gm, row, header, schema.Cuts); ok {
			parsed.Cuts = append(parsed.Cuts, c)
		}
		if p, ok := parsePickRow(gm, row, header, schema.Picks); ok {
			parsed.Picks = append(parsed.Picks, p)
		}
	}
	return parsed
}

func findHeaderRow(rows [][]string, sentinel string) int {
	for i, row := range rows {
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), sentinel) {
			return i
		}
	}
	return -1
}

// extractGMName scans the rows above the header for the GM sentinel. Both
// template variants are supported: a sentinel cell with the name in the
// next non-empty cell, and a single "GM: Name" cell.
func extractGMName(headerRegion [][]string, sentinel string) string {
	for _, row := range headerRegion {
		for i, cell := range row {
			c := strings.TrimSpace(cell)
			if strings.EqualFold(c, sentinel) {
				for _, next := range row[i+1:] {
					if n := strings.TrimSpace(next); n != "" {
						return n
					}
				}
				continue
			}
			if len(c) > len(sentinel) && strings.EqualFold(c[:len(sentinel)], sentinel) {
				if n := strings.TrimSpace(c[len(sentinel):]); n != "" {
					return n
				}
			}
		}
	}
	return ""
}

// fallbackGMName derives a display name from the tab identifier when the
// sheet carries no GM sentinel, stripping a file extension if the tab came
// from a CSV directory load.
func fallbackGMName(tabName string) string {
	name := strings.TrimSpace(tabName)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

func parseRosterRow(gm string, row, header []string, cols RosterColumns) (domain.RosterRow, bool) {
	player := cellAt(row, cols.Player.resolve(header))
	if player == "" {
		return domain.RosterRow{}, false
	}
	contract := cellAt(row, cols.Contract.resolve(header))
	split := cellAt(row, cols.Split.resolve(header))
	return domain.RosterRow{
		GM:               gm,
		Position:         cellAt(row, cols.Position.resolve(header)),
		Player:           player,
		YearlyAmounts:    yearlyAmounts(row, header, cols.Years),
		Total:            parseAmount(cellAt(row, cols.Total.resolve(header))),
		RFAFlag:          parseFlag(cellAt(row, cols.RFA.resolve(header))),
		FranchiseTagFlag: parseFlag(cellAt(row, cols.FranchiseTag.resolve(header))),
		Contract:         ParseContractFields(contract, split),
	}, true
}

func parseCutRow(gm string, row, header []string, cols CutColumns) (domain.CutContractRow, bool) {
	player := cellAt(row, cols.Player.resolve(header))
	if player == "" {
		return domain.CutContractRow{}, false
	}
	return domain.CutContractRow{
		GM:            gm,
		Player:        player,
		Position:      cellAt(row, cols.Position.resolve(header)),
		YearlyAmounts: yearlyAmounts(row, header, cols.Years),
		Total:         parseAmount(cellAt(row, cols.Total.resolve(header))),
	}, true
}

func parsePickRow(gm string, row, header []string, cols PickColumns) (domain.DraftPickRow, bool) {
	owner := cellAt(row, cols.Owner.resolve(header))
	if owner == "" {
		return domain.DraftPickRow{}, false
	}
	refs := make([]string, len(cols.Years))
	for i, col := range cols.Years {
		if v := cellAt(row, col.resolve(header)); !isNoValue(v) {
			refs[i] = v
		}
	}
	return domain.DraftPickRow{
		GM:              gm,
		PickOwner:       owner,
		PickRefs:        refs,
		TradeConditions: cellAt(row, cols.Conditions.resolve(header)),
	}, true
}

func yearlyAmounts(row, header []string, cols []ColumnRef) []*int {
	amounts := make([]*int, len(cols))
	for i, col := range cols {
		amounts[i] = parseAmount(cellAt(row, col.resolve(header)))
	}
	return amounts
}
