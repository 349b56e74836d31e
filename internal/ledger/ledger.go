package ledger

import (
	"log/slog"
	"strings"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// Resolver is the identity lookup consumed by the ledger parser. Resolve
// takes a normalized name key and reports the crosswalk player_id, or
// false when the crosswalk has no entry for it.
type Resolver interface {
	Resolve(name string) (int64, bool)
}

// ParseResult carries the classified transaction table plus the two QA
// projections: player subjects the crosswalk could not resolve, and pick
// labels the strict pick parser rejected. QA rows duplicate, never replace,
// their transaction rows.
type ParseResult struct {
	Transactions    []domain.TransactionRecord
	UnmappedPlayers []domain.UnmappedAsset
	UnmappedPicks   []domain.UnmappedAsset
}

// Parser turns the raw transaction-ledger grid into classified
// TransactionRecords, wiring together period derivation, asset inference,
// the type decision table, pick normalization and identity resolution.
type Parser struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewParser creates a ledger parser backed by the given identity resolver.
func NewParser(resolver Resolver, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "ledger.parser")),
	}
}

// ledger column keys, matched case-insensitively against the header row.
const (
	colTransactionID = "transaction id"
	colSeason        = "season"
	colTimeFrame     = "time frame"
	colGM            = "gm"
	colAction        = "action"
	colAsset         = "asset"
	colPosition      = "position"
	colRFAMatched    = "rfa matched"
	colContract      = "contract"
	colSplit         = "split"
	colPick          = "pick"
)

// Parse consumes the full ledger grid, header row first. Every data row
// with a subject yields exactly one TransactionRecord; rows that are
// entirely padding (no asset and no action) are skipped. A grid whose
// header lacks the asset column is malformed input and degrades to an
// empty result rather than an error, so the rest of the batch proceeds.
func (p *Parser) Parse(rows [][]string) ParseResult {
	var result ParseResult
	if len(rows) == 0 {
		return result
	}

	columns := mapLedgerColumns(rows[0])
	if _, ok := columns[colAsset]; !ok {
		p.logger.Warn("ledger header missing asset column, skipping grid",
			slog.Int("rows", len(rows)))
		return result
	}

	get := func(row []string, key string) string {
		idx, ok := columns[key]
		if !ok {
			return ""
		}
		return cellAt(row, idx)
	}

	for _, row := range rows[1:] {
		subject := get(row, colAsset)
		action := get(row, colAction)
		if subject == "" && action == "" {
			continue
		}

		timeFrame := get(row, colTimeFrame)
		period := DerivePeriodType(timeFrame)
		position := get(row, colPosition)
		rfa := ParseRFAFlag(get(row, colRFAMatched))
		txnID := get(row, colTransactionID)

		record := domain.TransactionRecord{
			TransactionID:   txnID,
			Season:          get(row, colSeason),
			TimeFrame:       timeFrame,
			PeriodType:      period,
			TransactionType: DeriveTransactionType(period, action, rfa),
			AssetType:       InferAssetType(subject, position),
			GM:              get(row, colGM),
			SubjectName:     subject,
			Position:        position,
			RFAMatched:      rfa,
			Contract:        ParseContractFields(get(row, colContract), get(row, colSplit)),
		}

		switch record.AssetType {
		case domain.AssetPlayer:
			if id, ok := p.resolver.Resolve(NormalizeName(subject)); ok {
				record.ResolvedID = &id
			} else {
				result.UnmappedPlayers = append(result.UnmappedPlayers, domain.UnmappedAsset{
					SubjectName:   subject,
					TransactionID: txnID,
					AssetType:     domain.AssetPlayer,
				})
			}
		case domain.AssetPick:
			record.PickID = ParsePickID(subject, get(row, colPick))
			if record.PickID == nil {
				result.UnmappedPicks = append(result.UnmappedPicks, domain.UnmappedAsset{
					SubjectName:   subject,
					TransactionID: txnID,
					AssetType:     domain.AssetPick,
				})
			}
		}

		result.Transactions = append(result.Transactions, record)
	}

	if n := len(result.UnmappedPlayers); n > 0 {
		p.logger.Warn("ledger rows with unresolved players", slog.Int("count", n))
	}
	if n := len(result.UnmappedPicks); n > 0 {
		p.logger.Warn("ledger rows with unparseable picks", slog.Int("count", n))
	}
	return result
}

// mapLedgerColumns indexes the header row by lowercased label.
func mapLedgerColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		label := strings.ToLower(strings.TrimSpace(cell))
		if label == "" {
			continue
		}
		if _, exists := columns[label]; !exists {
			columns[label] = i
		}
	}
	return columns
}
