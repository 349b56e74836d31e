package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// Dataset names double as directory names in the output layout.
const (
	DatasetTransactions    = "transactions"
	DatasetRosters         = "rosters"
	DatasetCutContracts    = "cut_contracts"
	DatasetDraftPicks      = "draft_picks"
	DatasetIdentities      = "player_identities"
	DatasetUnmappedPlayers = "qa_unmapped_players"
	DatasetUnmappedPicks   = "qa_unmapped_picks"
)

// DatasetNames lists every dataset a run produces, in write order.
var DatasetNames = []string{
	DatasetTransactions,
	DatasetRosters,
	DatasetCutContracts,
	DatasetDraftPicks,
	DatasetIdentities,
	DatasetUnmappedPlayers,
	DatasetUnmappedPicks,
}

// DatasetDir returns the partition directory of a dataset snapshot,
// relative to the export root.
func DatasetDir(name, date string) string {
	return filepath.Join(name, "dt="+date)
}

// DatasetFile returns the CSV file path of a dataset snapshot, relative
// to the export root.
func DatasetFile(name, date string) string {
	return filepath.Join(DatasetDir(name, date), name+".csv")
}

// Bundle carries everything one pipeline run produced.
type Bundle struct {
	GMs             []domain.ParsedGM
	Transactions    []domain.TransactionRecord
	Identities      []domain.PlayerIdentity
	UnmappedPlayers []domain.UnmappedAsset
	UnmappedPicks   []domain.UnmappedAsset
}

// DatasetInfo summarizes one written dataset in the manifest.
type DatasetInfo struct {
	Rows int    `json:"rows"`
	Path string `json:"path"`
}

// Manifest describes a completed export run. It is written next to the
// dataset directories as manifest.json.
type Manifest struct {
	SnapshotDate string                 `json:"snapshot_date"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Datasets     map[string]DatasetInfo `json:"datasets"`
}

// DatasetExporter writes the normalized datasets under a base directory.
type DatasetExporter struct {
	csvWriter *CSVWriter
	baseDir   string
	logger    *slog.Logger
}

// NewDatasetExporter creates an exporter rooted at baseDir.
func NewDatasetExporter(baseDir string, logger *slog.Logger) *DatasetExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetExporter{
		csvWriter: NewCSVWriter(baseDir),
		baseDir:   baseDir,
		logger:    logger.With("component", "exporter"),
	}
}

// WriteDatasets writes the seven datasets and the run manifest. The
// snapshot date becomes the dt= partition key of every dataset.
func (e *DatasetExporter) WriteDatasets(date string, bundle Bundle) (*Manifest, error) {
	if date == "" {
		return nil, fmt.Errorf("snapshot date is required")
	}

	manifest := &Manifest{
		SnapshotDate: date,
		GeneratedAt:  time.Now().UTC(),
		Datasets:     make(map[string]DatasetInfo, len(DatasetNames)),
	}

	rows, err := e.writeTransactions(date, bundle.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to write transactions: %w", err)
	}
	manifest.Datasets[DatasetTransactions] = DatasetInfo{Rows: rows, Path: DatasetFile(DatasetTransactions, date)}

	simple := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{DatasetRosters, rosterHeaders(), rosterRecords(bundle.GMs)},
		{DatasetCutContracts, cutHeaders(), cutRecords(bundle.GMs)},
		{DatasetDraftPicks, pickHeaders(), pickRecords(bundle.GMs)},
		{DatasetIdentities, identityHeaders(), identityRecords(bundle.Identities)},
		{DatasetUnmappedPlayers, unmappedHeaders(), unmappedRecords(bundle.UnmappedPlayers)},
		{DatasetUnmappedPicks, unmappedHeaders(), unmappedRecords(bundle.UnmappedPicks)},
	}

	for _, ds := range simple {
		path := DatasetFile(ds.name, date)
		if err := e.csvWriter.WriteSimpleCSV(path, ds.headers, ds.records); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", ds.name, err)
		}
		manifest.Datasets[ds.name] = DatasetInfo{Rows: len(ds.records), Path: path}
	}

	if err := e.writeManifest(manifest); err != nil {
		return nil, err
	}

	e.logger.Info("datasets written",
		"snapshot_date", date,
		"transactions", manifest.Datasets[DatasetTransactions].Rows,
		"identities", manifest.Datasets[DatasetIdentities].Rows,
		"unmapped_players", manifest.Datasets[DatasetUnmappedPlayers].Rows,
		"unmapped_picks", manifest.Datasets[DatasetUnmappedPicks].Rows)

	return manifest, nil
}

// writeTransactions streams the transaction table, which dominates the
// run's row count.
func (e *DatasetExporter) writeTransactions(date string, records []domain.TransactionRecord) (int, error) {
	stream, err := e.csvWriter.CreateStreamWriter(DatasetFile(DatasetTransactions, date), transactionHeaders())
	if err != nil {
		return 0, err
	}

	for _, record := range records {
		if err := stream.WriteRecord(transactionRecord(record)); err != nil {
			stream.Close()
			return 0, err
		}
	}

	return len(records), stream.Close()
}

func (e *DatasetExporter) writeManifest(manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(e.baseDir, "manifest.json")
	if err := os.MkdirAll(e.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// WriteIdentityTable writes the player identity crosswalk as a single
// CSV file outside the dated snapshot layout. The crosswalk-build CLI
// publishes the reference table this way; ingest runs pick it up as the
// existing-identity source.
func WriteIdentityTable(path string, identities []domain.PlayerIdentity) error {
	writer := NewCSVWriter(filepath.Dir(path))
	return writer.WriteSimpleCSV(filepath.Base(path), identityHeaders(), identityRecords(identities))
}

// yearHeaders produces year_1..year_n column names.
func yearHeaders() []string {
	headers := make([]string, domain.ContractYears)
	for i := range headers {
		headers[i] = fmt.Sprintf("year_%d", i+1)
	}
	return headers
}

// yearCell reads an amount column, tolerating short slices.
func yearCell(amounts []*int, i int) string {
	if i >= len(amounts) {
		return ""
	}
	return formatIntPtr(amounts[i])
}

// refCell reads a raw pick-reference column, tolerating short slices.
func refCell(refs []string, i int) string {
	if i >= len(refs) {
		return ""
	}
	return refs[i]
}

func transactionHeaders() []string {
	return []string{
		"transaction_id", "season", "time_frame", "period_type",
		"transaction_type_refined", "asset_type", "gm", "subject_name",
		"position", "resolved_id", "pick_id", "rfa_matched",
		"contract_total", "contract_years", "contract_split",
	}
}

func transactionRecord(r domain.TransactionRecord) []string {
	return []string{
		r.TransactionID,
		r.Season,
		r.TimeFrame,
		string(r.PeriodType),
		string(r.TransactionType),
		string(r.AssetType),
		r.GM,
		r.SubjectName,
		r.Position,
		formatInt64Ptr(r.ResolvedID),
		formatStrPtr(r.PickID),
		formatBool(r.RFAMatched),
		formatIntPtr(r.Contract.Total),
		formatIntPtr(r.Contract.Years),
		formatSplit(r.Contract.Split),
	}
}

func rosterHeaders() []string {
	headers := []string{"gm", "position", "player"}
	headers = append(headers, yearHeaders()...)
	return append(headers,
		"total", "rfa", "franchise_tag",
		"contract_total", "contract_years", "contract_split")
}

func rosterRecords(gms []domain.ParsedGM) [][]string {
	var records [][]string
	for _, gm := range gms {
		for _, row := range gm.Roster {
			record := []string{row.GM, row.Position, row.Player}
			for i := 0; i < domain.ContractYears; i++ {
				record = append(record, yearCell(row.YearlyAmounts, i))
			}
			record = append(record,
				formatIntPtr(row.Total),
				formatBool(row.RFAFlag),
				formatBool(row.FranchiseTagFlag),
				formatIntPtr(row.Contract.Total),
				formatIntPtr(row.Contract.Years),
				formatSplit(row.Contract.Split))
			records = append(records, record)
		}
	}
	return records
}

func cutHeaders() []string {
	headers := []string{"gm", "player", "position"}
	headers = append(headers, yearHeaders()...)
	return append(headers, "total")
}

func cutRecords(gms []domain.ParsedGM) [][]string {
	var records [][]string
	for _, gm := range gms {
		for _, row := range gm.Cuts {
			record := []string{row.GM, row.Player, row.Position}
			for i := 0; i < domain.ContractYears; i++ {
				record = append(record, yearCell(row.YearlyAmounts, i))
			}
			records = append(records, append(record, formatIntPtr(row.Total)))
		}
	}
	return records
}

func pickHeaders() []string {
	headers := []string{"gm", "pick_owner"}
	headers = append(headers, yearHeaders()...)
	return append(headers, "trade_conditions")
}

func pickRecords(gms []domain.ParsedGM) [][]string {
	var records [][]string
	for _, gm := range gms {
		for _, row := range gm.Picks {
			record := []string{row.GM, row.PickOwner}
			for i := 0; i < domain.ContractYears; i++ {
				record = append(record, refCell(row.PickRefs, i))
			}
			records = append(records, append(record, row.TradeConditions))
		}
	}
	return records
}

func identityHeaders() []string {
	return []string{
		"player_id", "display_name", "name_last_first", "position",
		"team", "birthdate", "draft_year",
		"mfl_id", "sleeper_id", "gsis_id", "espn_id", "yahoo_id", "pfr_id",
		"correction_status",
	}
}

func identityRecords(identities []domain.PlayerIdentity) [][]string {
	records := make([][]string, 0, len(identities))
	for _, id := range identities {
		records = append(records, []string{
			fmt.Sprintf("%d", id.PlayerID),
			id.DisplayName,
			id.NameLastFirst,
			id.Position,
			id.Team,
			id.Birthdate,
			formatIntPtr(id.DraftYear),
			formatStrPtr(id.Providers.MFL),
			formatStrPtr(id.Providers.Sleeper),
			formatStrPtr(id.Providers.GSIS),
			formatStrPtr(id.Providers.ESPN),
			formatStrPtr(id.Providers.Yahoo),
			formatStrPtr(id.Providers.PFR),
			string(id.Status),
		})
	}
	return records
}

func unmappedHeaders() []string {
	return []string{"subject_name", "transaction_id", "asset_type"}
}

func unmappedRecords(assets []domain.UnmappedAsset) [][]string {
	records := make([][]string, 0, len(assets))
	for _, asset := range assets {
		records = append(records, []string{
			asset.SubjectName,
			asset.TransactionID,
			string(asset.AssetType),
		})
	}
	return records
}
