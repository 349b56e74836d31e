package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/config"
	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
)

// fetchConcurrency bounds parallel tab fetches so a large workbook does
// not burn the per-minute API quota in one burst.
const fetchConcurrency = 4

// GoogleClient fetches tab grids from a Google Sheets spreadsheet.
type GoogleClient struct {
	service       *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// NewGoogleClient builds a client from the sheets configuration.
// Authentication prefers an API key (read-only public sheets) and falls
// back to a service-account credentials file.
func NewGoogleClient(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger) (*GoogleClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SpreadsheetID == "" {
		return nil, apperrors.NewConfigError("sheets spreadsheet id is required", nil)
	}

	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, apperrors.NewConfigError("sheets access requires an api key or a credentials file", nil)
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to create sheets service", err)
	}

	return &GoogleClient{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:        logger.With("component", "sheets.google"),
	}, nil
}

// ListTabs returns the tab names of the spreadsheet in workbook order.
func (c *GoogleClient) ListTabs(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to list spreadsheet tabs", err).
			WithContext("spreadsheet_id", c.spreadsheetID)
	}

	names := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			names = append(names, sheet.Properties.Title)
		}
	}
	return names, nil
}

// FetchTab retrieves one tab as a raw grid.
func (c *GoogleClient) FetchTab(ctx context.Context, name string) (TabGrid, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return TabGrid{}, err
	}

	// Quoting the tab name keeps names with spaces from being read as
	// A1-notation ranges.
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("'%s'", name)).
		Context(ctx).Do()
	if err != nil {
		return TabGrid{}, apperrors.NewNetworkError("failed to fetch tab values", err).
			WithContext("tab", name)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, value := range row {
			cells = append(cells, cellString(value))
		}
		rows = append(rows, cells)
	}

	c.logger.Debug("fetched tab", "tab", name, "rows", len(rows))
	return TabGrid{Name: name, Rows: rows}, nil
}

// FetchAll retrieves the named tabs concurrently, preserving input order.
func (c *GoogleClient) FetchAll(ctx context.Context, names []string) ([]TabGrid, error) {
	grids := make([]TabGrid, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, name := range names {
		g.Go(func() error {
			grid, err := c.FetchTab(ctx, name)
			if err != nil {
				return err
			}
			grids[i] = grid
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grids, nil
}

// cellString renders one API cell value as text. The API reports
// formatted values, so strings dominate; numeric cells arrive as
// float64.
func cellString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
