package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/provider"
	"finboard/internal/provider/memory"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is the tab read when no name is configured.
const DefaultSheetName = "Periods"

type fetchFunc func(ctx context.Context) ([][]interface{}, error)

// Client reads period records from a spreadsheet tab and serves them from
// an in-memory table that is reloaded once it is older than the TTL.
type Client struct {
	spreadsheetID string
	sheetName     string
	fetch         fetchFunc

	mu                 sync.Mutex
	store              *memory.Store
	cacheValidDuration time.Duration
	cacheExpiresAt     time.Time
}

var _ provider.Reader = (*Client)(nil)

// Options configures a Sheets client.
type Options struct {
	SpreadsheetID string
	SheetName     string
	ReloadEvery   time.Duration
}

// New creates a Sheets client with Service Account credentials taken from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	c := newClient(opts, nil)
	c.fetch = func(ctx context.Context) ([][]interface{}, error) {
		rng := fmt.Sprintf("%s!A:Z", c.sheetName)
		resp, err := svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rng, err)
		}
		return resp.Values, nil
	}
	return c, nil
}

func newClient(opts Options, fetch fetchFunc) *Client {
	name := strings.TrimSpace(opts.SheetName)
	if name == "" {
		name = DefaultSheetName
	}
	ttl := opts.ReloadEvery
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Client{
		spreadsheetID:      opts.SpreadsheetID,
		sheetName:          name,
		fetch:              fetch,
		cacheValidDuration: ttl,
	}
}

// newSheetsService initializes a read-only Sheets service. A configured
// OAuth user client wins over Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	ts, err := oauthTokenSource(ctx)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth user token",
			"scope", gsheet.SpreadsheetsReadonlyScope)
		return gsheet.NewService(ctx, goption.WithTokenSource(ts))
	case !errors.Is(err, ErrNoOAuthClient):
		return nil, err
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// table returns the current record table, reloading it when expired. A
// failed reload keeps serving the previous table if there is one.
func (c *Client) table(ctx context.Context) (*memory.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil && time.Now().Before(c.cacheExpiresAt) {
		return c.store, nil
	}

	values, err := c.fetch(ctx)
	if err == nil {
		var records []core.PeriodRecord
		records, err = parsePeriods(values)
		if err == nil {
			var store *memory.Store
			store, err = memory.New(records)
			if err == nil {
				c.store = store
				c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
				slog.InfoContext(ctx, "Loaded periods from sheet", "sheet", c.sheetName, "periods", len(records))
				return c.store, nil
			}
		}
	}

	if c.store != nil {
		slog.WarnContext(ctx, "Sheet reload failed, serving previous data", "sheet", c.sheetName, "error", err)
		return c.store, nil
	}
	return nil, err
}

// Invalidate forces the next read to reload the sheet.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) ReadChartData(ctx context.Context, key core.PeriodKey) (core.ChartDataset, error) {
	s, err := c.table(ctx)
	if err != nil {
		return core.ChartDataset{}, err
	}
	return s.ReadChartData(ctx, key)
}

func (c *Client) ReadStatsSummary(ctx context.Context, key core.PeriodKey) (core.StatsSummary, error) {
	s, err := c.table(ctx)
	if err != nil {
		return core.StatsSummary{}, err
	}
	return s.ReadStatsSummary(ctx, key)
}

func (c *Client) ReadBreakdowns(ctx context.Context, key core.PeriodKey) (core.Breakdown, core.Breakdown, error) {
	s, err := c.table(ctx)
	if err != nil {
		return core.Breakdown{}, core.Breakdown{}, err
	}
	return s.ReadBreakdowns(ctx, key)
}

func (c *Client) ListPeriods(ctx context.Context) ([]core.PeriodKey, error) {
	s, err := c.table(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListPeriods(ctx)
}
