package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"txdash/internal/core"
	"txdash/internal/dataset"
)

// DefaultRange is read when no range is configured.
const DefaultRange = "Transactions!A:H"

var _ dataset.Source = (*Client)(nil)

// Client reads the transaction dataset from a Google Sheets range whose first
// row holds the column headers.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
}

// Options configure a Client. CredentialsJSON takes precedence over CredentialsFile.
type Options struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a read-only Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	rng := strings.TrimSpace(opts.Range)
	if rng == "" {
		rng = DefaultRange
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: id, readRange: rng}, nil
}

// newSheetsService falls back to GOOGLE_APPLICATION_CREDENTIALS when neither
// inline JSON nor a file path is configured.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	switch {
	case inline != "":
		credentials = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentials),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// FetchAll reads the whole configured range on every call.
func (c *Client) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.readRange, err)
	}
	return parseTransactions(resp.Values)
}
