// Package google mirrors records into a Google Sheets spreadsheet through
// the Sheets v4 API, authenticated as a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	mirror "homefin/internal/sheets"
)

var errNoService = errors.New("sheets service not initialized")

// Credentials locates the service account key. JSON wins over File; with
// neither, GOOGLE_APPLICATION_CREDENTIALS is read.
type Credentials struct {
	JSON string
	File string
}

func (c Credentials) load() ([]byte, error) {
	if js := strings.TrimSpace(c.JSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(c.File)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// Client writes rows into tabs of one spreadsheet, keyed by column A.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

var _ mirror.Mirror = (*Client)(nil)

func New(ctx context.Context, spreadsheetID string, creds Credentials) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	key, err := creds.load()
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(key),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) values() *sheets.SpreadsheetsValuesService {
	return c.svc.Spreadsheets.Values
}

func (c *Client) keyColumn(ctx context.Context, tab string) ([][]any, error) {
	rng := quoteTab(tab) + "!A:A"
	resp, err := c.values().Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) put(ctx context.Context, rng string, rows [][]any) error {
	_, err := c.values().Update(c.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) clear(ctx context.Context, rng string) error {
	if _, err := c.values().Clear(c.spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// UpsertRow overwrites the row keyed row.Key or appends it. An empty tab
// gets its header first.
func (c *Client) UpsertRow(ctx context.Context, tab mirror.Tab, row mirror.Row) error {
	if c.svc == nil {
		return errNoService
	}
	keys, err := c.keyColumn(ctx, tab.Name)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		if err := c.put(ctx, rowRange(tab.Name, 1, len(tab.Header)), [][]any{headerCells(tab.Header)}); err != nil {
			return err
		}
		keys = [][]any{{tab.Header[0]}}
	}

	n := findRow(keys, row.Key)
	if n == 0 {
		n = len(keys) + 1
	}
	cells := rowCells(row)
	if err := c.put(ctx, rowRange(tab.Name, n, len(cells)), [][]any{cells}); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Upserted sheet row", "tab", tab.Name, "key", row.Key, "row", n)
	return nil
}

// DeleteRow blanks the row keyed key; rows below keep their position.
func (c *Client) DeleteRow(ctx context.Context, tab mirror.Tab, key string) error {
	if c.svc == nil {
		return errNoService
	}
	keys, err := c.keyColumn(ctx, tab.Name)
	if err != nil {
		return err
	}
	n := findRow(keys, key)
	if n == 0 {
		return nil
	}
	if err := c.clear(ctx, rowRange(tab.Name, n, len(tab.Header))); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Cleared sheet row", "tab", tab.Name, "key", key, "row", n)
	return nil
}

// ReplaceAll rewrites the whole tab: header then rows from A1.
func (c *Client) ReplaceAll(ctx context.Context, tab mirror.Tab, rows []mirror.Row) error {
	if c.svc == nil {
		return errNoService
	}
	if err := c.clear(ctx, quoteTab(tab.Name)); err != nil {
		return err
	}
	grid := make([][]any, 0, len(rows)+1)
	grid = append(grid, headerCells(tab.Header))
	for _, r := range rows {
		grid = append(grid, rowCells(r))
	}
	if err := c.put(ctx, quoteTab(tab.Name)+"!A1", grid); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Rewrote sheet tab", "tab", tab.Name, "rows", len(rows))
	return nil
}
