// Package sheets reads and writes schedule tables through the Google Sheets
// API using service-account credentials.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jonathan/schedule-board/internal/export"
	"github.com/jonathan/schedule-board/internal/schedule"
)

// WorksheetNotFoundError reports a missing worksheet together with the
// titles that do exist, so operators can spot renames quickly.
type WorksheetNotFoundError struct {
	Worksheet string
	Available []string
}

func (e *WorksheetNotFoundError) Error() string {
	return fmt.Sprintf("worksheet %q not found; available: %s", e.Worksheet, strings.Join(e.Available, ", "))
}

// Client wraps the Sheets API for a single spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewClient builds a client authenticated with a service-account key file.
func NewClient(ctx context.Context, spreadsheetID, credentialsFile string) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// FetchTable reads the worksheet's used range into a raw table.
func (c *Client) FetchTable(ctx context.Context, worksheet string) (*schedule.Table, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		if notFound, lookupErr := c.worksheetMissing(ctx, worksheet); lookupErr == nil && notFound != nil {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to read worksheet %s: %w", worksheet, err)
	}
	return tableFromValues(resp.Values), nil
}

// WriteSchedule clears the worksheet and writes the canonical schedule back,
// header row first.
func (c *Client) WriteSchedule(ctx context.Context, worksheet string, s schedule.Schedule) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, worksheet, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear worksheet %s: %w", worksheet, err)
	}

	values := [][]interface{}{toInterfaceRow(export.Columns)}
	for _, row := range export.Rows(s) {
		values = append(values, toInterfaceRow(row))
	}

	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, worksheet+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write worksheet %s: %w", worksheet, err)
	}
	return nil
}

// worksheetMissing checks whether the worksheet exists, returning a
// WorksheetNotFoundError listing the spreadsheet's actual titles when it
// does not.
func (c *Client) worksheetMissing(ctx context.Context, worksheet string) (*WorksheetNotFoundError, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		if sh.Properties.Title == worksheet {
			return nil, nil
		}
		titles = append(titles, sh.Properties.Title)
	}
	return &WorksheetNotFoundError{Worksheet: worksheet, Available: titles}, nil
}

// tableFromValues converts the API's loosely typed cell grid into a raw
// string table. The first row is the header row.
func tableFromValues(values [][]interface{}) *schedule.Table {
	if len(values) == 0 {
		return schedule.NewTable(nil, nil)
	}
	headers := make([]string, len(values[0]))
	for i, v := range values[0] {
		headers[i] = formatCell(v)
	}
	rows := make([][]string, 0, len(values)-1)
	for _, rec := range values[1:] {
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = formatCell(v)
		}
		rows = append(rows, row)
	}
	return schedule.NewTable(headers, rows)
}

// formatCell renders an API cell value as a string. Numbers keep their
// shortest decimal form so integer IDs do not grow a trailing ".0".
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
