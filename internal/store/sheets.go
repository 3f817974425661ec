package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ClientSource supplies an authorized HTTP client for the Sheets API. It
// returns an error wrapping domain.ErrMissingCredential when no credential
// has been granted yet.
type ClientSource interface {
	Client(ctx context.Context) (*http.Client, error)
}

// SheetsTable is a Table backed by the Google Sheets v4 values API.
type SheetsTable struct {
	clients ClientSource
	timeout time.Duration
	opts    []option.ClientOption
}

// NewSheetsTable creates a SheetsTable. Each call is bounded by timeout
// when it is positive. Extra client options are appended after the HTTP
// client option (tests use option.WithEndpoint).
func NewSheetsTable(clients ClientSource, timeout time.Duration, opts ...option.ClientOption) *SheetsTable {
	return &SheetsTable{
		clients: clients,
		timeout: timeout,
		opts:    opts,
	}
}

func (t *SheetsTable) service(ctx context.Context) (*sheets.Service, error) {
	client, err := t.clients.Client(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, t.opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create sheets service: %v", domain.ErrRemoteStore, err)
	}
	return srv, nil
}

func (t *SheetsTable) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

// Get fetches every row of the range as unformatted values, with dates as
// serial numbers.
func (t *SheetsTable) Get(ctx context.Context, spreadsheetID string, rng Range) ([]Row, error) {
	srv, err := t.service(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, string(rng)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("get", rng, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: nil get response for %s", domain.ErrRemoteStore, rng)
	}

	rows := make([]Row, len(resp.Values))
	for i, v := range resp.Values {
		rows[i] = Row(v)
	}
	return rows, nil
}

// Append adds rows after the table found in the range, interpreting values
// as if typed by a user.
func (t *SheetsTable) Append(ctx context.Context, spreadsheetID string, rng Range, rows []Row, mode InsertMode) (*AppendResult, error) {
	srv, err := t.service(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any(r)
	}

	resp, err := srv.Spreadsheets.Values.Append(spreadsheetID, string(rng), &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption(string(mode)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("append", rng, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: nil append response for %s", domain.ErrRemoteStore, rng)
	}

	result := &AppendResult{}
	if resp.Updates != nil {
		result.UpdatedRange = resp.Updates.UpdatedRange
		result.UpdatedRows = resp.Updates.UpdatedRows
	}
	return result, nil
}

// Clear erases the values of the range, keeping the range itself.
func (t *SheetsTable) Clear(ctx context.Context, spreadsheetID string, rng Range) (*ClearResult, error) {
	srv, err := t.service(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	resp, err := srv.Spreadsheets.Values.Clear(spreadsheetID, string(rng), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("clear", rng, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: nil clear response for %s", domain.ErrRemoteStore, rng)
	}
	return &ClearResult{ClearedRange: resp.ClearedRange}, nil
}

// remoteErr wraps a Sheets call failure. Credential failures surfaced by
// the HTTP client pass through unchanged so callers can re-authorize.
func remoteErr(op string, rng Range, err error) error {
	if errors.Is(err, domain.ErrMissingCredential) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteStore, op, rng, err)
}
