package store

import "context"

// Row is one spreadsheet row: an ordered list of untyped cells. Cells are
// strings or numbers (float64 when decoded from JSON).
type Row []any

// Range names a region of the spreadsheet.
type Range string

// Default named ranges of the classroom spreadsheet.
const (
	UsersRange       Range = "UsersRange"
	UnitsRange       Range = "GoodsAndServicesRange"
	AllocationsRange Range = "AllocationsRange"
	TradesRange      Range = "TradesRange"
	BalancesRange    Range = "BalancesRange"
)

// Ranges maps each ledger table to the named range holding it.
type Ranges struct {
	Users       Range
	Units       Range
	Allocations Range
	Trades      Range
	Balances    Range
}

// DefaultRanges returns the range names used by the classroom spreadsheet.
func DefaultRanges() Ranges {
	return Ranges{
		Users:       UsersRange,
		Units:       UnitsRange,
		Allocations: AllocationsRange,
		Trades:      TradesRange,
		Balances:    BalancesRange,
	}
}

// InsertMode controls how appended rows interact with existing cells.
type InsertMode string

const (
	// InsertRows pushes existing rows down to make room for the new ones.
	InsertRows InsertMode = "INSERT_ROWS"
	// Overwrite writes into the cells following the table, replacing
	// whatever is there.
	Overwrite InsertMode = "OVERWRITE"
)

// AppendResult acknowledges an Append call.
type AppendResult struct {
	UpdatedRange string
	UpdatedRows  int64
}

// ClearResult acknowledges a Clear call.
type ClearResult struct {
	ClearedRange string
}

// Table is the remote tabular store addressed by (spreadsheet id, range).
// Implementations must return an error wrapping domain.ErrRemoteStore for
// any failed or empty response, and domain.ErrMissingCredential when no
// authorization is available.
type Table interface {
	Get(ctx context.Context, spreadsheetID string, rng Range) ([]Row, error)
	Append(ctx context.Context, spreadsheetID string, rng Range, rows []Row, mode InsertMode) (*AppendResult, error)
	Clear(ctx context.Context, spreadsheetID string, rng Range) (*ClearResult, error)
}
