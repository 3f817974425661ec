package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
)

const tradeColumns = 7

// RowMapper converts one row into zero or more records. Returning an error
// wrapping domain.ErrMalformedRow marks the row as skippable; any other
// error aborts the query.
type RowMapper[R any] func(row Row) ([]R, error)

// LedgerStore translates between domain records and spreadsheet rows for
// one spreadsheet.
type LedgerStore struct {
	table         Table
	spreadsheetID string
	ranges        Ranges
	loc           *time.Location
	now           func() time.Time
	logger        *slog.Logger
}

// NewLedgerStore creates a LedgerStore reading and writing the given named
// ranges. Trade timestamps are written and read as wall clock time in loc.
func NewLedgerStore(table Table, spreadsheetID string, ranges Ranges, loc *time.Location, logger *slog.Logger) *LedgerStore {
	if loc == nil {
		loc = time.Local
	}
	return &LedgerStore{
		table:         table,
		spreadsheetID: spreadsheetID,
		ranges:        ranges,
		loc:           loc,
		now:           time.Now,
		logger:        logger,
	}
}

// Query fetches every row of rng and concatenates the mapper's output.
// Malformed rows are logged and skipped.
func Query[R any](ctx context.Context, s *LedgerStore, rng Range, mapper RowMapper[R]) ([]R, error) {
	rows, err := s.table.Get(ctx, s.spreadsheetID, rng)
	if err != nil {
		return nil, err
	}

	result := make([]R, 0, len(rows))
	for i, row := range rows {
		records, err := mapper(row)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedRow) {
				s.logger.Warn("skipping malformed row",
					slog.String("range", string(rng)),
					slog.Int("row", i+1),
					slog.Int("width", len(row)),
					slog.String("error", err.Error()),
				)
				continue
			}
			return nil, fmt.Errorf("%s row %d: %w", rng, i+1, err)
		}
		result = append(result, records...)
	}
	return result, nil
}

// Append adds rows to rng using the given insert mode.
func (s *LedgerStore) Append(ctx context.Context, rng Range, rows []Row, mode InsertMode) (*AppendResult, error) {
	return s.table.Append(ctx, s.spreadsheetID, rng, rows, mode)
}

// Clear erases rng.
func (s *LedgerStore) Clear(ctx context.Context, rng Range) (*ClearResult, error) {
	return s.table.Clear(ctx, s.spreadsheetID, rng)
}

// FetchUsers reads the Users range: username, password, full name and
// role. The values API omits trailing blank cells, so short rows read the
// missing columns as empty.
func (s *LedgerStore) FetchUsers(ctx context.Context) ([]domain.User, error) {
	return Query(ctx, s, s.ranges.Users, func(row Row) ([]domain.User, error) {
		u := domain.User{
			Username: cellString(row, 0),
			Password: cellString(row, 1),
			FullName: cellString(row, 2),
			Role:     cellString(row, 3),
		}
		if u.Username == "" {
			return nil, malformed("blank username")
		}
		return []domain.User{u}, nil
	})
}

// FetchUnits reads the Units range; the first column is the description.
func (s *LedgerStore) FetchUnits(ctx context.Context) ([]domain.Unit, error) {
	return Query(ctx, s, s.ranges.Units, func(row Row) ([]domain.Unit, error) {
		desc := cellString(row, 0)
		if desc == "" {
			return nil, malformed("blank unit description")
		}
		return []domain.Unit{{Desc: desc}}, nil
	})
}

// Allocations reads opening balances as single-sided ledger entries.
func (s *LedgerStore) Allocations(ctx context.Context, dir *domain.Directory) ([]domain.HalfTrade, error) {
	return Query(ctx, s, s.ranges.Allocations, func(row Row) ([]domain.HalfTrade, error) {
		if len(row) < 3 {
			return nil, malformed("allocation row has %d columns", len(row))
		}
		amount, err := cellInt(row, 1)
		if err != nil {
			return nil, err
		}
		user, err := dir.User(cellString(row, 0))
		if err != nil {
			return nil, err
		}
		unit, err := dir.Unit(cellString(row, 2))
		if err != nil {
			return nil, err
		}
		return []domain.HalfTrade{{
			User:   user,
			Amount: domain.UnitAmount{Amount: amount, Unit: unit},
		}}, nil
	})
}

// Trades reads the two-sided trade ledger. Rows that are not exactly seven
// columns wide are skipped.
func (s *LedgerStore) Trades(ctx context.Context, dir *domain.Directory) ([]domain.Trade, error) {
	return Query(ctx, s, s.ranges.Trades, func(row Row) ([]domain.Trade, error) {
		if len(row) != tradeColumns {
			return nil, malformed("trade row has %d columns, want %d", len(row), tradeColumns)
		}
		buyerAmount, err := cellInt(row, 2)
		if err != nil {
			return nil, err
		}
		sellerAmount, err := cellInt(row, 5)
		if err != nil {
			return nil, err
		}

		buyer, err := dir.User(cellString(row, 1))
		if err != nil {
			return nil, err
		}
		buyerUnit, err := dir.Unit(cellString(row, 3))
		if err != nil {
			return nil, err
		}
		seller, err := dir.User(cellString(row, 4))
		if err != nil {
			return nil, err
		}
		sellerUnit, err := dir.Unit(cellString(row, 6))
		if err != nil {
			return nil, err
		}

		return []domain.Trade{{
			Timestamp:    cellTime(row, 0, s.loc),
			Buyer:        buyer,
			BuyerAmount:  domain.UnitAmount{Amount: buyerAmount, Unit: buyerUnit},
			Seller:       seller,
			SellerAmount: domain.UnitAmount{Amount: sellerAmount, Unit: sellerUnit},
		}}, nil
	})
}

// AppendTrade records a trade stamped with the current time. Rows are
// inserted so existing history is never overwritten. The returned trade
// carries the timestamp that was written.
func (s *LedgerStore) AppendTrade(ctx context.Context, t domain.Trade) (domain.Trade, *AppendResult, error) {
	t.Timestamp = s.now().In(s.loc).Truncate(time.Second)
	row := Row{
		domain.SerialDateTime(t.Timestamp),
		t.Buyer.Username, t.BuyerAmount.Amount, t.BuyerAmount.Unit.Desc,
		t.Seller.Username, t.SellerAmount.Amount, t.SellerAmount.Unit.Desc,
	}
	res, err := s.table.Append(ctx, s.spreadsheetID, s.ranges.Trades, []Row{row}, InsertRows)
	if err != nil {
		return t, nil, err
	}
	return t, res, nil
}

// ClearTrades erases the trade ledger.
func (s *LedgerStore) ClearTrades(ctx context.Context) (*ClearResult, error) {
	return s.table.Clear(ctx, s.spreadsheetID, s.ranges.Trades)
}

// ReplaceBalances clears the Balances range and writes rows into it with
// Overwrite so no stale trailing rows survive. The two calls are not
// atomic: a reader between them sees an empty range.
func (s *LedgerStore) ReplaceBalances(ctx context.Context, rows []Row) (*AppendResult, error) {
	if _, err := s.table.Clear(ctx, s.spreadsheetID, s.ranges.Balances); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &AppendResult{}, nil
	}
	return s.table.Append(ctx, s.spreadsheetID, s.ranges.Balances, rows, Overwrite)
}
