package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/Hacka25/athenian-trading/internal/store"
)

const testSheet = "sheet-1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingTable counts Get calls per range on top of a MemoryTable.
type countingTable struct {
	*store.MemoryTable
	gets map[store.Range]int
}

func (c *countingTable) Get(ctx context.Context, id string, rng store.Range) ([]store.Row, error) {
	c.gets[rng]++
	return c.MemoryTable.Get(ctx, id, rng)
}

func newTestService(t *testing.T) (*TradingService, *countingTable) {
	t.Helper()
	table := &countingTable{MemoryTable: store.NewMemoryTable(), gets: make(map[store.Range]int)}
	table.Seed(testSheet, store.UsersRange, []store.Row{
		{"A", "pa", "Ann", "trader"},
		{"B", "pb", "Ben", "trader"},
		{"legacy"},
	})
	table.Seed(testSheet, store.UnitsRange, []store.Row{{"Rice"}, {"Labor"}})
	table.Seed(testSheet, store.AllocationsRange, []store.Row{
		{"A", 10.0, "Rice"},
		{"B", 5.0, "Labor"},
	})
	ledger := store.NewLedgerStore(table, testSheet, store.DefaultRanges(), time.UTC, discardLogger())
	return NewTradingService(ledger, discardLogger()), table
}

func validRequest() AddTradeRequest {
	return AddTradeRequest{
		BuyerName:    "A",
		BuyerAmount:  3,
		BuyerUnit:    "Rice",
		SellerName:   "B",
		SellerAmount: 2,
		SellerUnit:   "Labor",
	}
}

func TestListUsers_CachesAfterFirstRead(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		users, err := svc.ListUsers(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("expected 3 users, got %d", len(users))
		}
	}
	if table.gets[store.UsersRange] != 1 {
		t.Fatalf("expected 1 remote read, got %d", table.gets[store.UsersRange])
	}
}

func TestRefreshUsers_PicksUpChanges(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()
	_, _ = svc.ListUsers(ctx)

	table.Seed(testSheet, store.UsersRange, []store.Row{{"C", "pc", "Cy", "trader"}})

	stale, _ := svc.ListUsers(ctx)
	if len(stale) != 3 {
		t.Fatalf("expected stale cached users before refresh, got %d", len(stale))
	}

	refreshed, err := svc.RefreshUsers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refreshed) != 1 || refreshed[0].Username != "C" {
		t.Fatalf("expected refreshed users [C], got %v", refreshed)
	}

	reads := table.gets[store.UsersRange]
	users, _ := svc.ListUsers(ctx)
	if table.gets[store.UsersRange] != reads {
		t.Fatal("ListUsers after refresh must not read remotely")
	}
	if len(users) != 1 || users[0].Username != "C" {
		t.Fatalf("expected [C], got %v", users)
	}
}

func TestRefreshUnits(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()
	_, _ = svc.ListUnits(ctx)

	table.Seed(testSheet, store.UnitsRange, []store.Row{{"Rice"}, {"Labor"}, {"Wool"}})
	units, err := svc.RefreshUnits(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}
}

func TestAddTrade_RecordsAndSummarizes(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()

	receipt, err := svc.AddTrade(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Summary != "A traded 3 Rice for 2 Labor with B" {
		t.Fatalf("unexpected summary %q", receipt.Summary)
	}

	rows, _ := table.MemoryTable.Get(ctx, testSheet, store.TradesRange)
	if len(rows) != 1 || len(rows[0]) != 7 {
		t.Fatalf("expected one 7-column trade row, got %v", rows)
	}
}

func TestAddTrade_TrimsNames(t *testing.T) {
	svc, _ := newTestService(t)
	req := validRequest()
	req.BuyerName = "  A "
	req.SellerUnit = "Labor  "

	if _, err := svc.AddTrade(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddTrade_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AddTradeRequest)
		message string
	}{
		{"same user", func(r *AddTradeRequest) { r.SellerName = "A" }, "buyer and seller must be different users"},
		{"same unit", func(r *AddTradeRequest) { r.SellerUnit = "Rice" }, "buyer and seller units must be different"},
		{"zero buyer amount", func(r *AddTradeRequest) { r.BuyerAmount = 0 }, "amounts must be positive"},
		{"negative seller amount", func(r *AddTradeRequest) { r.SellerAmount = -1 }, "amounts must be positive"},
		{"missing buyer", func(r *AddTradeRequest) { r.BuyerName = " " }, "missing buyer"},
		{"missing seller unit", func(r *AddTradeRequest) { r.SellerUnit = "" }, "missing seller unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, table := newTestService(t)
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.AddTrade(context.Background(), req)
			var valErr *domain.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, valErr.Message)
			}
			rows, _ := table.MemoryTable.Get(context.Background(), testSheet, store.TradesRange)
			if len(rows) != 0 {
				t.Fatal("invalid trade must not be appended")
			}
		})
	}
}

func TestAddTrade_UnknownReference(t *testing.T) {
	svc, _ := newTestService(t)
	req := validRequest()
	req.SellerName = "zeus"

	_, err := svc.AddTrade(context.Background(), req)
	var refErr *domain.UnknownReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected UnknownReferenceError, got %v", err)
	}
	if err.Error() != "missing user: zeus" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestComputeBalances_TwoUserBarter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddTrade(ctx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	balances, err := svc.ComputeBalances(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 users, got %d", len(balances))
	}

	got := make(map[string]string)
	for _, ub := range balances {
		var parts []string
		for _, h := range ub.Holdings {
			parts = append(parts, h.String())
		}
		got[ub.User.Username] = strings.Join(parts, ", ")
	}
	if got["A"] != "2 Labor, 7 Rice" {
		t.Fatalf("expected A to hold 2 Labor, 7 Rice, got %q", got["A"])
	}
	if got["B"] != "3 Labor, 3 Rice" {
		t.Fatalf("expected B to hold 3 Labor, 3 Rice, got %q", got["B"])
	}
}

func TestComputeBalances_UnknownReferenceInLedger(t *testing.T) {
	svc, table := newTestService(t)
	table.Seed(testSheet, store.AllocationsRange, []store.Row{{"zeus", 1.0, "Rice"}})

	_, err := svc.ComputeBalances(context.Background())
	var refErr *domain.UnknownReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected UnknownReferenceError, got %v", err)
	}
}

func TestWriteBalances(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()
	table.Seed(testSheet, store.BalancesRange, []store.Row{{"stale", 1.0, "Rice"}, {"", 1.0, "Labor"}, {"old", 1.0, "Rice"}})
	if _, err := svc.AddTrade(ctx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := svc.WriteBalances(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 rows written, got %d", n)
	}

	rows, _ := table.MemoryTable.Get(ctx, testSheet, store.BalancesRange)
	want := []store.Row{
		{"A", int64(2), "Labor"},
		{"", int64(7), "Rice"},
		{"B", int64(3), "Labor"},
		{"", int64(3), "Rice"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("row %d: expected %v, got %v", i, want[i], rows[i])
			}
		}
	}
}

func TestRandomTrade(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		receipt, err := svc.RandomTrade(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tr := receipt.Trade
		if tr.Buyer == tr.Seller {
			t.Fatalf("random trade between the same user: %s", receipt.Summary)
		}
		if tr.BuyerAmount.Unit == tr.SellerAmount.Unit {
			t.Fatalf("random trade in a single unit: %s", receipt.Summary)
		}
		for _, a := range []int64{tr.BuyerAmount.Amount, tr.SellerAmount.Amount} {
			if a < 1 || a > maxRandomAmount {
				t.Fatalf("amount %d out of range", a)
			}
		}
	}

	rows, _ := table.MemoryTable.Get(ctx, testSheet, store.TradesRange)
	if len(rows) != 20 {
		t.Fatalf("expected 20 trade rows, got %d", len(rows))
	}
}

func TestRandomTrade_DeterministicPick(t *testing.T) {
	svc, _ := newTestService(t)
	// Always 0: buyer index 0, seller index 0 shifted to 1.
	svc.intn = func(int) int { return 0 }

	receipt, err := svc.RandomTrade(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Summary != "A traded 1 Rice for 1 Labor with B" {
		t.Fatalf("unexpected summary %q", receipt.Summary)
	}
}

func TestRandomTrade_NotEnoughUnits(t *testing.T) {
	svc, table := newTestService(t)
	table.Seed(testSheet, store.UnitsRange, []store.Row{{"Rice"}})

	if _, err := svc.RandomTrade(context.Background()); !errors.Is(err, domain.ErrNotEnoughUnits) {
		t.Fatalf("expected ErrNotEnoughUnits, got %v", err)
	}
}

func TestRandomTrade_NotEnoughUsers(t *testing.T) {
	svc, table := newTestService(t)
	table.Seed(testSheet, store.UsersRange, []store.Row{{"A"}})

	if _, err := svc.RandomTrade(context.Background()); !errors.Is(err, domain.ErrNotEnoughUsers) {
		t.Fatalf("expected ErrNotEnoughUsers, got %v", err)
	}
}

func TestClearTrades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.AddTrade(ctx, validRequest())

	if _, err := svc.ClearTrades(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trades, err := svc.ListTrades(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
}

func TestListAllocations(t *testing.T) {
	svc, _ := newTestService(t)

	allocs, err := svc.ListAllocations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allocs) != 2 || allocs[0].Amount.String() != "10 Rice" {
		t.Fatalf("unexpected allocations %+v", allocs)
	}
}

func TestBalanceFor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ub, err := svc.BalanceFor(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ub.Holdings) != 1 || ub.Holdings[0].String() != "10 Rice" {
		t.Fatalf("unexpected holdings %+v", ub.Holdings)
	}

	empty, err := svc.BalanceFor(ctx, "legacy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.User.Username != "legacy" || len(empty.Holdings) != 0 {
		t.Fatalf("expected empty balance for legacy, got %+v", empty)
	}

	if _, err := svc.BalanceFor(ctx, "zeus"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		ok       bool
	}{
		{"exact", "A", "pa", true},
		{"case-insensitive username", "a", "pa", true},
		{"wrong password", "A", "PA", false},
		{"unknown user", "zeus", "pa", false},
		{"user without password", "legacy", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok, err := svc.Authenticate(ctx, tt.username, tt.password)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && user.Username != "A" {
				t.Fatalf("expected canonical username A, got %q", user.Username)
			}
		})
	}
}

func TestRemoteFailureIsNotCached(t *testing.T) {
	table := &failingOnceTable{MemoryTable: store.NewMemoryTable()}
	table.Seed(testSheet, store.UsersRange, []store.Row{{"A"}})
	ledger := store.NewLedgerStore(table, testSheet, store.DefaultRanges(), time.UTC, discardLogger())
	svc := NewTradingService(ledger, discardLogger())

	if _, err := svc.ListUsers(context.Background()); !errors.Is(err, domain.ErrRemoteStore) {
		t.Fatalf("expected ErrRemoteStore, got %v", err)
	}
	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user after recovery, got %d", len(users))
	}
}

type failingOnceTable struct {
	*store.MemoryTable
	failed bool
}

func (f *failingOnceTable) Get(ctx context.Context, id string, rng store.Range) ([]store.Row, error) {
	if !f.failed {
		f.failed = true
		return nil, domain.ErrRemoteStore
	}
	return f.MemoryTable.Get(ctx, id, rng)
}
