package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Hacka25/athenian-trading/internal/service"
	"github.com/Hacka25/athenian-trading/internal/store"
	"github.com/google/subcommands"
)

const testSheet = "memory"

func seededTable() *store.MemoryTable {
	table := store.NewMemoryTable()
	table.Seed(testSheet, store.UsersRange, []store.Row{
		{"alice", "pa", "Alice A.", "trader"},
		{"bob", "pb", "Bob B.", "trader"},
	})
	table.Seed(testSheet, store.UnitsRange, []store.Row{{"Rice"}, {"Labor"}})
	table.Seed(testSheet, store.AllocationsRange, []store.Row{
		{"alice", 10.0, "Rice"},
		{"bob", 5.0, "Labor"},
	})
	return table
}

// run executes athenianctl with args against table and returns its output.
func run(t *testing.T, table *store.MemoryTable, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := store.NewLedgerStore(table, testSheet, store.DefaultRanges(), time.UTC, logger)
	svc := service.NewTradingService(ledger, logger)

	prevOpen, prevOut := openBackend, out
	t.Cleanup(func() { openBackend, out = prevOpen, prevOut })
	openBackend = func(context.Context) (*backend, error) {
		return &backend{svc: svc}, nil
	}
	var buf bytes.Buffer
	out = &buf

	fs := flag.NewFlagSet("athenianctl", flag.ContinueOnError)
	c := subcommands.NewCommander(fs, "athenianctl")
	c.Error = io.Discard
	register(c)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	status := c.Execute(context.Background())
	return buf.String(), status
}

func TestUsers(t *testing.T) {
	got, status := run(t, seededTable(), "users")
	if status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	for _, want := range []string{"alice", "Alice A.", "bob", "Bob B."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "pb") {
		t.Errorf("passwords printed:\n%s", got)
	}
}

func TestTradeThenBalances(t *testing.T) {
	table := seededTable()

	got, status := run(t, table, "trade",
		"-buyer", "alice", "-buyer-amount", "3", "-buyer-unit", "Rice",
		"-seller", "bob", "-seller-amount", "2", "-seller-unit", "Labor")
	if status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	if !strings.Contains(got, "alice traded 3 Rice for 2 Labor with bob") {
		t.Fatalf("unexpected output %q", got)
	}

	got, status = run(t, table, "balances", "-record")
	if status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	if !strings.Contains(got, "Recorded balances to") {
		t.Fatalf("expected record confirmation:\n%s", got)
	}
	rows, _ := table.Get(context.Background(), testSheet, store.BalancesRange)
	if len(rows) != 4 {
		t.Fatalf("expected 4 balance rows, got %d", len(rows))
	}
}

func TestTradeRejectsSelfTrade(t *testing.T) {
	_, status := run(t, seededTable(), "trade",
		"-buyer", "alice", "-buyer-amount", "1", "-buyer-unit", "Rice",
		"-seller", "alice", "-seller-amount", "1", "-seller-unit", "Labor")
	if status != subcommands.ExitFailure {
		t.Fatalf("expected failure, got %v", status)
	}
}

func TestRandomTradeAndClear(t *testing.T) {
	table := seededTable()

	got, status := run(t, table, "random-trade", "-n", "3")
	if status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	if n := strings.Count(got, " traded "); n != 3 {
		t.Fatalf("expected 3 summaries, got %d:\n%s", n, got)
	}

	if _, status := run(t, table, "clear-trades"); status != subcommands.ExitUsageError {
		t.Fatalf("expected usage error without -yes, got %v", status)
	}
	if _, status := run(t, table, "clear-trades", "-yes"); status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	rows, _ := table.Get(context.Background(), testSheet, store.TradesRange)
	if len(rows) != 0 {
		t.Fatalf("expected no trades, got %d", len(rows))
	}
}

func TestBalanceForUser(t *testing.T) {
	got, status := run(t, seededTable(), "balances", "-user", "bob")
	if status != subcommands.ExitSuccess {
		t.Fatalf("expected success, got %v", status)
	}
	if !strings.Contains(got, "Bob B.") || strings.Contains(got, "Alice A.") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestAuthorizeNeedsSheetsBackend(t *testing.T) {
	if _, status := run(t, seededTable(), "authorize"); status != subcommands.ExitFailure {
		t.Fatalf("expected failure for the memory store, got %v", status)
	}
}
