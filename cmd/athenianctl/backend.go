package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Hacka25/athenian-trading/internal/auth"
	"github.com/Hacka25/athenian-trading/internal/config"
	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/Hacka25/athenian-trading/internal/logging"
	"github.com/Hacka25/athenian-trading/internal/service"
	"github.com/Hacka25/athenian-trading/internal/store"
)

var envFile = flag.String("env", ".env", "Dotenv file to load before reading the environment")

// out receives command output.
var out io.Writer = os.Stdout

// backend is what a command works against.
type backend struct {
	svc *service.TradingService
	// creds is nil for the memory store.
	creds *auth.Credentials
}

// openBackend builds the backend from the environment.
var openBackend = func(_ context.Context) (*backend, error) {
	if err := config.LoadDotEnv(*envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, "text")

	b := &backend{}
	var table store.Table
	switch cfg.StoreBackend {
	case config.BackendSheets:
		redirectURL := strings.TrimRight(cfg.BaseURL, "/") + "/oauth/callback"
		creds, err := auth.LoadCredentials(cfg.AuthCredentials, redirectURL, cfg.TokensDir, logger)
		if err != nil {
			return nil, err
		}
		b.creds = creds
		table = store.NewSheetsTable(creds, cfg.SheetsTimeout)
	case config.BackendMemory:
		mem := store.NewMemoryTable()
		if cfg.MemorySeed != "" {
			f, err := os.Open(cfg.MemorySeed)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			if err := mem.LoadSeed(cfg.SpreadsheetID, f); err != nil {
				return nil, err
			}
		}
		table = mem
	}

	ledger := store.NewLedgerStore(table, cfg.SpreadsheetID, ledgerRanges(cfg), cfg.TimeZone, logger)
	b.svc = service.NewTradingService(ledger, logger)
	return b, nil
}

var errNoCredentials = errors.New("the memory store needs no authorization")

// fail prints err to stderr, with a hint when the spreadsheet is not authorized.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, domain.ErrMissingCredential) {
		fmt.Fprintln(os.Stderr, "Run 'athenianctl authorize' to grant spreadsheet access.")
	}
}

// ledgerRanges returns the configured named ranges.
func ledgerRanges(cfg *config.Config) store.Ranges {
	return store.Ranges{
		Users:       store.Range(cfg.UsersRange),
		Units:       store.Range(cfg.UnitsRange),
		Allocations: store.Range(cfg.AllocationsRange),
		Trades:      store.Range(cfg.TradesRange),
		Balances:    store.Range(cfg.BalancesRange),
	}
}
