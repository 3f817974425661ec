package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Hacka25/athenian-trading/internal/auth"
	"github.com/Hacka25/athenian-trading/internal/config"
	"github.com/Hacka25/athenian-trading/internal/engine"
	"github.com/Hacka25/athenian-trading/internal/handler"
	"github.com/Hacka25/athenian-trading/internal/logging"
	"github.com/Hacka25/athenian-trading/internal/service"
	"github.com/Hacka25/athenian-trading/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	envFile := flag.String("env", ".env", "Dotenv file to load before reading the environment")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load dotenv", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// Store backend. The Google Sheets backend also provides the authorizer
	// behind the /oauth routes.
	var (
		table store.Table
		authz handler.Authorizer
	)
	switch cfg.StoreBackend {
	case config.BackendSheets:
		redirectURL := strings.TrimRight(cfg.BaseURL, "/") + "/oauth/callback"
		creds, err := auth.LoadCredentials(cfg.AuthCredentials, redirectURL, cfg.TokensDir, logger)
		if err != nil {
			logger.Error("failed to load credentials", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if !creds.Authorized() {
			logger.Warn("spreadsheet not authorized yet",
				slog.String("authorize_url", strings.TrimRight(cfg.BaseURL, "/")+"/oauth/authorize"))
		}
		table = store.NewSheetsTable(creds, cfg.SheetsTimeout)
		authz = creds
	case config.BackendMemory:
		mem := store.NewMemoryTable()
		if cfg.MemorySeed != "" {
			if err := loadSeed(mem, cfg.SpreadsheetID, cfg.MemorySeed); err != nil {
				logger.Error("failed to load memory seed", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
		table = mem
	}

	ledger := store.NewLedgerStore(table, cfg.SpreadsheetID, ledgerRanges(cfg), cfg.TimeZone, logger)
	svc := service.NewTradingService(ledger, logger)

	// Router.
	router := handler.NewRouter(svc, authz, handler.RouterConfig{
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
		BaseURL:       cfg.BaseURL,
	}, logger)

	// Periodic balance write-back, stopped by cancel on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.BalanceRecordInterval > 0 {
		recorder := engine.NewBalanceRecorder(cfg.BalanceRecordInterval, svc, logger)
		recorder.Start(ctx)
	}

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("backend", cfg.StoreBackend),
			slog.String("spreadsheet_id", cfg.SpreadsheetID),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}

func loadSeed(mem *store.MemoryTable, spreadsheetID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return mem.LoadSeed(spreadsheetID, f)
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
