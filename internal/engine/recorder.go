package engine

import (
	"context"
	"log/slog"
	"time"
)

// BalanceWriter recomputes balances and writes them to the Balances range.
type BalanceWriter interface {
	WriteBalances(ctx context.Context) (int64, error)
}

// BalanceRecorder periodically rewrites the Balances range so the
// spreadsheet view stays close to the ledger between admin requests.
type BalanceRecorder struct {
	interval time.Duration
	writer   BalanceWriter
	logger   *slog.Logger
}

// NewBalanceRecorder creates a BalanceRecorder that writes every interval.
func NewBalanceRecorder(interval time.Duration, writer BalanceWriter, logger *slog.Logger) *BalanceRecorder {
	return &BalanceRecorder{
		interval: interval,
		writer:   writer,
		logger:   logger,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval and records balances. It stops when ctx is cancelled.
func (r *BalanceRecorder) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick(ctx)
			}
		}
	}()
}

// tick writes balances once. Failures are logged and retried on the next
// tick.
func (r *BalanceRecorder) tick(ctx context.Context) {
	start := time.Now()
	rows, err := r.writer.WriteBalances(ctx)
	if err != nil {
		r.logger.Error("record balances failed", slog.String("error", err.Error()))
		return
	}
	r.logger.Info("balances recorded",
		slog.Int64("rows", rows),
		slog.Duration("duration", time.Since(start)),
	)
}
