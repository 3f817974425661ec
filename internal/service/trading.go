package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/Hacka25/athenian-trading/internal/cache"
	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/Hacka25/athenian-trading/internal/engine"
	"github.com/Hacka25/athenian-trading/internal/store"
	"github.com/go-playground/validator/v10"
)

const maxRandomAmount = 10

// TradeReceipt acknowledges a recorded trade.
type TradeReceipt struct {
	Trade        domain.Trade
	Summary      string
	UpdatedRange string
}

// TradingService is the core API used by the HTTP layer and the admin CLI.
// Users and units are served from read-through caches; allocations and
// trades are read from the ledger on every call.
type TradingService struct {
	ledger   *store.LedgerStore
	users    *cache.Cache[domain.User]
	units    *cache.Cache[domain.Unit]
	validate *validator.Validate
	intn     func(n int) int
	logger   *slog.Logger
}

// NewTradingService creates a TradingService over ledger with empty caches.
func NewTradingService(ledger *store.LedgerStore, logger *slog.Logger) *TradingService {
	s := &TradingService{
		ledger:   ledger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		intn:     rand.IntN,
		logger:   logger,
	}
	s.users = cache.New("users", s.fetchUsers, logger)
	s.units = cache.New("units", ledger.FetchUnits, logger)
	return s
}

func (s *TradingService) fetchUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.ledger.FetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	if dups := domain.DuplicateUsernames(users); len(dups) > 0 {
		s.logger.Warn("duplicate usernames, first row wins",
			slog.String("usernames", strings.Join(dups, ",")),
		)
	}
	return users, nil
}

// ListUsers returns the cached users, loading them on first use.
func (s *TradingService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.Get(ctx)
}

// RefreshUsers reloads users from the ledger.
func (s *TradingService) RefreshUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.Refresh(ctx)
}

// ListUnits returns the cached units, loading them on first use.
func (s *TradingService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	return s.units.Get(ctx)
}

// RefreshUnits reloads units from the ledger.
func (s *TradingService) RefreshUnits(ctx context.Context) ([]domain.Unit, error) {
	return s.units.Refresh(ctx)
}

// directory snapshots the cached reference lists for lookups.
func (s *TradingService) directory(ctx context.Context) (*domain.Directory, error) {
	users, err := s.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.units.Get(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewDirectory(users, units), nil
}

// ListAllocations returns the opening balances.
func (s *TradingService) ListAllocations(ctx context.Context) ([]domain.HalfTrade, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.Allocations(ctx, dir)
}

// ListTrades returns the trade ledger in row order.
func (s *TradingService) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.Trades(ctx, dir)
}

// AddTrade validates req, resolves its names against the cached users and
// units, and appends it to the trade ledger.
func (s *TradingService) AddTrade(ctx context.Context, req AddTradeRequest) (*TradeReceipt, error) {
	req = req.normalized()
	if err := s.validate.Struct(req); err != nil {
		return nil, newValidationError(err)
	}

	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	buyer, err := dir.User(req.BuyerName)
	if err != nil {
		return nil, err
	}
	seller, err := dir.User(req.SellerName)
	if err != nil {
		return nil, err
	}
	buyerUnit, err := dir.Unit(req.BuyerUnit)
	if err != nil {
		return nil, err
	}
	sellerUnit, err := dir.Unit(req.SellerUnit)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, domain.Trade{
		Buyer:        buyer,
		BuyerAmount:  domain.UnitAmount{Amount: req.BuyerAmount, Unit: buyerUnit},
		Seller:       seller,
		SellerAmount: domain.UnitAmount{Amount: req.SellerAmount, Unit: sellerUnit},
	})
}

// RandomTrade records a trade between two distinct random users over two
// distinct random units, with amounts between 1 and 10.
func (s *TradingService) RandomTrade(ctx context.Context) (*TradeReceipt, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	users, units := dir.Users(), dir.Units()
	if len(users) < 2 {
		return nil, domain.ErrNotEnoughUsers
	}
	if len(units) < 2 {
		return nil, domain.ErrNotEnoughUnits
	}

	bi, si := s.pickTwo(len(users))
	bu, su := s.pickTwo(len(units))
	return s.record(ctx, domain.Trade{
		Buyer:        users[bi],
		BuyerAmount:  domain.UnitAmount{Amount: int64(1 + s.intn(maxRandomAmount)), Unit: units[bu]},
		Seller:       users[si],
		SellerAmount: domain.UnitAmount{Amount: int64(1 + s.intn(maxRandomAmount)), Unit: units[su]},
	})
}

// pickTwo returns two distinct indexes in [0, n). n must be at least 2.
func (s *TradingService) pickTwo(n int) (int, int) {
	i := s.intn(n)
	j := s.intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

func (s *TradingService) record(ctx context.Context, t domain.Trade) (*TradeReceipt, error) {
	t, res, err := s.ledger.AppendTrade(ctx, t)
	if err != nil {
		return nil, err
	}
	summary := t.Summary()
	s.logger.Info("trade recorded",
		slog.String("summary", summary),
		slog.String("range", res.UpdatedRange),
	)
	return &TradeReceipt{
		Trade:        t,
		Summary:      summary,
		UpdatedRange: res.UpdatedRange,
	}, nil
}

// ClearTrades erases the trade ledger.
func (s *TradingService) ClearTrades(ctx context.Context) (*store.ClearResult, error) {
	res, err := s.ledger.ClearTrades(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("trade ledger cleared", slog.String("range", res.ClearedRange))
	return res, nil
}

// ComputeBalances aggregates allocations and trades into net balances.
func (s *TradingService) ComputeBalances(ctx context.Context) (domain.Balances, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := s.ledger.Allocations(ctx, dir)
	if err != nil {
		return nil, err
	}
	trades, err := s.ledger.Trades(ctx, dir)
	if err != nil {
		return nil, err
	}
	return engine.Aggregate(allocations, trades), nil
}

// RecordBalances replaces the Balances range with the flattened balances.
func (s *TradingService) RecordBalances(ctx context.Context, balances domain.Balances) (*store.AppendResult, error) {
	return s.ledger.ReplaceBalances(ctx, engine.Flatten(balances))
}

// WriteBalances computes balances and records them, returning the number
// of rows written.
func (s *TradingService) WriteBalances(ctx context.Context) (int64, error) {
	balances, err := s.ComputeBalances(ctx)
	if err != nil {
		return 0, err
	}
	res, err := s.RecordBalances(ctx, balances)
	if err != nil {
		return 0, err
	}
	return res.UpdatedRows, nil
}

// BalanceFor returns the balance of one user. A user holding nothing gets
// an empty balance.
func (s *TradingService) BalanceFor(ctx context.Context, username string) (domain.UserBalance, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return domain.UserBalance{}, err
	}
	user, err := dir.User(username)
	if err != nil {
		return domain.UserBalance{}, err
	}
	balances, err := s.ComputeBalances(ctx)
	if err != nil {
		return domain.UserBalance{}, err
	}
	if ub, ok := balances.For(user.Username); ok {
		return ub, nil
	}
	return domain.UserBalance{User: user, Holdings: []domain.UnitAmount{}}, nil
}

// Authenticate checks trader credentials against the cached users. The
// username match ignores case; the password must match exactly. Users
// without a password cannot log in.
func (s *TradingService) Authenticate(ctx context.Context, username, password string) (domain.User, bool, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return domain.User{}, false, err
	}
	user, ok := dir.Login(username)
	if !ok || user.Password == "" || user.Password != password {
		return domain.User{}, false, nil
	}
	return user, true, nil
}
