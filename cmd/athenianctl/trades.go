package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Hacka25/athenian-trading/internal/service"
	"github.com/google/subcommands"
)

type tradeCmd struct {
	req service.AddTradeRequest
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "record a trade between two traders" }
func (*tradeCmd) Usage() string {
	return `athenianctl trade -buyer <user> -buyer-amount <n> -buyer-unit <unit> -seller <user> -seller-amount <n> -seller-unit <unit>

  Records that the buyer gave buyer-amount of buyer-unit to the seller in
  exchange for seller-amount of seller-unit.
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.BuyerName, "buyer", "", "Username of the buyer")
	f.Int64Var(&c.req.BuyerAmount, "buyer-amount", 0, "Amount the buyer gives")
	f.StringVar(&c.req.BuyerUnit, "buyer-unit", "", "Unit the buyer gives")
	f.StringVar(&c.req.SellerName, "seller", "", "Username of the seller")
	f.Int64Var(&c.req.SellerAmount, "seller-amount", 0, "Amount the seller gives")
	f.StringVar(&c.req.SellerUnit, "seller-unit", "", "Unit the seller gives")
}

func (c *tradeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	receipt, err := b.svc.AddTrade(ctx, c.req)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(out, receipt.Summary)
	return subcommands.ExitSuccess
}

type randomTradeCmd struct {
	count int
}

func (*randomTradeCmd) Name() string     { return "random-trade" }
func (*randomTradeCmd) Synopsis() string { return "record random trades for testing" }
func (*randomTradeCmd) Usage() string {
	return `athenianctl random-trade [-n <count>]
`
}

func (c *randomTradeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "n", 1, "Number of trades to record")
}

func (c *randomTradeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.count < 1 {
		fmt.Fprintln(os.Stderr, "Error: -n must be at least 1")
		return subcommands.ExitUsageError
	}
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	for range c.count {
		receipt, err := b.svc.RandomTrade(ctx)
		if err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(out, receipt.Summary)
	}
	return subcommands.ExitSuccess
}

type clearTradesCmd struct {
	yes bool
}

func (*clearTradesCmd) Name() string     { return "clear-trades" }
func (*clearTradesCmd) Synopsis() string { return "delete every recorded trade" }
func (*clearTradesCmd) Usage() string {
	return `athenianctl clear-trades -yes

  Empties the transactions range. Allocations are kept.
`
}

func (c *clearTradesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm deleting all trades")
}

func (c *clearTradesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: refusing to clear trades without -yes")
		return subcommands.ExitUsageError
	}
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	res, err := b.svc.ClearTrades(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(out, "Cleared %s\n", res.ClearedRange)
	return subcommands.ExitSuccess
}
