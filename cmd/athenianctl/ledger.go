package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/google/subcommands"
)

type usersCmd struct {
	refresh bool
}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "list the traders from the users range" }
func (*usersCmd) Usage() string {
	return `athenianctl users [-refresh]

  Lists every trader with username, display name and role.
`
}

func (c *usersCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Reload the users from the spreadsheet instead of the cache")
}

func (c *usersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	list := b.svc.ListUsers
	if c.refresh {
		list = b.svc.RefreshUsers
	}
	users, err := list(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	renderUsers(users)
	return subcommands.ExitSuccess
}

type unitsCmd struct {
	refresh bool
}

func (*unitsCmd) Name() string     { return "units" }
func (*unitsCmd) Synopsis() string { return "list the tradeable units" }
func (*unitsCmd) Usage() string {
	return `athenianctl units [-refresh]
`
}

func (c *unitsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Reload the units from the spreadsheet instead of the cache")
}

func (c *unitsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	list := b.svc.ListUnits
	if c.refresh {
		list = b.svc.RefreshUnits
	}
	units, err := list(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	renderUnits(units)
	return subcommands.ExitSuccess
}

type allocationsCmd struct{}

func (*allocationsCmd) Name() string     { return "allocations" }
func (*allocationsCmd) Synopsis() string { return "list the starting allocations" }
func (*allocationsCmd) Usage() string {
	return `athenianctl allocations
`
}
func (*allocationsCmd) SetFlags(*flag.FlagSet) {}

func (*allocationsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	allocs, err := b.svc.ListAllocations(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	renderAllocations(allocs)
	return subcommands.ExitSuccess
}

type transactionsCmd struct{}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the recorded trades in order" }
func (*transactionsCmd) Usage() string {
	return `athenianctl transactions
`
}
func (*transactionsCmd) SetFlags(*flag.FlagSet) {}

func (*transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	trades, err := b.svc.ListTrades(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	renderTrades(trades)
	return subcommands.ExitSuccess
}

type balancesCmd struct {
	record bool
	user   string
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "compute every trader's balance" }
func (*balancesCmd) Usage() string {
	return `athenianctl balances [-record] [-user <username>]

  Nets allocations and trades into per-trader holdings. With -record the
  result replaces the contents of the balances range.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.record, "record", false, "Write the balances back to the spreadsheet")
	f.StringVar(&c.user, "user", "", "Only show the balance of this username")
}

func (c *balancesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}

	if c.user != "" {
		ub, err := b.svc.BalanceFor(ctx, c.user)
		if err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		renderBalances(domain.Balances{ub})
		return subcommands.ExitSuccess
	}

	balances, err := b.svc.ComputeBalances(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	renderBalances(balances)

	if c.record {
		res, err := b.svc.RecordBalances(ctx, balances)
		if err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(out, "Recorded balances to %s\n", res.UpdatedRange)
	}
	return subcommands.ExitSuccess
}
