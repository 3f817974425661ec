package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds the athenianctl subcommands to c.
func register(c *subcommands.Commander) {
	c.Register(&usersCmd{}, "ledger")
	c.Register(&unitsCmd{}, "ledger")
	c.Register(&allocationsCmd{}, "ledger")
	c.Register(&transactionsCmd{}, "ledger")
	c.Register(&balancesCmd{}, "ledger")

	c.Register(&tradeCmd{}, "trades")
	c.Register(&randomTradeCmd{}, "trades")
	c.Register(&clearTradesCmd{}, "trades")

	c.Register(&authorizeCmd{}, "auth")
	c.Register(&revokeCmd{}, "auth")
}
