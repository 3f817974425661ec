package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// in is read for the authorization code.
var in io.Reader = os.Stdin

type authorizeCmd struct{}

func (*authorizeCmd) Name() string     { return "authorize" }
func (*authorizeCmd) Synopsis() string { return "grant access to the spreadsheet" }
func (*authorizeCmd) Usage() string {
	return `athenianctl authorize

  Prints the Google consent URL. After approving, paste the code parameter
  of the page you are redirected to. The token is saved in TOKENS_DIR.
`
}
func (*authorizeCmd) SetFlags(*flag.FlagSet) {}

func (*authorizeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if b.creds == nil {
		fail(errNoCredentials)
		return subcommands.ExitFailure
	}

	authURL := b.creds.AuthCodeURL()
	u, err := url.Parse(authURL)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(out, "Open this URL in a browser:\n\n  %s\n\nCode: ", authURL)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		fail(err)
		return subcommands.ExitFailure
	}
	code = strings.TrimSpace(code)
	if code == "" {
		fmt.Fprintln(os.Stderr, "Error: no code entered")
		return subcommands.ExitFailure
	}

	if err := b.creds.Exchange(ctx, u.Query().Get("state"), code); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(out, "Spreadsheet access granted.")
	return subcommands.ExitSuccess
}

type revokeCmd struct{}

func (*revokeCmd) Name() string     { return "revoke" }
func (*revokeCmd) Synopsis() string { return "forget the stored spreadsheet token" }
func (*revokeCmd) Usage() string {
	return `athenianctl revoke
`
}
func (*revokeCmd) SetFlags(*flag.FlagSet) {}

func (*revokeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBackend(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if b.creds == nil {
		fail(errNoCredentials)
		return subcommands.ExitFailure
	}
	if err := b.creds.Revoke(); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(out, "Stored token removed.")
	return subcommands.ExitSuccess
}
