package engine

import (
	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/Hacka25/athenian-trading/internal/store"
)

// Flatten encodes balances as three-column rows of
// [username, amount, unit]. Only a user's first row carries the username;
// the rest leave it blank.
func Flatten(balances domain.Balances) []store.Row {
	rows := make([]store.Row, 0, len(balances))
	seen := make(map[string]bool, len(balances))
	for _, ub := range balances {
		for _, h := range ub.Holdings {
			name := ""
			if !seen[ub.User.Username] {
				seen[ub.User.Username] = true
				name = ub.User.Username
			}
			rows = append(rows, store.Row{name, h.Amount, h.Unit.Desc})
		}
	}
	return rows
}
