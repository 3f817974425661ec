package engine

import (
	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/google/btree"
)

// position is the running net amount of one unit held by one user.
type position struct {
	User   domain.User
	Unit   domain.Unit
	Amount int64
}

// positionLess orders positions by username, then unit description, both
// byte-wise. Min() is the first user's first unit.
func positionLess(a, b position) bool {
	if a.User.Username != b.User.Username {
		return a.User.Username < b.User.Username
	}
	return a.Unit.Desc < b.Unit.Desc
}

// Aggregate nets allocations and trades into per-user balances. Each trade
// contributes its four expanded legs. Positions that net to zero are
// dropped, and a user left with no positions is absent from the result.
//
// Users are ordered by username and holdings by unit description, so equal
// inputs always produce identical output. No validation is done here: a
// trade with itself or with non-positive amounts is summed like any other.
func Aggregate(allocations []domain.HalfTrade, trades []domain.Trade) domain.Balances {
	const degree = 16
	positions := btree.NewG[position](degree, positionLess)

	add := func(leg domain.HalfTrade) {
		key := position{User: leg.User, Unit: leg.Amount.Unit}
		if existing, ok := positions.Get(key); ok {
			existing.Amount += leg.Amount.Amount
			positions.ReplaceOrInsert(existing)
			return
		}
		key.Amount = leg.Amount.Amount
		positions.ReplaceOrInsert(key)
	}

	for _, a := range allocations {
		add(a)
	}
	for _, t := range trades {
		for _, leg := range t.Expand() {
			add(leg)
		}
	}

	balances := domain.Balances{}
	positions.Ascend(func(p position) bool {
		if p.Amount == 0 {
			return true
		}
		n := len(balances)
		if n == 0 || balances[n-1].User.Username != p.User.Username {
			balances = append(balances, domain.UserBalance{User: p.User})
			n++
		}
		balances[n-1].Holdings = append(balances[n-1].Holdings,
			domain.UnitAmount{Amount: p.Amount, Unit: p.Unit})
		return true
	})
	return balances
}
