package domain

import (
	"fmt"
	"time"
)

// UnitAmount is a signed quantity of a single unit.
type UnitAmount struct {
	Amount int64
	Unit   Unit
}

func (a UnitAmount) String() string {
	return fmt.Sprintf("%d %s", a.Amount, a.Unit.Desc)
}

// Negate returns the same unit with the sign of the amount flipped.
func (a UnitAmount) Negate() UnitAmount {
	return UnitAmount{Amount: -a.Amount, Unit: a.Unit}
}

// HalfTrade is one signed leg of a ledger event: an allocation row, or one
// of the four legs a Trade expands to.
type HalfTrade struct {
	User      User
	Amount    UnitAmount
	Timestamp time.Time
}

// Trade is a two-sided barter: the buyer gives BuyerAmount to the seller
// and receives SellerAmount in return.
type Trade struct {
	Timestamp    time.Time
	Buyer        User
	BuyerAmount  UnitAmount
	Seller       User
	SellerAmount UnitAmount
}

// Expand returns the four signed legs of the trade. The legs sum to zero
// per unit across the two parties.
func (t Trade) Expand() [4]HalfTrade {
	return [4]HalfTrade{
		{User: t.Buyer, Amount: t.BuyerAmount.Negate(), Timestamp: t.Timestamp},
		{User: t.Seller, Amount: t.BuyerAmount, Timestamp: t.Timestamp},
		{User: t.Seller, Amount: t.SellerAmount.Negate(), Timestamp: t.Timestamp},
		{User: t.Buyer, Amount: t.SellerAmount, Timestamp: t.Timestamp},
	}
}

// Summary is the human-readable confirmation shown after a trade is recorded.
func (t Trade) Summary() string {
	return fmt.Sprintf("%s traded %s for %s with %s",
		t.Buyer.Username, t.BuyerAmount, t.SellerAmount, t.Seller.Username)
}
