package handler

import (
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/Hacka25/athenian-trading/internal/service"
)

type userResponse struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

type unitResponse struct {
	Description string `json:"description"`
}

type amountResponse struct {
	Amount int64  `json:"amount"`
	Unit   string `json:"unit"`
}

type allocationResponse struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
	Unit     string `json:"unit"`
}

type tradeResponse struct {
	Timestamp    *string `json:"timestamp"` // nil when the row had no readable date
	Buyer        string  `json:"buyer"`
	BuyerAmount  int64   `json:"buyer_amount"`
	BuyerUnit    string  `json:"buyer_unit"`
	Seller       string  `json:"seller"`
	SellerAmount int64   `json:"seller_amount"`
	SellerUnit   string  `json:"seller_unit"`
}

type balanceResponse struct {
	Username string           `json:"username"`
	FullName string           `json:"full_name"`
	Holdings []amountResponse `json:"holdings"`
}

type balancesResponse struct {
	Balances     []balanceResponse `json:"balances"`
	Recorded     bool              `json:"recorded"`
	UpdatedRange string            `json:"updated_range,omitempty"`
}

type receiptResponse struct {
	Summary      string        `json:"summary"`
	UpdatedRange string        `json:"updated_range"`
	Trade        tradeResponse `json:"trade"`
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = userResponse{Username: u.Username, FullName: u.LongName(), Role: u.Role}
	}
	return out
}

func toUnitResponses(units []domain.Unit) []unitResponse {
	out := make([]unitResponse, len(units))
	for i, u := range units {
		out[i] = unitResponse{Description: u.Desc}
	}
	return out
}

func toAllocationResponses(allocs []domain.HalfTrade) []allocationResponse {
	out := make([]allocationResponse, len(allocs))
	for i, a := range allocs {
		out[i] = allocationResponse{Username: a.User.Username, Amount: a.Amount.Amount, Unit: a.Amount.Unit.Desc}
	}
	return out
}

func toTradeResponse(t domain.Trade) tradeResponse {
	resp := tradeResponse{
		Buyer:        t.Buyer.Username,
		BuyerAmount:  t.BuyerAmount.Amount,
		BuyerUnit:    t.BuyerAmount.Unit.Desc,
		Seller:       t.Seller.Username,
		SellerAmount: t.SellerAmount.Amount,
		SellerUnit:   t.SellerAmount.Unit.Desc,
	}
	if !t.Timestamp.IsZero() {
		s := t.Timestamp.Format(time.RFC3339)
		resp.Timestamp = &s
	}
	return resp
}

func toTradeResponses(trades []domain.Trade) []tradeResponse {
	out := make([]tradeResponse, len(trades))
	for i, t := range trades {
		out[i] = toTradeResponse(t)
	}
	return out
}

func toBalanceResponse(ub domain.UserBalance) balanceResponse {
	holdings := make([]amountResponse, len(ub.Holdings))
	for i, h := range ub.Holdings {
		holdings[i] = amountResponse{Amount: h.Amount, Unit: h.Unit.Desc}
	}
	return balanceResponse{
		Username: ub.User.Username,
		FullName: ub.User.LongName(),
		Holdings: holdings,
	}
}

func toBalanceResponses(balances domain.Balances) []balanceResponse {
	out := make([]balanceResponse, len(balances))
	for i, ub := range balances {
		out[i] = toBalanceResponse(ub)
	}
	return out
}

func toReceiptResponse(r *service.TradeReceipt) receiptResponse {
	return receiptResponse{
		Summary:      r.Summary,
		UpdatedRange: r.UpdatedRange,
		Trade:        toTradeResponse(r.Trade),
	}
}
