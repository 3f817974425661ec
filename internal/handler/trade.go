package handler

import (
	"context"
	"net/http"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/Hacka25/athenian-trading/internal/service"
)

type traderKey struct{}

// traderFrom returns the authenticated trader stored by traderAuth.
func traderFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(traderKey{}).(domain.User)
	return u, ok
}

// TradeHandler handles the endpoints used by traders.
type TradeHandler struct {
	svc    *service.TradingService
	errors errorWriter
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(svc *service.TradingService, errors errorWriter) *TradeHandler {
	return &TradeHandler{
		svc:    svc,
		errors: errors,
	}
}

// traderTradeRequest is the JSON body for POST /trade. The buyer is always
// the authenticated trader.
type traderTradeRequest struct {
	BuyerAmount  int64  `json:"buyer_amount"`
	BuyerUnit    string `json:"buyer_unit"`
	Seller       string `json:"seller"`
	SellerAmount int64  `json:"seller_amount"`
	SellerUnit   string `json:"seller_unit"`
}

// Balance handles GET /trade/balance.
func (h *TradeHandler) Balance(w http.ResponseWriter, r *http.Request) {
	trader, _ := traderFrom(r.Context())
	ub, err := h.svc.BalanceFor(r.Context(), trader.Username)
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toBalanceResponse(ub))
}

// AddTrade handles POST /trade.
func (h *TradeHandler) AddTrade(w http.ResponseWriter, r *http.Request) {
	var req traderTradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	trader, _ := traderFrom(r.Context())
	receipt, err := h.svc.AddTrade(r.Context(), service.AddTradeRequest{
		BuyerName:    trader.Username,
		BuyerAmount:  req.BuyerAmount,
		BuyerUnit:    req.BuyerUnit,
		SellerName:   req.Seller,
		SellerAmount: req.SellerAmount,
		SellerUnit:   req.SellerUnit,
	})
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}
