package handler

import (
	"net/http"
	"strconv"

	"github.com/Hacka25/athenian-trading/internal/service"
)

// AdminHandler handles the classroom administrator's endpoints.
type AdminHandler struct {
	svc    *service.TradingService
	errors errorWriter
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.TradingService, errors errorWriter) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		errors: errors,
	}
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponses(users))
}

// RefreshUsers handles POST /admin/users/refresh.
func (h *AdminHandler) RefreshUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.RefreshUsers(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponses(users))
}

// Units handles GET /admin/units.
func (h *AdminHandler) Units(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.ListUnits(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUnitResponses(units))
}

// RefreshUnits handles POST /admin/units/refresh.
func (h *AdminHandler) RefreshUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.RefreshUnits(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUnitResponses(units))
}

// Allocations handles GET /admin/allocations.
func (h *AdminHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.svc.ListAllocations(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toAllocationResponses(allocs))
}

// Transactions handles GET /admin/transactions.
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	trades, err := h.svc.ListTrades(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponses(trades))
}

// AddTrade handles POST /admin/trades with any buyer and seller.
func (h *AdminHandler) AddTrade(w http.ResponseWriter, r *http.Request) {
	var req service.AddTradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	receipt, err := h.svc.AddTrade(r.Context(), req)
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

// RandomTrade handles POST /admin/trades/random.
func (h *AdminHandler) RandomTrade(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.svc.RandomTrade(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

// ClearTrades handles DELETE /admin/trades.
func (h *AdminHandler) ClearTrades(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ClearTrades(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"cleared_range": res.ClearedRange})
}

// Balances handles GET /admin/balances. With ?record=true the computed
// balances are also written to the Balances range.
func (h *AdminHandler) Balances(w http.ResponseWriter, r *http.Request) {
	record := false
	if v := r.URL.Query().Get("record"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "record must be a boolean")
			return
		}
		record = parsed
	}

	balances, err := h.svc.ComputeBalances(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}

	resp := balancesResponse{Balances: toBalanceResponses(balances)}
	if record {
		res, err := h.svc.RecordBalances(r.Context(), balances)
		if err != nil {
			h.errors.write(w, err)
			return
		}
		resp.Recorded = true
		resp.UpdatedRange = res.UpdatedRange
	}
	WriteJSON(w, http.StatusOK, resp)
}

// RecordBalances handles POST /admin/balances/record.
func (h *AdminHandler) RecordBalances(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.WriteBalances(r.Context())
	if err != nil {
		h.errors.write(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"rows_written": rows})
}
