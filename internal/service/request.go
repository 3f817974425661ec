package service

import (
	"errors"
	"strings"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/go-playground/validator/v10"
)

// AddTradeRequest is a trade entered by a trader or admin. The buyer gives
// BuyerAmount of BuyerUnit to the seller in exchange for SellerAmount of
// SellerUnit.
type AddTradeRequest struct {
	BuyerName    string `json:"buyer" validate:"required"`
	BuyerAmount  int64  `json:"buyer_amount" validate:"gt=0"`
	BuyerUnit    string `json:"buyer_unit" validate:"required"`
	SellerName   string `json:"seller" validate:"required,nefield=BuyerName"`
	SellerAmount int64  `json:"seller_amount" validate:"gt=0"`
	SellerUnit   string `json:"seller_unit" validate:"required,nefield=BuyerUnit"`
}

func (r AddTradeRequest) normalized() AddTradeRequest {
	r.BuyerName = strings.TrimSpace(r.BuyerName)
	r.BuyerUnit = strings.TrimSpace(r.BuyerUnit)
	r.SellerName = strings.TrimSpace(r.SellerName)
	r.SellerUnit = strings.TrimSpace(r.SellerUnit)
	return r
}

// validationMessage turns the first failed rule into a user-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "nefield" && fe.Field() == "SellerName":
		return "buyer and seller must be different users"
	case fe.Tag() == "nefield" && fe.Field() == "SellerUnit":
		return "buyer and seller units must be different"
	case fe.Tag() == "gt":
		return "amounts must be positive"
	case fe.Tag() == "required":
		return "missing " + fieldLabel(fe.Field())
	default:
		return fe.Error()
	}
}

func fieldLabel(field string) string {
	switch field {
	case "BuyerName":
		return "buyer"
	case "SellerName":
		return "seller"
	case "BuyerUnit":
		return "buyer unit"
	case "SellerUnit":
		return "seller unit"
	default:
		return strings.ToLower(field)
	}
}

func newValidationError(err error) *domain.ValidationError {
	return &domain.ValidationError{Message: validationMessage(err)}
}
