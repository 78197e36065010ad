package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mitrastore/backend-mitra/internal/common"
	"github.com/mitrastore/backend-mitra/internal/discount"
)

// Handler exposes the quote endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type quotePayload struct {
	ProductID      string     `json:"productId" validate:"required,uuid"`
	ModificationID *string    `json:"modificationId,omitempty" validate:"omitempty,uuid"`
	SectionID      *string    `json:"sectionId,omitempty" validate:"omitempty,uuid"`
	TierID         *string    `json:"tierId,omitempty" validate:"omitempty,uuid"`
	Quantity       int        `json:"quantity" validate:"required,min=1"`
	CartTotal      int64      `json:"cartTotal" validate:"min=0"`
	UserID         *string    `json:"userId,omitempty" validate:"omitempty,uuid"`
	UserCategoryID *string    `json:"userCategoryId,omitempty"`
	LoggedIn       bool       `json:"loggedIn"`
	At             *time.Time `json:"at,omitempty"`
}

type quoteResponse struct {
	BasePrice     int64               `json:"basePrice"`
	FinalPrice    int64               `json:"finalPrice"`
	TotalDiscount int64               `json:"totalDiscount"`
	Applied       []discount.Applied  `json:"appliedDiscounts"`
	Rejected      []discount.Rejected `json:"rejectedDiscounts"`
	Line          quoteLineTotals     `json:"line"`
}

type quoteLineTotals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Create evaluates a quote for one line item.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid quote request", err.Error())
			return
		}
	}

	req, err := buildRequest(payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	quote, err := h.Svc.Evaluate(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrPriceNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no price for the requested product", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to evaluate quote", nil)
		return
	}

	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		BasePrice:     quote.BasePrice,
		FinalPrice:    quote.Result.FinalPrice,
		TotalDiscount: quote.Result.TotalDiscount,
		Applied:       quote.Result.Applied,
		Rejected:      quote.Result.Rejected,
		Line: quoteLineTotals{
			Subtotal: quote.Summary.Subtotal,
			Discount: quote.Summary.Discount,
			Tax:      quote.Summary.Tax,
			Total:    quote.Summary.Total,
		},
	}})
}

func buildRequest(payload quotePayload) (Request, error) {
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return Request{}, errors.New("invalid product id")
	}
	req := Request{
		ProductID:      productID,
		Quantity:       payload.Quantity,
		CartTotal:      payload.CartTotal,
		UserCategoryID: payload.UserCategoryID,
		LoggedIn:       payload.LoggedIn,
		At:             payload.At,
	}
	if req.ModificationID, err = parseOptionalUUID(payload.ModificationID, "modification"); err != nil {
		return Request{}, err
	}
	if req.SectionID, err = parseOptionalUUID(payload.SectionID, "section"); err != nil {
		return Request{}, err
	}
	if req.TierID, err = parseOptionalUUID(payload.TierID, "tier"); err != nil {
		return Request{}, err
	}
	if req.UserID, err = parseOptionalUUID(payload.UserID, "user"); err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseOptionalUUID(value *string, field string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, errors.New("invalid " + field + " id")
	}
	return &id, nil
}
