// Package quote exposes price quotation: it resolves the base price for the
// requested tier, evaluates the discount rule forest against the purchase
// context, and returns the final price with its audit trail.
package quote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitrastore/backend-mitra/internal/discount"
	"github.com/mitrastore/backend-mitra/internal/obs"
	"github.com/mitrastore/backend-mitra/internal/pricing"
)

// ErrPriceNotFound is returned when neither the requested tier nor the
// default tier carries a price row for the product.
var ErrPriceNotFound = errors.New("no price row for product")

// ForestProvider supplies the assembled rule forest; satisfied by rules.Service.
type ForestProvider interface {
	Forest(ctx context.Context) ([]discount.Group, error)
}

// PriceSource supplies stored price rows; satisfied by rules.Repo.
type PriceSource interface {
	PriceRows(ctx context.Context, productID uuid.UUID) ([]pricing.Row, error)
}

// Service orchestrates one quote evaluation.
type Service struct {
	Rules       ForestProvider
	Prices      PriceSource
	DefaultTier uuid.UUID
	TaxBps      int
	Now         func() time.Time
	Logger      zerolog.Logger
}

// Request carries the purchase context for one line item.
type Request struct {
	ProductID      uuid.UUID
	ModificationID *uuid.UUID
	SectionID      *uuid.UUID
	TierID         *uuid.UUID
	Quantity       int
	CartTotal      int64
	UserID         *uuid.UUID
	UserCategoryID *string
	LoggedIn       bool
	At             *time.Time
}

// Quote is the evaluated outcome: the engine result for the unit price plus
// line totals scaled by quantity.
type Quote struct {
	BasePrice int64
	Result    discount.Result
	Summary   pricing.Summary
}

// Evaluate resolves the base price and runs the discount engine. The engine
// discounts the unit price; the summary scales subtotal and discount by the
// requested quantity.
func (s *Service) Evaluate(ctx context.Context, req Request) (Quote, error) {
	if s == nil || s.Rules == nil || s.Prices == nil {
		return Quote{}, errors.New("quote service not configured")
	}

	rows, err := s.Prices.PriceRows(ctx, req.ProductID)
	if err != nil {
		obs.CountQuote("error")
		return Quote{}, err
	}
	tier := s.DefaultTier
	if req.TierID != nil {
		tier = *req.TierID
	}
	base, ok := pricing.ResolveTier(rows, tier, req.ModificationID, s.DefaultTier)
	if !ok {
		obs.CountQuote("price_not_found")
		return Quote{}, ErrPriceNotFound
	}

	forest, err := s.Rules.Forest(ctx)
	if err != nil {
		obs.CountQuote("error")
		return Quote{}, err
	}

	now := s.now()
	if req.At != nil {
		now = *req.At
	}
	dctx := discount.Context{
		UserID:         req.UserID,
		UserCategoryID: req.UserCategoryID,
		Quantity:       req.Quantity,
		CartTotal:      req.CartTotal,
		ProductID:      &req.ProductID,
		ModificationID: req.ModificationID,
		SectionID:      req.SectionID,
		LoggedIn:       req.LoggedIn,
		Now:            now,
	}

	start := time.Now()
	result := discount.Resolve(base, forest, dctx)
	obs.ObserveQuoteDuration(obs.DurationMillis(time.Since(start)))
	obs.CountAuditEntries(len(result.Applied), len(result.Rejected))
	obs.CountQuote("ok")

	s.Logger.Debug().
		Str("product_id", req.ProductID.String()).
		Int64("base_price", base).
		Int64("total_discount", result.TotalDiscount).
		Int("applied", len(result.Applied)).
		Int("rejected", len(result.Rejected)).
		Msg("quote evaluated")

	return Quote{
		BasePrice: base,
		Result:    result,
		Summary:   pricing.Compute(base, req.Quantity, result.TotalDiscount*int64(req.Quantity), s.TaxBps),
	}, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
