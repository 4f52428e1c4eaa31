package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/floramayor/floramayor-backend/pkg/db/models"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// UnitPrice computes the discounted unit price for a product at the given
// quantity. The tier with the largest MinQty not exceeding qty applies; when
// two tiers share a MinQty the higher PercentOff wins. Without a qualifying
// tier the base price is returned unchanged. No rounding happens here;
// formatting is a presentation concern.
func UnitPrice(basePrice decimal.Decimal, qty int, tiers []models.PricingTier) (decimal.Decimal, error) {
	if basePrice.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if qty < 1 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	tier := selectTier(qty, tiers)
	if tier == nil {
		return basePrice, nil
	}

	discount := tier.PercentOff.Div(oneHundred)
	return basePrice.Mul(decimal.NewFromInt(1).Sub(discount)), nil
}

// LineTotal returns unitPrice * qty without rounding.
func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

func selectTier(qty int, tiers []models.PricingTier) *models.PricingTier {
	var selected *models.PricingTier
	for i := range tiers {
		tier := &tiers[i]
		if tier.MinQty > qty {
			continue
		}
		if selected == nil || tier.MinQty > selected.MinQty {
			selected = tier
			continue
		}
		if tier.MinQty == selected.MinQty && tier.PercentOff.GreaterThan(selected.PercentOff) {
			selected = tier
		}
	}
	return selected
}
