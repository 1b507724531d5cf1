package domain

import (
	"github.com/shopspring/decimal"
)

// DiscountTier grants a percentage off the unit price once the line quantity
// reaches MinQuantity.
type DiscountTier struct {
	MinQuantity int
	Percent     decimal.Decimal // 0.20 == 20% off
}

// DiscountRules is the quantity-based discount policy. It is a value object
// so deployments can tune thresholds without touching the entities;
// tiers are evaluated highest threshold first.
type DiscountRules struct {
	MaxPerProduct int
	Tiers         []DiscountTier
}

// DefaultDiscountRules returns the store policy: at most 20 units per
// product, 20% off from 10 units, 10% off from 4 units.
func DefaultDiscountRules() DiscountRules {
	return DiscountRules{
		MaxPerProduct: 20,
		Tiers: []DiscountTier{
			{MinQuantity: 10, Percent: decimal.NewFromFloat(0.20)},
			{MinQuantity: 4, Percent: decimal.NewFromFloat(0.10)},
		},
	}
}

// ValidateQuantity reports whether q is inside the allowed per-product range.
func (r DiscountRules) ValidateQuantity(q int) bool {
	return q > 0 && q <= r.MaxPerProduct
}

// ApplyDiscount returns the unit price after the tier discount for quantity q.
func (r DiscountRules) ApplyDiscount(q int, unitPrice Money) (Money, error) {
	if q <= 0 {
		return Money{}, BusinessRulef("quantity must be positive, got %d", q)
	}
	if q > r.MaxPerProduct {
		return Money{}, BusinessRulef("cannot sell more than %d units of the same product", r.MaxPerProduct)
	}
	for _, t := range r.Tiers {
		if q >= t.MinQuantity {
			return unitPrice.Mul(decimal.NewFromInt(1).Sub(t.Percent))
		}
	}
	return unitPrice, nil
}

// CalculateDiscount returns the per-unit discount amount for quantity q.
// Callers multiply by quantity themselves to get the line discount.
func (r DiscountRules) CalculateDiscount(q int, unitPrice Money) (Money, error) {
	discounted, err := r.ApplyDiscount(q, unitPrice)
	if err != nil {
		return Money{}, err
	}
	return unitPrice.Sub(discounted)
}

// LineItem is the (quantity, unit price) pair CalculateTotal sums over.
type LineItem struct {
	Quantity  int
	UnitPrice Money
}

// CalculateTotal sums quantity x discounted unit price across items.
func (r DiscountRules) CalculateTotal(items []LineItem) (Money, error) {
	total := Zero
	for _, it := range items {
		unit, err := r.ApplyDiscount(it.Quantity, it.UnitPrice)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(unit.MulInt(it.Quantity))
	}
	return total, nil
}

// ValidateCartForCheckout applies the cart-level business rules for checkout:
// the cart must not be empty and every line quantity must be within bounds.
func (r DiscountRules) ValidateCartForCheckout(items []CartItem) error {
	if len(items) == 0 {
		return BusinessRulef("cannot checkout an empty cart")
	}
	for _, it := range items {
		if !r.ValidateQuantity(it.Quantity) {
			return BusinessRulef("invalid quantity %d for product %s: must be between 1 and %d",
				it.Quantity, it.ProductID, r.MaxPerProduct)
		}
	}
	return nil
}
